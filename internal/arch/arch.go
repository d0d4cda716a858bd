// Package arch groups targets into domain architectures.
//
// An architecture is the sorted, deduplicated set of domain names carried by
// a target. Two targets with the same domain set share an architecture no
// matter the order their domains were reported in. The canonical string form
// (names joined by ", ") is used as a map key and in reports; it is never
// split back apart inside the pipeline.
package arch

import (
	"sort"
	"strings"
)

// Separator joins domain names in the canonical architecture string
const Separator = ", "

// Architecture is a sorted, deduplicated set of domain names
type Architecture struct {
	domains []string
	key     string
}

// New builds an architecture from domain names in any order
func New(domains ...string) Architecture {
	seen := make(map[string]struct{}, len(domains))
	uniq := make([]string, 0, len(domains))
	for _, d := range domains {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		uniq = append(uniq, d)
	}
	sort.Strings(uniq)
	return Architecture{domains: uniq, key: strings.Join(uniq, Separator)}
}

// Parse rebuilds an architecture from its canonical string. The empty string
// is the empty architecture.
func Parse(s string) Architecture {
	if s == "" {
		return Architecture{}
	}
	return New(strings.Split(s, Separator)...)
}

// String returns the canonical form
func (a Architecture) String() string { return a.key }

// Domains returns a copy of the member domains in sorted order
func (a Architecture) Domains() []string {
	out := make([]string, len(a.domains))
	copy(out, a.domains)
	return out
}

// Len is the number of distinct domains
func (a Architecture) Len() int { return len(a.domains) }

// IsMulti reports whether the architecture has two or more domains
func (a Architecture) IsMulti() bool { return len(a.domains) >= 2 }

// contains reports whether name is a member
func (a Architecture) contains(name string) bool {
	i := sort.SearchStrings(a.domains, name)
	return i < len(a.domains) && a.domains[i] == name
}

// Pairs returns every unordered pair of member domains. Each pair is sorted
// because the members are.
func (a Architecture) Pairs() [][2]string {
	n := len(a.domains)
	if n < 2 {
		return nil
	}
	out := make([][2]string, 0, n*(n-1)/2)
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, [2]string{a.domains[i], a.domains[j]})
		}
	}
	return out
}
