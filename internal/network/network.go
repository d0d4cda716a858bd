// Package network derives the domain co-occurrence graph of multi-domain
// architectures.
package network

import (
	"sort"

	"github.com/fak/pfam-map-loader/internal/arch"
	"github.com/fak/pfam-map-loader/internal/domain"
)

// Edge links two domains seen together; Dom1 < Dom2
type Edge struct {
	Dom1  string
	Dom2  string
	Count int
}

// Attribute marks a network node as valid or not
type Attribute struct {
	Dom   string
	Valid bool
}

// Network is the edge list plus node attributes
type Network struct {
	Edges      []Edge
	Attributes []Attribute
}

// Build emits every unordered domain pair of each multi-domain architecture,
// weighted by the architecture's target count and summed across
// architectures. Single-domain and empty architectures contribute nothing.
func Build(groups []arch.Group, valid domain.Set) Network {
	weights := make(map[[2]string]int)
	nodes := make(map[string]bool)

	for _, g := range groups {
		if !g.Arch.IsMulti() {
			continue
		}
		for _, p := range g.Arch.Pairs() {
			weights[p] += g.Targets
		}
		for _, d := range g.Arch.Domains() {
			nodes[d] = valid.Has(d)
		}
	}

	n := Network{
		Edges:      make([]Edge, 0, len(weights)),
		Attributes: make([]Attribute, 0, len(nodes)),
	}
	for p, w := range weights {
		n.Edges = append(n.Edges, Edge{Dom1: p[0], Dom2: p[1], Count: w})
	}
	sort.Slice(n.Edges, func(i, j int) bool {
		if n.Edges[i].Dom1 != n.Edges[j].Dom1 {
			return n.Edges[i].Dom1 < n.Edges[j].Dom1
		}
		return n.Edges[i].Dom2 < n.Edges[j].Dom2
	})

	for d, v := range nodes {
		n.Attributes = append(n.Attributes, Attribute{Dom: d, Valid: v})
	}
	sort.Slice(n.Attributes, func(i, j int) bool { return n.Attributes[i].Dom < n.Attributes[j].Dom })
	return n
}

// Degree sums the weights of every edge touching dom
func (n Network) Degree(dom string) int {
	total := 0
	for _, e := range n.Edges {
		if e.Dom1 == dom || e.Dom2 == dom {
			total += e.Count
		}
	}
	return total
}
