package arch

import (
	"sort"

	"github.com/fak/pfam-map-loader/internal/domain"
)

// Outcome is the per-target result of aggregation
type Outcome int

const (
	OutcomeOK Outcome = iota
	// OutcomeMissingDomain: no domain list was supplied for the target.
	OutcomeMissingDomain
	// OutcomeSkipped: dropped by Options.MultiDomainOnly.
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeMissingDomain:
		return "missing_domain"
	case OutcomeSkipped:
		return "skipped"
	}
	return "unknown"
}

// TargetOutcome records what happened to one target
type TargetOutcome struct {
	TID     int64
	Outcome Outcome
}

// Options selects the aggregation variant
type Options struct {
	// MultiDomainOnly drops targets with fewer than two distinct domains
	// from every accumulator, not only from domain counts.
	MultiDomainOnly bool
}

// Group is the tally of one architecture
type Group struct {
	Arch       Architecture
	Targets    int
	Activities int
}

// Result holds the three accumulators of one aggregation
type Result struct {
	groups   map[string]*Group
	domains  map[string]int
	Outcomes []TargetOutcome
}

// Aggregate groups eligible targets by architecture. doms maps a target id to
// its domain names; a target absent from doms is reported as
// OutcomeMissingDomain and tallied under the empty architecture.
func Aggregate(targets []domain.Target, doms map[int64][]string, opts Options) *Result {
	r := &Result{
		groups:   make(map[string]*Group),
		domains:  make(map[string]int),
		Outcomes: make([]TargetOutcome, 0, len(targets)),
	}
	for _, t := range targets {
		names, ok := doms[t.TID]
		a := New(names...)

		outcome := OutcomeOK
		if !ok {
			outcome = OutcomeMissingDomain
		}
		if opts.MultiDomainOnly && !a.IsMulti() {
			if outcome == OutcomeOK {
				outcome = OutcomeSkipped
			}
			r.Outcomes = append(r.Outcomes, TargetOutcome{TID: t.TID, Outcome: outcome})
			continue
		}
		r.Outcomes = append(r.Outcomes, TargetOutcome{TID: t.TID, Outcome: outcome})
		r.add(a, t.ActivityCount)
	}
	return r
}

func (r *Result) add(a Architecture, activities int) {
	g, ok := r.groups[a.String()]
	if !ok {
		g = &Group{Arch: a}
		r.groups[a.String()] = g
	}
	g.Targets++
	g.Activities += activities

	if !a.IsMulti() {
		return
	}
	for _, d := range a.domains {
		r.domains[d]++
	}
}

// Groups returns the architectures sorted by target count, descending, then
// by canonical string
func (r *Result) Groups() []Group {
	out := make([]Group, 0, len(r.groups))
	for _, g := range r.groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Targets != out[j].Targets {
			return out[i].Targets > out[j].Targets
		}
		return out[i].Arch.String() < out[j].Arch.String()
	})
	return out
}

// group returns the tally for an architecture
func (r *Result) group(a Architecture) (Group, bool) {
	g, ok := r.groups[a.String()]
	if !ok {
		return Group{}, false
	}
	return *g, true
}

// DomainCount is the number of multi-domain targets carrying a domain
type DomainCount struct {
	Domain string
	Count  int
}

// DomainCounts returns the domain occurrence counts sorted by count,
// descending, then by name
func (r *Result) DomainCounts() []DomainCount {
	out := make([]DomainCount, 0, len(r.domains))
	for d, n := range r.domains {
		out = append(out, DomainCount{Domain: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Domain < out[j].Domain
	})
	return out
}

// Missing returns the ids of targets without a domain list
func (r *Result) Missing() []int64 {
	var out []int64
	for _, o := range r.Outcomes {
		if o.Outcome == OutcomeMissingDomain {
			out = append(out, o.TID)
		}
	}
	return out
}

// TotalTargets is the sum of per-architecture target counts
func (r *Result) TotalTargets() int {
	n := 0
	for _, g := range r.groups {
		n += g.Targets
	}
	return n
}
