// Package coverage measures how much of the architecture space the valid
// domains reach.
package coverage

import (
	"strconv"
	"strings"

	"github.com/fak/pfam-map-loader/internal/arch"
	"github.com/fak/pfam-map-loader/internal/domain"
)

// Metric picks the per-architecture number being summed
type Metric int

const (
	ByTargets Metric = iota
	ByActivities
)

func (m Metric) String() string {
	if m == ByActivities {
		return "activities"
	}
	return "targets"
}

func (m Metric) of(g arch.Group) int {
	if m == ByActivities {
		return g.Activities
	}
	return g.Targets
}

// Coverage holds the four aggregates of one calculation
type Coverage struct {
	ValidCount int
	TotalCount int
	ValidArchs int
	TotalArchs int
}

// Compute partitions architectures into valid (at least one member domain is
// in valid) and invalid. The empty architecture is always invalid.
func Compute(groups []arch.Group, metric Metric, valid domain.Set) Coverage {
	var c Coverage
	for _, g := range groups {
		n := metric.of(g)
		c.TotalCount += n
		c.TotalArchs++
		if IsValid(g.Arch, valid) {
			c.ValidCount += n
			c.ValidArchs++
		}
	}
	return c
}

// IsValid reports whether any member of a is in valid
func IsValid(a arch.Architecture, valid domain.Set) bool {
	for _, d := range a.Domains() {
		if valid.Has(d) {
			return true
		}
	}
	return false
}

// LogEntry is one row of the coverage log
type LogEntry struct {
	Coverage
	Release   string
	Threshold string
	Comment   string
	Timestamp string
}

// Line renders the entry as a tab-separated line ending in a newline
func (e LogEntry) Line() string {
	return strings.Join([]string{
		strconv.Itoa(e.ValidCount),
		strconv.Itoa(e.TotalCount),
		e.Release,
		e.Threshold,
		e.Comment,
		e.Timestamp,
		strconv.Itoa(e.ValidArchs),
		strconv.Itoa(e.TotalArchs),
	}, "\t") + "\n"
}
