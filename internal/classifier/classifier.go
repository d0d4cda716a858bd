// Package classifier flags activities whose domain assignments are ambiguous.
package classifier

import (
	"sort"

	"github.com/fak/pfam-map-loader/internal/domain"
)

// Interactions maps activity id → compound id → domain
type Interactions map[int64]map[int64]domain.DomainIdentity

// Group builds Interactions from raw assignments. A repeated
// (activity, compound) pair keeps the last domain seen.
func Group(assignments []domain.Assignment) Interactions {
	lkp := make(Interactions)
	for _, a := range assignments {
		compounds, ok := lkp[a.ActivityID]
		if !ok {
			compounds = make(map[int64]domain.DomainIdentity)
			lkp[a.ActivityID] = compounds
		}
		compounds[a.CompoundID] = a.Domain
	}
	return lkp
}

// ActivityIDs returns the activity ids in ascending order
func (in Interactions) ActivityIDs() []int64 {
	ids := make([]int64, 0, len(in))
	for id := range in {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// CompoundIDs returns the compound ids of one activity in ascending order
func (in Interactions) CompoundIDs(activityID int64) []int64 {
	compounds := in[activityID]
	ids := make([]int64, 0, len(compounds))
	for id := range compounds {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Classify assigns a flag to every activity with at least one compound.
// The manual flag is always 0; manual entries are handled by the merger.
func Classify(in Interactions) map[int64]domain.Flag {
	flags := make(map[int64]domain.Flag, len(in))
	for actID, compounds := range in {
		if f, ok := flagFor(compounds); ok {
			flags[actID] = f
		}
	}
	return flags
}

func flagFor(compounds map[int64]domain.DomainIdentity) (domain.Flag, bool) {
	switch len(compounds) {
	case 0:
		return domain.Flag{}, false
	case 1:
		return domain.FlagSingle, true
	}

	distinct := make(map[domain.DomainIdentity]struct{}, len(compounds))
	for _, d := range compounds {
		distinct[d] = struct{}{}
	}
	if len(distinct) > 1 {
		return domain.FlagConflict, true
	}
	return domain.FlagRedundant, true
}

// Summary counts activities per flag category
type Summary struct {
	Single    int
	Redundant int
	Conflict  int
}

// Summarize tallies flags by category
func Summarize(flags map[int64]domain.Flag) Summary {
	var s Summary
	for _, f := range flags {
		switch f.Category {
		case 0:
			s.Single++
		case 1:
			s.Redundant++
		case 2:
			s.Conflict++
		}
	}
	return s
}
