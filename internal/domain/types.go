package domain

import "sort"

// TargetType is the ChEMBL target classification
type TargetType string

const (
	SingleProtein  TargetType = "SINGLE PROTEIN"
	ProteinComplex TargetType = "PROTEIN COMPLEX"
)

// Target is an eligible target with its activity counts
type Target struct {
	TID           int64      `json:"tid"`
	Type          TargetType `json:"target_type"`
	DomainCount   int        `json:"domain_count"`
	AssayCount    int        `json:"assay_count"`
	ActivityCount int        `json:"activity_count"`
}

// DomainIdentity identifies a domain by id and name. ID is empty when only
// the name is known.
type DomainIdentity struct {
	ID   string `json:"domain_id,omitempty"`
	Name string `json:"domain_name"`
}

// Assignment links an activity to a domain through a compound
type Assignment struct {
	ActivityID  int64          `json:"activity_id"`
	TID         int64          `json:"tid"`
	ComponentID int64          `json:"component_id"`
	CompoundID  int64          `json:"compd_id"`
	Domain      DomainIdentity `json:"domain"`
}

// Flag is the (category, status, manual) triple attached to an activity
type Flag struct {
	Category int `json:"category_flag"`
	Status   int `json:"status_flag"`
	Manual   int `json:"manual_flag"`
}

var (
	// FlagSingle: exactly one compound/domain pair.
	FlagSingle = Flag{Category: 0, Status: 0}
	// FlagRedundant: several pairs, one distinct domain.
	FlagRedundant = Flag{Category: 1, Status: 1}
	// FlagConflict: several pairs, more than one distinct domain.
	FlagConflict = Flag{Category: 2, Status: 1}
)

// MappingRecord is one row of the final pfam_maps table
type MappingRecord struct {
	MapID        int    `json:"map_id"`
	ActivityID   int64  `json:"activity_id"`
	CompoundID   int64  `json:"compd_id"`
	DomainName   string `json:"domain_name"`
	CategoryFlag int    `json:"category_flag"`
	StatusFlag   int    `json:"status_flag"`
	ManualFlag   int    `json:"manual_flag"`
	Comment      string `json:"comment"`
	Timestamp    string `json:"timestamp"`
	Submitter    string `json:"submitter"`
	DomainID     string `json:"domain_id,omitempty"`
}

// Set is a set of domain names or ids
type Set map[string]struct{}

// NewSet builds a Set from the given members
func NewSet(members ...string) Set {
	s := make(Set, len(members))
	for _, m := range members {
		s[m] = struct{}{}
	}
	return s
}

// Has reports membership. Safe on a nil Set.
func (s Set) Has(member string) bool {
	_, ok := s[member]
	return ok
}

// Sorted returns the members in ascending order
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for m := range s {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
