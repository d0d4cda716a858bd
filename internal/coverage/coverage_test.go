package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fak/pfam-map-loader/internal/arch"
	"github.com/fak/pfam-map-loader/internal/domain"
)

func TestComputeWorkedExample(t *testing.T) {
	groups := []arch.Group{
		{Arch: arch.New("A", "B"), Targets: 10},
		{Arch: arch.New("C", "D"), Targets: 5},
	}
	got := Compute(groups, ByTargets, domain.NewSet("A"))
	assert.Equal(t, Coverage{ValidCount: 10, TotalCount: 15, ValidArchs: 1, TotalArchs: 2}, got)
}

func TestComputeByActivities(t *testing.T) {
	groups := []arch.Group{
		{Arch: arch.New("A", "B"), Targets: 1, Activities: 40},
		{Arch: arch.New("C"), Targets: 3, Activities: 2},
		{Arch: arch.New("D"), Targets: 1, Activities: 9},
	}
	got := Compute(groups, ByActivities, domain.NewSet("B", "D"))
	assert.Equal(t, Coverage{ValidCount: 49, TotalCount: 51, ValidArchs: 2, TotalArchs: 3}, got)
}

func TestComputeEmptyArchitectureIsInvalid(t *testing.T) {
	groups := []arch.Group{
		{Arch: arch.New(), Targets: 4},
		{Arch: arch.Parse(""), Targets: 1},
		{Arch: arch.New("A"), Targets: 2},
	}
	got := Compute(groups, ByTargets, domain.NewSet("A", ""))
	assert.Equal(t, Coverage{ValidCount: 2, TotalCount: 7, ValidArchs: 1, TotalArchs: 3}, got)
}

func TestComputeNilValidSet(t *testing.T) {
	got := Compute([]arch.Group{{Arch: arch.New("A"), Targets: 2}}, ByTargets, nil)
	assert.Equal(t, Coverage{TotalCount: 2, TotalArchs: 1}, got)
}

func TestLogLine(t *testing.T) {
	e := LogEntry{
		Coverage:  Coverage{ValidCount: 10, TotalCount: 15, ValidArchs: 1, TotalArchs: 2},
		Release:   "chembl_33",
		Threshold: "50",
		Comment:   "only binding assays",
		Timestamp: "18 October 2026 00:00:00",
	}
	assert.Equal(t, "10\t15\tchembl_33\t50\tonly binding assays\t18 October 2026 00:00:00\t1\t2\n", e.Line())
	assert.Equal(t, "activities", ByActivities.String())
}
