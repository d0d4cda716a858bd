package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fak/pfam-map-loader/internal/arch"
	"github.com/fak/pfam-map-loader/internal/coverage"
	"github.com/fak/pfam-map-loader/internal/domain"
	"github.com/fak/pfam-map-loader/internal/network"
)

func TestArchitectures(t *testing.T) {
	groups := []arch.Group{
		{Arch: arch.New("A", "B"), Targets: 2},
		{Arch: arch.New("C", "D", "E"), Targets: 1},
		{Arch: arch.New("C"), Targets: 7},
		{Arch: arch.New(), Targets: 3},
	}
	got := string(Architectures(groups, domain.NewSet("A", "E", "D")))
	want := "|architecture|count|mapped|\n" +
		"|:-----------|:---------|-----:|\n" +
		"|A, B|2|A|\n" +
		"|C, D, E|1|D, E|\n"
	assert.Equal(t, want, got)

	got = string(Architectures(groups[:1], nil))
	assert.Contains(t, got, "|A, B|2|False|\n")
}

func TestDomains(t *testing.T) {
	got := string(Domains([]arch.DomainCount{{Domain: "A", Count: 3}, {Domain: "B", Count: 1}}, domain.NewSet("B")))
	want := "|domain |count| validated|\n" +
		"|:-----------|:-----|-------:|\n" +
		"|A|3|False|\n" +
		"|B|1|True|\n"
	assert.Equal(t, want, got)
}

func TestNetworkTables(t *testing.T) {
	n := network.Network{
		Edges:      []network.Edge{{Dom1: "A", Dom2: "B", Count: 8}},
		Attributes: []network.Attribute{{Dom: "A", Valid: true}, {Dom: "B"}},
	}
	assert.Equal(t, "dom_1\tdom_2\tcount\nA\tB\t8\n", string(Edges(n)))
	assert.Equal(t, "dom\tvalid\nA\tTrue\nB\tFalse\n", string(Attributes(n)))
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "out.tab")

	require.NoError(t, WriteFileAtomic(path, []byte("first\n")))
	require.NoError(t, WriteFileAtomic(path, []byte("second\n")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(data))

	entries, err := os.ReadDir(filepath.Join(dir, "sub"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestAppendLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.tab")
	e := coverage.LogEntry{Coverage: coverage.Coverage{ValidCount: 1, TotalCount: 2, ValidArchs: 1, TotalArchs: 1}, Release: "r"}

	require.NoError(t, AppendLog(path, e))
	require.NoError(t, AppendLog(path, e))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, e.Line()+e.Line(), string(data))
}

func TestAppendLogWritesAllEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.tab")
	byTargets := coverage.LogEntry{Coverage: coverage.Coverage{ValidCount: 2, TotalCount: 3, ValidArchs: 2, TotalArchs: 3}, Release: "r"}
	byActivities := coverage.LogEntry{Coverage: coverage.Coverage{ValidCount: 15, TotalCount: 17, ValidArchs: 2, TotalArchs: 3}, Release: "r"}

	require.NoError(t, AppendLog(path, byTargets, byActivities))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, byTargets.Line()+byActivities.Line(), string(data))

	// Nothing is appended when the log cannot be opened.
	require.Error(t, AppendLog(t.TempDir(), byTargets, byActivities))
}

func TestBundleWrite(t *testing.T) {
	dir := t.TempDir()
	b := Bundle{
		filepath.Join(dir, "a.md"):  []byte("a"),
		filepath.Join(dir, "b.tab"): []byte("b"),
	}
	require.NoError(t, b.Write())
	for p, want := range b {
		got, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
