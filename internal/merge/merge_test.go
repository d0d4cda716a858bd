package merge

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fak/pfam-map-loader/internal/classifier"
	"github.com/fak/pfam-map-loader/internal/domain"
	"github.com/fak/pfam-map-loader/internal/tabular"
)

var meta = Meta{Comment: "auto", Timestamp: "2026-10-18 00:00:00", Submitter: "loader"}

func manualTable(rows ...[]string) *tabular.Table {
	t := tabular.New(Columns...)
	t.Rows = rows
	return t
}

func manualRow(actID, compdID, dom string) []string {
	return []string{actID, compdID, dom, "0", "0", "1", "curated", "2026-01-01", "fk", "42"}
}

func sampleInteractions() classifier.Interactions {
	return classifier.Interactions{
		10: {500: {ID: "7", Name: "Pkinase"}},
		11: {501: {ID: "7", Name: "Pkinase"}, 502: {ID: "9", Name: "SH2"}},
		12: {503: {ID: "9", Name: "SH2"}},
	}
}

func TestAutomatic(t *testing.T) {
	in := sampleInteractions()
	flags := classifier.Classify(in)

	tbl := Automatic(in, flags, map[int64]struct{}{12: {}}, meta)
	assert.Equal(t, Columns, tbl.Columns)
	assert.Equal(t, [][]string{
		{"10", "500", "Pkinase", "0", "0", "0", "auto", meta.Timestamp, "loader", "7"},
		{"11", "501", "Pkinase", "2", "1", "0", "auto", meta.Timestamp, "loader", "7"},
		{"11", "502", "SH2", "2", "1", "0", "auto", meta.Timestamp, "loader", "9"},
	}, tbl.Rows)
}

// A manual activity keeps only its manual row even when the automatic
// classification computed a flag for it.
func TestMergeManualWins(t *testing.T) {
	in := sampleInteractions()
	flags := classifier.Classify(in)
	require.Contains(t, flags, int64(10))

	manual := manualTable(manualRow("10", "500", "SH2"))
	auto := Automatic(in, flags, nil, meta)

	out, err := Merge(manual, auto)
	require.NoError(t, err)

	var rowsFor10 [][]string
	for _, row := range out.Rows {
		if row[1] == "10" {
			rowsFor10 = append(rowsFor10, row)
		}
	}
	require.Len(t, rowsFor10, 1)
	assert.Equal(t, append([]string{"1"}, manualRow("10", "500", "SH2")...), rowsFor10[0])
}

func TestMergeMapIDsContiguous(t *testing.T) {
	in := sampleInteractions()
	flags := classifier.Classify(in)
	manual := manualTable(manualRow("11", "501", "Pkinase"), manualRow("99", "1", "7tm_1"))
	auto := Automatic(in, flags, nil, meta)

	out, err := Merge(manual, auto)
	require.NoError(t, err)
	assert.Equal(t, append([]string{ColMapID}, Columns...), out.Columns)

	// Activity 11 has two automatic rows, both dropped.
	wantN := len(manual.Rows) + len(auto.Rows) - 2
	require.Len(t, out.Rows, wantN)
	for i, row := range out.Rows {
		assert.Equal(t, strconv.Itoa(i+1), row[0])
	}
	assert.Equal(t, "11", out.Rows[0][1])
	assert.Equal(t, "99", out.Rows[1][1])
	assert.Equal(t, "10", out.Rows[2][1])
	assert.Equal(t, "12", out.Rows[3][1])
}

func TestMergeSchemaMismatch(t *testing.T) {
	manual := tabular.New(Columns[:len(Columns)-1]...)
	auto := tabular.New(Columns...)
	_, err := Merge(manual, auto)
	require.ErrorIs(t, err, domain.ErrSchemaMismatch)
}

func TestMergeMalformedActivityID(t *testing.T) {
	manual := manualTable(manualRow("ten", "500", "SH2"))
	_, err := Merge(manual, tabular.New(Columns...))
	require.ErrorIs(t, err, domain.ErrMalformedInput)
}

func TestMergeMissingActivityColumn(t *testing.T) {
	_, err := Merge(tabular.New("a", "b"), tabular.New("a", "b"))
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestMergeComparesIDsNumerically(t *testing.T) {
	manual := manualTable(manualRow(" 010", "500", "SH2"))
	auto := manualTable([]string{"10", "500", "Pkinase", "0", "0", "0", "", "", "", "7"})
	out, err := Merge(manual, auto)
	require.NoError(t, err)
	assert.Len(t, out.Rows, 1)
}

func TestManualIDs(t *testing.T) {
	ids, err := ManualIDs(map[string]string{"10": "1", "11": "1"})
	require.NoError(t, err)
	assert.Equal(t, map[int64]struct{}{10: {}, 11: {}}, ids)

	_, err = ManualIDs(map[string]string{"x": "1"})
	assert.ErrorIs(t, err, domain.ErrMalformedInput)
}

func TestStripMapID(t *testing.T) {
	in := tabular.New(append([]string{ColMapID}, Columns...)...)
	in.Append(append([]string{"1"}, manualRow("10", "500", "SH2")...)...)

	out := StripMapID(in)
	assert.Equal(t, Columns, out.Columns)
	assert.Equal(t, [][]string{manualRow("10", "500", "SH2")}, out.Rows)

	plain := tabular.New(Columns...)
	assert.Same(t, plain, StripMapID(plain))
}
