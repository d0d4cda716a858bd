package tabular

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fak/pfam-map-loader/internal/domain"
)

func TestReadWrite(t *testing.T) {
	in := "activity_id\tcompd_id\tdomain_name\r\n10\t1\tPkinase\n\n11\t2\t7tm_1\n"

	tbl, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"activity_id", "compd_id", "domain_name"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"11", "2", "7tm_1"}, tbl.Rows[1])

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tbl))
	assert.Equal(t, "activity_id\tcompd_id\tdomain_name\n10\t1\tPkinase\n11\t2\t7tm_1\n", buf.String())
	assert.Equal(t, buf.Bytes(), tbl.Bytes())
}

func TestReadShortRow(t *testing.T) {
	_, err := Read(strings.NewReader("a\tb\tc\n1\t2\n"))
	require.ErrorIs(t, err, domain.ErrMalformedInput)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadEmpty(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	require.ErrorIs(t, err, domain.ErrMalformedInput)
}

func TestEmptyTrailingFieldKept(t *testing.T) {
	tbl, err := Read(strings.NewReader("a\tb\n1\t\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", ""}, tbl.Rows[0])
}

func TestTabOnlyRowKept(t *testing.T) {
	tbl, err := Read(strings.NewReader("a\tb\tc\n\t\t\n1\t2\t3\n"))
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"", "", ""}, tbl.Rows[0])
}

func TestHeaderHelpers(t *testing.T) {
	a := New("x", "y")
	b := New("x", "y")
	c := New("y", "x")

	assert.True(t, a.SameHeader(b))
	assert.False(t, a.SameHeader(c))
	assert.False(t, a.SameHeader(New("x")))

	assert.Equal(t, 1, a.Index("y"))
	assert.Equal(t, -1, a.Index("z"))

	_, err := a.MustIndex("z")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
