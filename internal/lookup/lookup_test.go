package lookup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fak/pfam-map-loader/internal/domain"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		key     string
		val     string
		want    map[string]string
		wantErr error
	}{
		{
			name:  "two columns",
			input: "activity_id\tcompd_id\tmanual_flag\n10\t5\t1\n11\t6\t1\n",
			key:   "activity_id",
			val:   "manual_flag",
			want:  map[string]string{"10": "1", "11": "1"},
		},
		{
			name:  "same column as key and value",
			input: "entry_id\tpfam_a\n1\tPkinase\n2\t7tm_1\n",
			key:   "pfam_a",
			val:   "pfam_a",
			want:  map[string]string{"Pkinase": "Pkinase", "7tm_1": "7tm_1"},
		},
		{
			name:  "duplicate key keeps last value",
			input: "k\tv\na\t1\na\t2\n",
			key:   "k",
			val:   "v",
			want:  map[string]string{"a": "2"},
		},
		{
			name:  "header only",
			input: "k\tv\n",
			key:   "k",
			val:   "v",
			want:  map[string]string{},
		},
		{
			name:    "missing key column",
			input:   "k\tv\na\t1\n",
			key:     "nope",
			val:     "v",
			wantErr: domain.ErrConfiguration,
		},
		{
			name:    "missing value column",
			input:   "k\tv\na\t1\n",
			key:     "k",
			val:     "nope",
			wantErr: domain.ErrConfiguration,
		},
		{
			name:    "short row",
			input:   "k\tv\na\n",
			key:     "k",
			val:     "v",
			wantErr: domain.ErrMalformedInput,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Load(strings.NewReader(tc.input), tc.key, tc.val)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "valid_pfam_v_1_3.tab")
	require.NoError(t, os.WriteFile(path, []byte("domain_id\tdomain_name\n100\tPkinase\n"), 0o644))

	got, err := LoadFile(context.Background(), path, "domain_id", "domain_id")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"100": "100"}, got)

	keys := Keys(got)
	assert.True(t, keys.Has("100"))
	assert.False(t, keys.Has("Pkinase"))
}
