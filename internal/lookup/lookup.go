// Package lookup builds key/value maps from two columns of a tab file.
package lookup

import (
	"context"
	"fmt"
	"io"

	"github.com/fak/pfam-map-loader/internal/domain"
	"github.com/fak/pfam-map-loader/internal/fetcher"
	"github.com/fak/pfam-map-loader/internal/tabular"
)

// Load reads a tab-delimited source and maps every value of keyCol to the
// value of valCol on the same row. Duplicate keys keep the last value.
// keyCol and valCol may name the same column.
func Load(r io.Reader, keyCol, valCol string) (map[string]string, error) {
	t, err := tabular.Read(r)
	if err != nil {
		return nil, err
	}
	return FromTable(t, keyCol, valCol)
}

// FromTable maps keyCol to valCol over an already parsed table
func FromTable(t *tabular.Table, keyCol, valCol string) (map[string]string, error) {
	ki, err := t.MustIndex(keyCol)
	if err != nil {
		return nil, err
	}
	vi, err := t.MustIndex(valCol)
	if err != nil {
		return nil, err
	}

	lkp := make(map[string]string, len(t.Rows))
	for _, row := range t.Rows {
		lkp[row[ki]] = row[vi]
	}
	return lkp, nil
}

// LoadFile opens a local path or http(s) URL and loads it
func LoadFile(ctx context.Context, location, keyCol, valCol string) (map[string]string, error) {
	t, err := ReadTable(ctx, location)
	if err != nil {
		return nil, err
	}
	lkp, err := FromTable(t, keyCol, valCol)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", location, err)
	}
	return lkp, nil
}

// ReadTable opens a local path or http(s) URL and parses the whole table
func ReadTable(ctx context.Context, location string) (*tabular.Table, error) {
	rc, err := fetcher.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	t, err := tabular.Read(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", location, err)
	}
	return t, nil
}

// Keys returns the key set of a lookup
func Keys(lkp map[string]string) domain.Set {
	s := make(domain.Set, len(lkp))
	for k := range lkp {
		s[k] = struct{}{}
	}
	return s
}
