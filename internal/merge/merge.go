// Package merge reconciles curated mappings with automatically flagged ones.
package merge

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fak/pfam-map-loader/internal/classifier"
	"github.com/fak/pfam-map-loader/internal/domain"
	"github.com/fak/pfam-map-loader/internal/tabular"
)

// Column names of the mapping tables
const (
	ColMapID        = "map_id"
	ColActivityID   = "activity_id"
	ColCompoundID   = "compd_id"
	ColDomainName   = "domain_name"
	ColCategoryFlag = "category_flag"
	ColStatusFlag   = "status_flag"
	ColManualFlag   = "manual_flag"
	ColComment      = "comment"
	ColTimestamp    = "timestamp"
	ColSubmitter    = "submitter"
	ColDomainID     = "domain_id"
)

// Columns is the header shared by the manual and automatic tables
var Columns = []string{
	ColActivityID, ColCompoundID, ColDomainName,
	ColCategoryFlag, ColStatusFlag, ColManualFlag,
	ColComment, ColTimestamp, ColSubmitter, ColDomainID,
}

// Meta is stamped on every automatic row
type Meta struct {
	Comment   string
	Timestamp string
	Submitter string
}

// Automatic renders the automatic mapping table: one row per (activity,
// compound), activities in manual are left out.
func Automatic(in classifier.Interactions, flags map[int64]domain.Flag, manual map[int64]struct{}, meta Meta) *tabular.Table {
	t := tabular.New(Columns...)
	for _, actID := range in.ActivityIDs() {
		if _, ok := manual[actID]; ok {
			continue
		}
		f, ok := flags[actID]
		if !ok {
			continue
		}
		for _, compdID := range in.CompoundIDs(actID) {
			d := in[actID][compdID]
			t.Append(
				strconv.FormatInt(actID, 10),
				strconv.FormatInt(compdID, 10),
				d.Name,
				strconv.Itoa(f.Category),
				strconv.Itoa(f.Status),
				strconv.Itoa(f.Manual),
				meta.Comment,
				meta.Timestamp,
				meta.Submitter,
				d.ID,
			)
		}
	}
	return t
}

// ActivityIDs returns the parsed activity ids of a mapping table
func ActivityIDs(t *tabular.Table) (map[int64]struct{}, error) {
	idx, err := t.MustIndex(ColActivityID)
	if err != nil {
		return nil, err
	}
	ids := make(map[int64]struct{}, len(t.Rows))
	for i, row := range t.Rows {
		id, err := parseID(row[idx])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		ids[id] = struct{}{}
	}
	return ids, nil
}

// ManualIDs parses the keys of a manual-override lookup
func ManualIDs(lkp map[string]string) (map[int64]struct{}, error) {
	ids := make(map[int64]struct{}, len(lkp))
	for k := range lkp {
		id, err := parseID(k)
		if err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, nil
}

// Merge concatenates manual rows and the automatic rows not overridden by a
// manual row, then prepends a map_id column numbered from 1 in that order.
// Manual rows are copied unchanged.
func Merge(manual, automatic *tabular.Table) (*tabular.Table, error) {
	if !manual.SameHeader(automatic) {
		return nil, fmt.Errorf("%w: manual header %v, automatic header %v",
			domain.ErrSchemaMismatch, manual.Columns, automatic.Columns)
	}

	overridden, err := ActivityIDs(manual)
	if err != nil {
		return nil, fmt.Errorf("manual table: %w", err)
	}
	idx, err := automatic.MustIndex(ColActivityID)
	if err != nil {
		return nil, err
	}

	out := tabular.New(append([]string{ColMapID}, manual.Columns...)...)
	mapID := 0
	emit := func(row []string) {
		mapID++
		out.Rows = append(out.Rows, append([]string{strconv.Itoa(mapID)}, row...))
	}

	for _, row := range manual.Rows {
		emit(row)
	}
	for i, row := range automatic.Rows {
		id, err := parseID(row[idx])
		if err != nil {
			return nil, fmt.Errorf("automatic table row %d: %w", i+1, err)
		}
		if _, ok := overridden[id]; ok {
			continue
		}
		emit(row)
	}
	return out, nil
}

// StripMapID drops a leading map_id column, as the exporter writes manual
// rows back out without it
func StripMapID(t *tabular.Table) *tabular.Table {
	if len(t.Columns) == 0 || t.Columns[0] != ColMapID {
		return t
	}
	out := tabular.New(t.Columns[1:]...)
	for _, row := range t.Rows {
		out.Rows = append(out.Rows, row[1:])
	}
	return out
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: activity_id %q is not an integer", domain.ErrMalformedInput, s)
	}
	return id, nil
}
