package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/fak/pfam-map-loader/internal/domain"
	"github.com/fak/pfam-map-loader/internal/tabular"
)

// maxInList bounds the number of placeholders in one IN (...) clause
const maxInList = 500

// Store handles database operations
type Store struct {
	db     *sql.DB
	driver string
}

// New opens a database with one of the registered drivers: sqlite3, pgx or
// mysql
func New(ctx context.Context, driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db, driver: driver}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders into $n for PostgreSQL
func (s *Store) rebind(query string) string {
	if s.driver != "pgx" {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func chunks[T any](in []T, size int) [][]T {
	var out [][]T
	for len(in) > size {
		out = append(out, in[:size])
		in = in[size:]
	}
	if len(in) > 0 {
		out = append(out, in)
	}
	return out
}

const eligibleTargetsQuery = `
	SELECT dc.tid, dc.target_type, dc.n_domains,
	       COUNT(DISTINCT act.assay_id), COUNT(DISTINCT act.activity_id)
	FROM assays ass
	JOIN (
		SELECT td.tid, td.target_type, COUNT(cd.domain_id) AS n_domains
		FROM target_dictionary td
		JOIN target_components tc ON tc.tid = td.tid
		JOIN component_sequences cs ON cs.component_id = tc.component_id
		JOIN component_domains cd ON cd.component_id = cs.component_id
		WHERE td.target_type IN ('SINGLE PROTEIN', 'PROTEIN COMPLEX')
		GROUP BY td.tid, td.target_type
	) dc ON dc.tid = ass.tid
	JOIN activities act ON act.assay_id = ass.assay_id
	WHERE act.standard_type IN ('Ki', 'Kd', 'IC50', 'EC50', 'AC50')
	AND ass.relationship_type = 'D'
	AND ass.assay_type IN ('B')
	AND act.standard_relation IN ('=')
	AND act.standard_units = 'nM'
	AND act.standard_value <= ?
	GROUP BY dc.tid, dc.target_type, dc.n_domains
	ORDER BY COUNT(DISTINCT act.activity_id), dc.tid`

// EligibleTargets returns the targets with direct binding measurements at or
// below thresholdNM
func (s *Store) EligibleTargets(ctx context.Context, thresholdNM float64) ([]domain.Target, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(eligibleTargetsQuery), thresholdNM)
	if err != nil {
		return nil, fmt.Errorf("eligible targets: %w", err)
	}
	defer rows.Close()

	var targets []domain.Target
	for rows.Next() {
		var t domain.Target
		var typ string
		if err := rows.Scan(&t.TID, &typ, &t.DomainCount, &t.AssayCount, &t.ActivityCount); err != nil {
			return nil, fmt.Errorf("scan target: %w", err)
		}
		t.Type = domain.TargetType(typ)
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("eligible targets: %w", err)
	}
	return targets, nil
}

// TargetDomains returns the Pfam-A domain names of each target. Targets
// without domains are absent from the result.
func (s *Store) TargetDomains(ctx context.Context, tids []int64) (map[int64][]string, error) {
	lkp := make(map[int64][]string)
	for _, batch := range chunks(tids, maxInList) {
		query := `
			SELECT tc.tid, d.domain_name
			FROM target_components tc
			JOIN component_domains cd ON cd.component_id = tc.component_id
			JOIN domains d ON d.domain_id = cd.domain_id
			WHERE tc.tid IN (` + placeholders(len(batch)) + `)
			AND d.domain_type = 'Pfam-A'
			ORDER BY tc.tid, d.domain_name`
		args := make([]any, len(batch))
		for i, tid := range batch {
			args[i] = tid
		}

		rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
		if err != nil {
			return nil, fmt.Errorf("target domains: %w", err)
		}
		for rows.Next() {
			var tid int64
			var name string
			if err := rows.Scan(&tid, &name); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan target domain: %w", err)
			}
			lkp[tid] = append(lkp[tid], name)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("target domains: %w", err)
		}
	}
	return lkp, nil
}

// ActivityAssignments returns every (activity, target, component, compound,
// domain) row for the given domain ids
func (s *Store) ActivityAssignments(ctx context.Context, domainIDs []int64) ([]domain.Assignment, error) {
	var out []domain.Assignment
	for _, batch := range chunks(domainIDs, maxInList) {
		query := `
			SELECT DISTINCT act.activity_id, ass.tid, tc.component_id, cd.compd_id,
			       dm.domain_name, dm.domain_id
			FROM activities act
			JOIN assays ass ON ass.assay_id = act.assay_id
			JOIN target_dictionary td ON ass.tid = td.tid
			JOIN target_components tc ON ass.tid = tc.tid
			JOIN component_domains cd ON tc.component_id = cd.component_id
			JOIN domains dm ON dm.domain_id = cd.domain_id
			WHERE ass.assay_type IN ('B', 'F')
			AND td.target_type IN ('PROTEIN COMPLEX', 'SINGLE PROTEIN')
			AND ass.relationship_type = 'D'
			AND act.pchembl_value IS NOT NULL
			AND dm.domain_id IN (` + placeholders(len(batch)) + `)
			ORDER BY act.activity_id, cd.compd_id`
		args := make([]any, len(batch))
		for i, id := range batch {
			args[i] = id
		}

		rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
		if err != nil {
			return nil, fmt.Errorf("activity assignments: %w", err)
		}
		for rows.Next() {
			var a domain.Assignment
			var domainID int64
			if err := rows.Scan(&a.ActivityID, &a.TID, &a.ComponentID, &a.CompoundID, &a.Domain.Name, &domainID); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan assignment: %w", err)
			}
			a.Domain.ID = strconv.FormatInt(domainID, 10)
			out = append(out, a)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("activity assignments: %w", err)
		}
	}
	return out, nil
}

// ManualMaps returns the manually curated rows of pfam_maps, map_id included
func (s *Store) ManualMaps(ctx context.Context) (*tabular.Table, error) {
	cols := columnNames(pfamMapsTable)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+strings.Join(cols, ", ")+" FROM pfam_maps WHERE manual_flag = 1 ORDER BY map_id")
	if err != nil {
		return nil, fmt.Errorf("manual maps: %w", err)
	}
	defer rows.Close()

	t := tabular.New(cols...)
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan manual map: %w", err)
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			row[i] = v.String
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("manual maps: %w", err)
	}
	return t, nil
}

const mapColumns = `map_id, activity_id, compd_id, domain_name, category_flag, status_flag,
	manual_flag, comment, timestamp, submitter, domain_id`

func scanMaps(rows *sql.Rows) ([]domain.MappingRecord, error) {
	var out []domain.MappingRecord
	for rows.Next() {
		var m domain.MappingRecord
		var domainID sql.NullInt64
		if err := rows.Scan(&m.MapID, &m.ActivityID, &m.CompoundID, &m.DomainName,
			&m.CategoryFlag, &m.StatusFlag, &m.ManualFlag,
			&m.Comment, &m.Timestamp, &m.Submitter, &domainID); err != nil {
			return nil, fmt.Errorf("scan map: %w", err)
		}
		if domainID.Valid {
			m.DomainID = strconv.FormatInt(domainID.Int64, 10)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	return out, nil
}

// MapsForActivity returns the loaded mapping rows of one activity
func (s *Store) MapsForActivity(ctx context.Context, activityID int64) ([]domain.MappingRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind("SELECT "+mapColumns+" FROM pfam_maps WHERE activity_id = ? ORDER BY map_id"),
		activityID)
	if err != nil {
		return nil, fmt.Errorf("maps for activity: %w", err)
	}
	defer rows.Close()
	return scanMaps(rows)
}

// ListManualMaps returns the loaded manual rows with pagination
func (s *Store) ListManualMaps(ctx context.Context, limit, offset int) ([]domain.MappingRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind("SELECT "+mapColumns+" FROM pfam_maps WHERE manual_flag = 1 ORDER BY map_id LIMIT ? OFFSET ?"),
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list manual maps: %w", err)
	}
	defer rows.Close()
	return scanMaps(rows)
}

// ListValidDomains returns the distinct names in valid_domains
func (s *Store) ListValidDomains(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT domain_name FROM valid_domains ORDER BY domain_name")
	if err != nil {
		return nil, fmt.Errorf("list valid domains: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan valid domain: %w", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list valid domains: %w", err)
	}
	return names, nil
}
