// Package pipeline runs the curation steps end to end: architecture reports,
// mapping load and manual export.
//
// Each run reads all of its inputs and computes every derived table in memory
// before the first file is written.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/fak/pfam-map-loader/internal/arch"
	"github.com/fak/pfam-map-loader/internal/classifier"
	"github.com/fak/pfam-map-loader/internal/config"
	"github.com/fak/pfam-map-loader/internal/coverage"
	"github.com/fak/pfam-map-loader/internal/domain"
	"github.com/fak/pfam-map-loader/internal/fetcher"
	"github.com/fak/pfam-map-loader/internal/lookup"
	"github.com/fak/pfam-map-loader/internal/merge"
	"github.com/fak/pfam-map-loader/internal/network"
	"github.com/fak/pfam-map-loader/internal/platform/logger"
	"github.com/fak/pfam-map-loader/internal/report"
	"github.com/fak/pfam-map-loader/internal/store"
	"github.com/fak/pfam-map-loader/internal/tabular"
)

// TargetSource supplies eligible targets and their domains
type TargetSource interface {
	EligibleTargets(ctx context.Context, thresholdNM float64) ([]domain.Target, error)
	TargetDomains(ctx context.Context, tids []int64) (map[int64][]string, error)
}

// AssignmentSource supplies activity/domain assignments
type AssignmentSource interface {
	ActivityAssignments(ctx context.Context, domainIDs []int64) ([]domain.Assignment, error)
}

// Uploader replaces curation tables in the database
type Uploader interface {
	CheckTable(name string, t *tabular.Table) error
	ReplaceTables(ctx context.Context, uploads []store.Upload) (map[string]int, error)
}

// ManualSource supplies the manual rows of the loaded mapping
type ManualSource interface {
	ManualMaps(ctx context.Context) (*tabular.Table, error)
}

// Runner executes pipeline steps for one configuration
type Runner struct {
	cfg   *config.Config
	log   *logger.Logger
	RunID string
}

// New creates a Runner with a fresh run id
func New(cfg *config.Config, log *logger.Logger) *Runner {
	id := uuid.New().String()
	return &Runner{
		cfg:   cfg,
		log:   log.With("run_id", id, "release", cfg.Release, "version", cfg.Version),
		RunID: id,
	}
}

// ArchSummary reports what an architecture run produced
type ArchSummary struct {
	Targets        int
	Tallied        int
	MissingDomains int
	Architectures  int
	MultiDomain    int
	Domains        int
	Edges          int
	ByTargets      coverage.Coverage
	ByActivities   coverage.Coverage
	Files          []string
}

// Architectures groups eligible targets into architectures, appends two
// coverage lines (by targets, then by activities) to the log and writes the
// architecture, domain, network and attribute reports.
func (r *Runner) Architectures(ctx context.Context, src TargetSource, opts arch.Options) (*ArchSummary, error) {
	validLkp, err := lookup.LoadFile(ctx, r.cfg.ValidDomainsPath(), r.cfg.ValidNameColumn, r.cfg.ValidNameColumn)
	if err != nil {
		return nil, fmt.Errorf("valid domains: %w", err)
	}
	valid := lookup.Keys(validLkp)
	r.log.Info("loaded valid domains", "count", len(valid))

	targets, err := src.EligibleTargets(ctx, r.cfg.ThresholdNM())
	if err != nil {
		return nil, err
	}
	r.log.Info("retrieved eligible targets", "count", len(targets), "threshold_nm", r.cfg.ThresholdNM())

	tids := make([]int64, len(targets))
	for i, t := range targets {
		tids[i] = t.TID
	}
	doms, err := src.TargetDomains(ctx, tids)
	if err != nil {
		return nil, err
	}

	res := arch.Aggregate(targets, doms, opts)
	missing := res.Missing()
	for _, tid := range missing {
		r.log.Warn("no domains for target", "tid", tid, "error", domain.ErrMissingDomain)
	}

	groups := res.Groups()
	net := network.Build(groups, valid)
	sum := &ArchSummary{
		Targets:        len(targets),
		Tallied:        res.TotalTargets(),
		MissingDomains: len(missing),
		Architectures:  len(groups),
		Domains:        len(res.DomainCounts()),
		Edges:          len(net.Edges),
		ByTargets:      coverage.Compute(groups, coverage.ByTargets, valid),
		ByActivities:   coverage.Compute(groups, coverage.ByActivities, valid),
	}
	for _, g := range groups {
		if g.Arch.IsMulti() {
			sum.MultiDomain++
		}
	}
	for _, a := range net.Attributes {
		r.log.Debug("network node", "domain", a.Dom, "degree", net.Degree(a.Dom), "valid", a.Valid)
	}

	bundle := report.Bundle{
		r.cfg.ReportPath("multi_dom_archs", ".md"):       report.Architectures(groups, valid),
		r.cfg.ReportPath("multi_dom_doms", ".md"):        report.Domains(res.DomainCounts(), valid),
		r.cfg.ReportPath("multi_dom_network", ".tab"):    report.Edges(net),
		r.cfg.ReportPath("multi_dom_attributes", ".tab"): report.Attributes(net),
	}
	if err := bundle.Write(); err != nil {
		return nil, err
	}
	for p := range bundle {
		sum.Files = append(sum.Files, p)
	}
	sort.Strings(sum.Files)

	var entries []coverage.LogEntry
	for _, c := range []coverage.Coverage{sum.ByTargets, sum.ByActivities} {
		entries = append(entries, coverage.LogEntry{
			Coverage:  c,
			Release:   r.cfg.Release,
			Threshold: r.cfg.ThresholdLabel(),
			Comment:   r.cfg.Comment,
			Timestamp: r.cfg.Timestamp,
		})
	}
	if err := report.AppendLog(r.cfg.LogPath(), entries...); err != nil {
		return nil, err
	}

	r.log.Info("architectures written",
		"architectures", sum.Architectures,
		"tallied", sum.Tallied,
		"multi_domain", sum.MultiDomain,
		"edges", sum.Edges,
		"valid_targets", sum.ByTargets.ValidCount,
		"total_targets", sum.ByTargets.TotalCount,
	)
	return sum, nil
}

// LoadSummary reports what a load run produced
type LoadSummary struct {
	Assignments int
	Activities  int
	Flags       classifier.Summary
	ManualRows  int
	AutoRows    int
	MergedRows  int
	Uploaded    map[string]int
}

// Load classifies the activities of every valid domain, merges them with the
// manual overrides and writes the automatic and merged mapping files. When
// up is non-nil the merged mapping, valid and held domain lists are loaded
// into the database in one transaction. Every upload table is checked before
// the first file is written.
func (r *Runner) Load(ctx context.Context, src AssignmentSource, up Uploader) (*LoadSummary, error) {
	validTable, err := lookup.ReadTable(ctx, r.cfg.ValidDomainsPath())
	if err != nil {
		return nil, fmt.Errorf("valid domains: %w", err)
	}
	validLkp, err := lookup.FromTable(validTable, r.cfg.ValidIDColumn, r.cfg.ValidIDColumn)
	if err != nil {
		return nil, fmt.Errorf("valid domains: %w", err)
	}
	domainIDs, err := parseIDs(lookup.Keys(validLkp).Sorted())
	if err != nil {
		return nil, fmt.Errorf("valid domains: %w", err)
	}

	manual, err := lookup.ReadTable(ctx, r.cfg.ManualMapsPath())
	if err != nil {
		return nil, fmt.Errorf("manual maps: %w", err)
	}
	manualLkp, err := lookup.FromTable(manual, merge.ColActivityID, merge.ColManualFlag)
	if err != nil {
		return nil, fmt.Errorf("manual maps: %w", err)
	}
	manualIDs, err := merge.ManualIDs(manualLkp)
	if err != nil {
		return nil, fmt.Errorf("manual maps: %w", err)
	}
	r.log.Info("loaded curation inputs", "valid_domains", len(domainIDs), "manual_activities", len(manualIDs))

	var uploads []store.Upload
	if up != nil {
		uploads = []store.Upload{{Name: "valid_domains", Table: validTable}}
		held, err := lookup.ReadTable(ctx, r.cfg.HeldDomainsPath())
		switch {
		case errors.Is(err, fs.ErrNotExist):
			r.log.Warn("held domain list not found, skipping upload", "path", r.cfg.HeldDomainsPath())
		case err != nil:
			return nil, fmt.Errorf("held domains: %w", err)
		default:
			uploads = append(uploads, store.Upload{Name: "held_domains", Table: held})
		}
		for _, u := range uploads {
			if err := up.CheckTable(u.Name, u.Table); err != nil {
				return nil, fmt.Errorf("upload %s: %w", u.Name, err)
			}
		}
	}

	assignments, err := src.ActivityAssignments(ctx, domainIDs)
	if err != nil {
		return nil, err
	}
	in := classifier.Group(assignments)
	flags := classifier.Classify(in)

	meta := merge.Meta{Comment: r.cfg.Comment, Timestamp: r.cfg.Timestamp, Submitter: r.cfg.Submitter}
	auto := merge.Automatic(in, flags, manualIDs, meta)
	merged, err := merge.Merge(manual, auto)
	if err != nil {
		return nil, err
	}
	if up != nil {
		if err := up.CheckTable("pfam_maps", merged); err != nil {
			return nil, fmt.Errorf("upload pfam_maps: %w", err)
		}
		uploads = append([]store.Upload{{Name: "pfam_maps", Table: merged}}, uploads...)
	}

	sum := &LoadSummary{
		Assignments: len(assignments),
		Activities:  len(in),
		Flags:       classifier.Summarize(flags),
		ManualRows:  len(manual.Rows),
		AutoRows:    len(auto.Rows),
		MergedRows:  len(merged.Rows),
		Uploaded:    make(map[string]int),
	}

	bundle := report.Bundle{
		r.cfg.AutomaticMapsPath(): auto.Bytes(),
		r.cfg.MapsPath():          merged.Bytes(),
	}
	if err := bundle.Write(); err != nil {
		return nil, err
	}
	r.log.Info("mapping written",
		"activities", sum.Activities,
		"single", sum.Flags.Single,
		"redundant", sum.Flags.Redundant,
		"conflict", sum.Flags.Conflict,
		"rows", sum.MergedRows,
	)

	if up == nil {
		return sum, nil
	}
	counts, err := up.ReplaceTables(ctx, uploads)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	for _, u := range uploads {
		sum.Uploaded[u.Name] = counts[u.Name]
		r.log.Info("table uploaded", "table", u.Name, "rows", counts[u.Name])
	}
	return sum, nil
}

// Export writes the manual rows of the loaded mapping to the manual file of
// the configured version, without map_id, ready for the next curation round
func (r *Runner) Export(ctx context.Context, src ManualSource) (int, error) {
	path := r.cfg.ManualMapsPath()
	if fetcher.IsURL(path) {
		return 0, fmt.Errorf("%w: cannot export to remote location %s", domain.ErrConfiguration, path)
	}

	t, err := src.ManualMaps(ctx)
	if err != nil {
		return 0, err
	}
	out := merge.StripMapID(t)
	if err := report.WriteFileAtomic(path, out.Bytes()); err != nil {
		return 0, err
	}
	r.log.Info("manual maps exported", "rows", len(out.Rows), "path", path)
	return len(out.Rows), nil
}

func parseIDs(raw []string) ([]int64, error) {
	ids := make([]int64, 0, len(raw))
	for _, s := range raw {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: domain id %q is not an integer", domain.ErrMalformedInput, s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
