// Package report renders pipeline results as markdown and TSV files.
//
// Every file is rendered fully in memory first. WriteFileAtomic then writes a
// temp file next to the target and renames it into place, so an aborted run
// never leaves a half-written report behind.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fak/pfam-map-loader/internal/arch"
	"github.com/fak/pfam-map-loader/internal/coverage"
	"github.com/fak/pfam-map-loader/internal/domain"
	"github.com/fak/pfam-map-loader/internal/network"
	"github.com/fak/pfam-map-loader/internal/tabular"
)

// pyBool spells booleans the way downstream curation sheets expect them
func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// Architectures renders the multi-domain architecture table. mapped lists
// the valid member domains, or False when there are none.
func Architectures(groups []arch.Group, valid domain.Set) []byte {
	var sb strings.Builder
	sb.WriteString("|architecture|count|mapped|\n")
	sb.WriteString("|:-----------|:---------|-----:|\n")
	for _, g := range groups {
		if !g.Arch.IsMulti() {
			continue
		}
		var mapped []string
		for _, d := range g.Arch.Domains() {
			if valid.Has(d) {
				mapped = append(mapped, d)
			}
		}
		m := pyBool(false)
		if len(mapped) > 0 {
			m = strings.Join(mapped, arch.Separator)
		}
		fmt.Fprintf(&sb, "|%s|%d|%s|\n", g.Arch, g.Targets, m)
	}
	return []byte(sb.String())
}

// Domains renders the domain occurrence table
func Domains(counts []arch.DomainCount, valid domain.Set) []byte {
	var sb strings.Builder
	sb.WriteString("|domain |count| validated|\n")
	sb.WriteString("|:-----------|:-----|-------:|\n")
	for _, c := range counts {
		fmt.Fprintf(&sb, "|%s|%d|%s|\n", c.Domain, c.Count, pyBool(valid.Has(c.Domain)))
	}
	return []byte(sb.String())
}

// Edges renders the network edge table
func Edges(n network.Network) []byte {
	t := tabular.New("dom_1", "dom_2", "count")
	for _, e := range n.Edges {
		t.Append(e.Dom1, e.Dom2, strconv.Itoa(e.Count))
	}
	return t.Bytes()
}

// Attributes renders the network node attribute table
func Attributes(n network.Network) []byte {
	t := tabular.New("dom", "valid")
	for _, a := range n.Attributes {
		t.Append(a.Dom, pyBool(a.Valid))
	}
	return t.Bytes()
}

// WriteFileAtomic writes data to path through a temp file and rename
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// AppendLog appends coverage lines in a single write. The log is never
// truncated.
func AppendLog(path string, entries ...coverage.LogEntry) error {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.Line())
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := f.WriteString(sb.String()); err != nil {
		f.Close()
		return fmt.Errorf("append %s: %w", path, err)
	}
	return f.Close()
}

// Bundle is a set of rendered files keyed by path
type Bundle map[string][]byte

// Write writes every file of the bundle atomically. Files are independent;
// the first failure stops the rest.
func (b Bundle) Write() error {
	paths := make([]string, 0, len(b))
	for p := range b {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if err := WriteFileAtomic(p, b[p]); err != nil {
			return err
		}
	}
	return nil
}
