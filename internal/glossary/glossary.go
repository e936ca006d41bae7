// Package glossary reads glossary source files and prepares them for
// registration with the provider.
package glossary

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrNoGlossary is returned when the named glossary is missing from a file.
var ErrNoGlossary = errors.New("glossary not found")

// Entry maps a source term to the fixed target term.
type Entry struct {
	Source string
	Target string
}

// ReadFile loads the glossary called name. TOML files hold it as a
// [glossaries.<name>] table of source = "target" pairs; any other file is
// read as tab-separated source/target rows.
func ReadFile(path, name string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ReadTOML(f, name)
	}
	return ReadTSV(f)
}

// ReadTOML reads the [glossaries.<name>] table from r.
func ReadTOML(r io.Reader, name string) ([]Entry, error) {
	var file struct {
		Glossaries map[string]map[string]string `toml:"glossaries"`
	}
	if _, err := toml.DecodeReader(r, &file); err != nil {
		return nil, fmt.Errorf("failed to parse glossary file: %w", err)
	}

	table, ok := file.Glossaries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoGlossary, name)
	}

	entries := make([]Entry, 0, len(table))
	for from, to := range table {
		entries = append(entries, Entry{Source: from, Target: to})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Source < entries[j].Source })
	return entries, nil
}

// ReadTSV reads tab-separated rows of source and target terms. Rows with
// fewer than two fields are skipped.
func ReadTSV(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var entries []Entry
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read glossary rows: %w", err)
		}
		if len(rec) < 2 {
			continue
		}
		entries = append(entries, Entry{Source: rec[0], Target: rec[1]})
	}
}

// TSV builds the provider payload from entries. Terms are trimmed, rows
// with an empty side are dropped and rows are ordered by source term.
// Source terms that occur more than once are returned in duplicates; the
// provider rejects such payloads.
func TSV(entries []Entry) (tsv string, duplicates []string) {
	rows := make([]Entry, 0, len(entries))
	for _, e := range entries {
		from, to := strings.TrimSpace(e.Source), strings.TrimSpace(e.Target)
		if from == "" || to == "" {
			continue
		}
		rows = append(rows, Entry{Source: from, Target: to})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Source < rows[j].Source })

	lines := make([]string, len(rows))
	for i, e := range rows {
		if i > 0 && rows[i-1].Source == e.Source &&
			(len(duplicates) == 0 || duplicates[len(duplicates)-1] != e.Source) {
			duplicates = append(duplicates, e.Source)
		}
		lines[i] = e.Source + "\t" + e.Target
	}
	return strings.Join(lines, "\n"), duplicates
}
