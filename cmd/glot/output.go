package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/glot/pkg/pipeline"
	"github.com/gnana997/glot/pkg/source"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unsupported output format %q (want table, json or yaml)", format)
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return validateFormat(format)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// Finding kinds reported by check.
const (
	kindUnresolved     = "unresolved"
	kindHardcoded      = "hardcoded"
	kindPatternWarning = "pattern_warning"
)

type finding struct {
	File    string `json:"file" yaml:"file"`
	Line    int    `json:"line" yaml:"line"`
	Col     int    `json:"col" yaml:"col"`
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
	Hint    string `json:"hint,omitempty" yaml:"hint,omitempty"`
}

type summary struct {
	Files         int   `json:"files" yaml:"files"`
	ParseFailures int   `json:"parse_failures" yaml:"parse_failures"`
	Keys          int   `json:"keys" yaml:"keys"`
	Resolved      int   `json:"resolved" yaml:"resolved"`
	Unresolved    int   `json:"unresolved" yaml:"unresolved"`
	Hardcoded     int   `json:"hardcoded" yaml:"hardcoded"`
	TotalTimeMs   int64 `json:"total_time_ms" yaml:"total_time_ms"`
}

type checkReport struct {
	Summary  summary   `json:"summary" yaml:"summary"`
	Findings []finding `json:"findings" yaml:"findings"`
}

func newSummary(res *pipeline.Result) summary {
	return summary{
		Files:         res.Stats.FilesDiscovered,
		ParseFailures: res.Stats.ParseFailures,
		Keys:          len(res.KeySet()),
		Resolved:      res.Stats.ResolvedUsages,
		Unresolved:    res.Stats.UnresolvedUsages,
		Hardcoded:     res.Stats.HardcodedTexts,
		TotalTimeMs:   res.Stats.TotalTimeMs,
	}
}

// findings flattens a result into report rows ordered by file, then line.
func findings(res *pipeline.Result, hardcoded bool) []finding {
	out := []finding{}
	for _, f := range res.Files {
		for _, u := range f.Unresolved {
			out = append(out, newFinding(res.Root, u.Context.Location, kindUnresolved, u.Reason.String(), u.Hint))
		}
		if hardcoded {
			for _, h := range f.Hardcoded {
				out = append(out, newFinding(res.Root, h.Context.Location, kindHardcoded, fmt.Sprintf("%q", h.Text), ""))
			}
		}
		for _, w := range f.PatternWarnings {
			loc := source.Location{File: f.Path, Line: w.Line}
			out = append(out, newFinding(res.Root, loc, kindPatternWarning, fmt.Sprintf("invalid key pattern %q", w.Pattern), ""))
		}
	}
	return out
}

func newFinding(root string, loc source.Location, kind, msg, hint string) finding {
	return finding{File: relPath(root, loc.File), Line: loc.Line, Col: loc.Col, Kind: kind, Message: msg, Hint: hint}
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
