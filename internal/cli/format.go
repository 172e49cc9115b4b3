package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ryotapoi/mdlinkify/internal/core"
	"github.com/ryotapoi/mdlinkify/internal/locale"
)

// parseFields splits a comma-separated field string into a slice.
// Returns nil for empty input.
func parseFields(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validateFormat checks that format is "json" or "text".
func validateFormat(format string) error {
	if format != "json" && format != "text" {
		return fmt.Errorf("invalid format: %q (must be json or text)", format)
	}
	return nil
}

// validateFields checks that all fields are in the valid set.
// name is used in the error message (e.g. "stats").
func validateFields(fields []string, valid map[string]bool, name string) error {
	for _, f := range fields {
		if !valid[f] {
			return fmt.Errorf("unknown %s field: %s", name, f)
		}
	}
	return nil
}

// fieldSet returns a set of fields to show. If fields is nil/empty, all valid fields are shown.
func fieldSet(fields []string, valid map[string]bool) map[string]bool {
	if len(fields) == 0 {
		all := make(map[string]bool)
		for k := range valid {
			all[k] = true
		}
		return all
	}
	m := make(map[string]bool, len(fields))
	for _, f := range fields {
		m[f] = true
	}
	return m
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// --- Scan output ---

type scanJSON struct {
	File  string   `json:"file"`
	Title string   `json:"title"`
	Hits  []string `json:"hits"`
}

func printScanJSON(w io.Writer, r *core.ScanResult) error {
	hits := r.Hits
	if hits == nil {
		hits = []string{}
	}
	return encodeJSON(w, scanJSON{File: r.File, Title: r.Title, Hits: hits})
}

// --- Convert output ---

type conversionJSON struct {
	File  string `json:"file"`
	Title string `json:"title"`
	Line  int    `json:"line"`
	Col   int    `json:"col"`
}

type convertJSON struct {
	DryRun    bool             `json:"dry_run"`
	Files     []string         `json:"files"`
	Converted []conversionJSON `json:"converted"`
}

func printConvertJSON(w io.Writer, r *core.ConvertResult, dryRun bool) error {
	out := convertJSON{
		DryRun:    dryRun,
		Files:     r.Files,
		Converted: make([]conversionJSON, len(r.Converted)),
	}
	if out.Files == nil {
		out.Files = []string{}
	}
	for i, c := range r.Converted {
		// editors count lines and columns from 1
		out.Converted[i] = conversionJSON{File: c.File, Title: c.Title, Line: c.Line + 1, Col: c.Col + 1}
	}
	return encodeJSON(w, out)
}

func printConvertText(w io.Writer, r *core.ConvertResult, dryRun bool, msgs *locale.Table) {
	if len(r.Converted) == 0 {
		printSuccess(w, "%s", msgs.T(locale.NothingToConvert))
		return
	}
	for _, c := range r.Converted {
		fmt.Fprintf(w, "  %s %s\n", dim(fmt.Sprintf("%s:%d:%d", c.File, c.Line+1, c.Col+1)), info("[["+c.Title+"]]"))
	}
	if dryRun {
		printWarning(w, msgs.T(locale.DryRunSummary), len(r.Converted), len(r.Files))
		return
	}
	printSuccess(w, msgs.T(locale.ConvertedSummary), len(r.Converted), len(r.Files))
}

// --- Stats output ---

var validStatsFieldsCLI = map[string]bool{
	"titles_total":     true,
	"titles_excluded":  true,
	"titles_duplicate": true,
}

func printStatsJSON(w io.Writer, r *core.StatsResult, fields []string) error {
	show := fieldSet(fields, validStatsFieldsCLI)
	m := make(map[string]int)
	if show["titles_total"] {
		m["titles_total"] = r.TitlesTotal
	}
	if show["titles_excluded"] {
		m["titles_excluded"] = r.TitlesExcluded
	}
	if show["titles_duplicate"] {
		m["titles_duplicate"] = r.TitlesDuplicate
	}
	return encodeJSON(w, m)
}

func printStatsText(w io.Writer, r *core.StatsResult, fields []string) error {
	show := fieldSet(fields, validStatsFieldsCLI)
	if show["titles_total"] {
		fmt.Fprintf(w, "titles_total: %d\n", r.TitlesTotal)
	}
	if show["titles_excluded"] {
		fmt.Fprintf(w, "titles_excluded: %d\n", r.TitlesExcluded)
	}
	if show["titles_duplicate"] {
		fmt.Fprintf(w, "titles_duplicate: %d\n", r.TitlesDuplicate)
	}
	return nil
}
