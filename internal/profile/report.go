package profile

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Markdown renders the profile as bracketed text sections.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", len(r.Cols)))
	if r.Patients > 0 {
		b.WriteString(fmt.Sprintf("Distinct patients: %d\n", r.Patients))
	}
	b.WriteString("\n[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s/%s (non-null %d, missing %.1f%%, unique %d)",
			safeName(c.Name), c.Kind, c.Type, c.NonNull, missPct, c.Unique))
		switch c.Kind {
		case "numeric":
			if c.NonNull > 0 {
				b.WriteString(fmt.Sprintf(" — min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
			}
		case "categorical", "bool":
			if len(c.TopValues) > 0 {
				b.WriteString(" — top: ")
				writeFreqs(&b, c.TopValues)
			}
		case "text":
			if len(c.ExampleTexts) > 0 {
				b.WriteString(" — e.g., ")
				for i, ex := range c.ExampleTexts {
					if i > 0 {
						b.WriteString(" | ")
					}
					b.WriteString(safeVal(ex))
				}
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("\n[DUPLICATES]\n")
	b.WriteString(fmt.Sprintf("Duplicate rows: %d\n", r.Duplicates))

	if len(r.Dates) > 0 {
		b.WriteString("\n[DATES]\n")
		for _, d := range r.Dates {
			if d.Parsed == 0 {
				b.WriteString(fmt.Sprintf("- %s: no values\n", d.Name))
				continue
			}
			b.WriteString(fmt.Sprintf("- %s: %s to %s (%d distinct days, %d missing)\n",
				d.Name, d.Min.Format("2006-01-02"), d.Max.Format("2006-01-02"), d.Days, d.Missing))
		}
	}

	if len(r.Rankings) > 0 {
		b.WriteString("\n[FREQUENCIES]\n")
		for _, rk := range r.Rankings {
			b.WriteString(fmt.Sprintf("- %s (%d distinct)\n", rk.Column, rk.Distinct))
			b.WriteString("  • most frequent: ")
			writeFreqs(&b, rk.Top)
			b.WriteString("\n")
			if rk.Distinct > len(rk.Top) {
				b.WriteString("  • least frequent: ")
				writeFreqs(&b, rk.Bottom)
				b.WriteString("\n")
			}
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, c := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n| ")
		for i := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i := range r.Cols {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if i < len(row) {
					val = row[i]
				}
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// WriteTable prints the per-column schema as a terminal table.
func (r *Report) WriteTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Column", "Type", "Kind", "Non-null", "Missing", "Unique", "Min", "Max", "Mean"})
	table.SetAutoFormatHeaders(false)
	for _, c := range r.Cols {
		row := []string{
			c.Name,
			string(c.Type),
			c.Kind,
			strconv.Itoa(c.NonNull),
			strconv.Itoa(c.Missing),
			strconv.Itoa(c.Unique),
			"", "", "",
		}
		if c.Kind == "numeric" && c.NonNull > 0 {
			row[6] = fmt.Sprintf("%.4g", c.Min)
			row[7] = fmt.Sprintf("%.4g", c.Max)
			row[8] = fmt.Sprintf("%.4g", c.Mean)
		}
		table.Append(row)
	}
	table.Render()
}

// WriteFrequencies prints a ranking as a terminal table.
func WriteFrequencies(w io.Writer, column string, freqs []Frequency) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{column, "Count"})
	table.SetAutoFormatHeaders(false)
	for _, f := range freqs {
		table.Append([]string{f.Value, strconv.Itoa(f.Count)})
	}
	table.Render()
}

func writeFreqs(b *strings.Builder, freqs []Frequency) {
	for i, kv := range freqs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
	}
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
