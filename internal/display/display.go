// Package display renders computed put/call ratio results for the
// terminal. It only consumes pcr.Result values and never computes.
package display

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"

	"github.com/ydegt/putcall/internal/pcr"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	footnoteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Italic(true)
)

// RenderResult writes a textual report for a computed result: key/value
// lines for a single strike, a table with a totals row otherwise.
func RenderResult(w io.Writer, result *pcr.Result) {
	title := fmt.Sprintf("Put/Call Ratio for %s on %s", result.Symbol, result.Expiration)
	fmt.Fprintln(w, headerStyle.Render(title))

	if result.Single != nil {
		renderSingle(w, result.Single)
		return
	}
	renderTable(w, result)
}

func renderSingle(w io.Writer, row *pcr.Row) {
	fmt.Fprintf(w, "Strike:  %s\n", row.Strike)
	fmt.Fprintf(w, "Put OI:  %d\n", row.PutOI)
	fmt.Fprintf(w, "Call OI: %d\n", row.CallOI)
	fmt.Fprintf(w, "PCR:     %s\n", formatRatio(row.Ratio, row.HasRatio))
}

func renderTable(w io.Writer, result *pcr.Result) {
	if len(result.Rows) == 0 {
		fmt.Fprintln(w, "No strikes matched the requested selection.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Strike", "Put OI", "Call OI", "PCR"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetBorder(false)

	for _, row := range result.Rows {
		table.Append([]string{
			row.Strike.String(),
			strconv.FormatInt(row.PutOI, 10),
			strconv.FormatInt(row.CallOI, 10),
			formatRatio(row.Ratio, row.HasRatio),
		})
	}

	if agg := result.Aggregate; agg != nil {
		table.SetFooter([]string{
			"Total",
			strconv.FormatInt(agg.TotalPutOI, 10),
			strconv.FormatInt(agg.TotalCallOI, 10),
			formatRatio(agg.Ratio, agg.Defined),
		})
	}

	table.Render()

	if agg := result.Aggregate; agg != nil && !agg.Defined {
		fmt.Fprintln(w, footnoteStyle.Render("Total call open interest is 0, the total PCR is undefined."))
	}
}

// RenderChart plots the per-strike ratios as a terminal line chart.
// Strikes with an infinite or undefined ratio are left out of the series.
func RenderChart(w io.Writer, result *pcr.Result) {
	series := make([]float64, 0, len(result.Rows))
	dropped := 0
	for _, row := range result.Rows {
		if !row.HasRatio || math.IsInf(row.Ratio, 0) {
			dropped++
			continue
		}
		series = append(series, row.Ratio)
	}

	if len(series) < 2 {
		fmt.Fprintln(w, "Not enough finite ratios to plot a chart.")
		return
	}

	caption := fmt.Sprintf("PCR vs strike for %s on %s", result.Symbol, result.Expiration)
	plot := asciigraph.Plot(series,
		asciigraph.Height(12),
		asciigraph.Width(60),
		asciigraph.Caption(caption),
	)
	fmt.Fprintln(w, plot)

	if dropped > 0 {
		note := fmt.Sprintf("%d strike(s) with infinite or undefined PCR omitted from the chart.", dropped)
		fmt.Fprintln(w, footnoteStyle.Render(note))
	}
}

func formatRatio(ratio float64, defined bool) string {
	if !defined {
		return "n/a"
	}
	if math.IsInf(ratio, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", ratio)
}
