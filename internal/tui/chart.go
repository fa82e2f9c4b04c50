package tui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"stockfinder/internal/domain"
)

const chartTitle = "Stock Prices Over the Last Year"

var seriesPalette = []asciigraph.AnsiColor{
	asciigraph.Blue,
	asciigraph.Red,
	asciigraph.Green,
	asciigraph.Yellow,
	asciigraph.Magenta,
	asciigraph.Cyan,
}

// renderChart plots one line per ticker that has closes, in ticker order.
// Tickers without data are listed below the legend.
func renderChart(tickers []string, prices map[string]domain.PriceSeries, width int) string {
	var (
		data    [][]float64
		colors  []asciigraph.AnsiColor
		legend  []string
		missing []string
		first   time.Time
		last    time.Time
	)
	for _, t := range tickers {
		series, ok := prices[t]
		if !ok || len(series.Points) == 0 {
			missing = append(missing, t)
			continue
		}
		color := seriesPalette[len(data)%len(seriesPalette)]
		data = append(data, series.Closes())
		colors = append(colors, color)
		legend = append(legend, lipgloss.NewStyle().
			Foreground(lipgloss.Color(strconv.Itoa(int(color)))).
			Render("━ "+t))

		if p := series.Points[0].Date; first.IsZero() || p.Before(first) {
			first = p
		}
		if p := series.Points[len(series.Points)-1].Date; p.After(last) {
			last = p
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(chartTitle))
	b.WriteString("\n")
	if len(data) == 0 {
		b.WriteString(mutedStyle.Render("No price data available."))
	} else {
		opts := []asciigraph.Option{
			asciigraph.Height(12),
			asciigraph.Width(max(20, width-14)),
			asciigraph.SeriesColors(colors...),
		}
		if !first.IsZero() && !last.IsZero() {
			opts = append(opts, asciigraph.Caption(first.Format("2006-01-02")+" to "+last.Format("2006-01-02")))
		}
		b.WriteString(asciigraph.PlotMany(data, opts...))
		b.WriteString("\n")
		b.WriteString(strings.Join(legend, "  "))
	}
	if len(missing) > 0 {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("No price data for: " + strings.Join(missing, ", ")))
	}
	return b.String()
}
