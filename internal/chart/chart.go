// Package chart renders affinity and timeline results as a self-contained
// HTML dashboard using go-echarts.
package chart

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/codelinehq/codeline/internal/contract"
	"github.com/codelinehq/codeline/schema"
)

const (
	maxChartPairs    = 20
	maxChartFiles    = 20
	maxLabelLen      = 30
	labelRotate      = 60
	labelFontSize    = 10
	chartWidth       = "1200px"
	barChartHeight   = "500px"
	emptyChartHeight = "400px"

	pairColor     = "#5470c6"
	fileColor     = "#ee6666"
	chainColor    = "#91cc75"
	clampedColor  = "#fac858"
	gapColor      = "transparent"
	timelineStack = "timeline"
)

// WriteChartPage renders the dashboard to cfg.ChartFile.
func WriteChartPage(affinity *schema.AffinityResult, timeline *schema.TimelineResult, cfg *contract.Config) error {
	if cfg.ChartFile == "" {
		return fmt.Errorf("--chart-file is required for chart output")
	}

	file, err := os.Create(cfg.ChartFile)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := RenderChartPage(file, affinity, timeline, cfg); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "📈 Wrote chart page to %s\n", cfg.ChartFile)
	return nil
}

// RenderChartPage writes the assembled dashboard page to the writer.
func RenderChartPage(w io.Writer, affinity *schema.AffinityResult, timeline *schema.TimelineResult, cfg *contract.Config) error {
	page := components.NewPage()
	page.PageTitle = "Codeline Analysis"
	page.SetLayout(components.PageFlexLayout)

	page.AddCharts(
		buildPairBarChart(affinity, cfg.ResultLimit),
		buildTopFilesChart(affinity),
		buildTimelineChart(timeline),
	)

	return page.Render(w)
}

// buildPairBarChart creates a horizontal bar chart of the strongest co-change pairs.
func buildPairBarChart(result *schema.AffinityResult, limit int) *charts.Bar {
	pairs := result.Pairs
	if limit <= 0 || limit > maxChartPairs {
		limit = maxChartPairs
	}
	if len(pairs) > limit {
		pairs = pairs[:limit]
	}

	if len(pairs) == 0 {
		return emptyBarChart("File Pair Affinity")
	}

	shown := len(pairs)
	labels := make([]string, shown)
	values := make([]opts.BarData, shown)

	// Reverse so the strongest pair lands at the top of the chart.
	for i, pair := range pairs {
		labels[shown-1-i] = truncateLabel(pair.Pair.A) + " ↔ " + truncateLabel(pair.Pair.B)
		values[shown-1-i] = opts.BarData{Value: pair.Score}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "File Pair Affinity",
			Subtitle: fmt.Sprintf("Tuned cutoff %.2f keeps %d files in the network", result.Threshold.Cutoff, result.Threshold.NodeCount),
		}),
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: barChartHeight}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithGridOpts(opts.Grid{Left: "35%", Right: "5%", Top: "60", Bottom: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "value",
			AxisLabel: &opts.AxisLabel{FontSize: labelFontSize},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "category", Data: labels,
			AxisLabel: &opts.AxisLabel{FontSize: labelFontSize},
		}),
	)

	bar.AddSeries("Affinity", values,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: pairColor}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "right", FontSize: labelFontSize}),
	)

	return bar
}

// buildTopFilesChart creates a bar chart ranking files by total affinity mass.
func buildTopFilesChart(result *schema.AffinityResult) *charts.Bar {
	files := result.TopFiles
	if len(files) > maxChartFiles {
		files = files[:maxChartFiles]
	}

	if len(files) == 0 {
		return emptyBarChart("Top Files by Affinity")
	}

	labels := make([]string, len(files))
	values := make([]opts.BarData, len(files))

	for i, file := range files {
		labels[i] = truncateLabel(file.Path)
		values[i] = opts.BarData{Value: file.Total}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Top Files by Affinity",
			Subtitle: fmt.Sprintf("Accumulated co-change mass across %d commits", result.Commits),
		}),
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: barChartHeight}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithGridOpts(opts.Grid{Left: "8%", Right: "5%", Top: "60", Bottom: "25%"}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: labelRotate, Interval: "0", FontSize: labelFontSize},
		}),
	)

	bar.SetXAxis(labels)
	bar.AddSeries("Total", values,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: fileColor}),
	)

	return bar
}

// buildTimelineChart creates a stacked horizontal bar chart laying out chain
// lifespans per slot. Each chain is drawn as a transparent gap segment from
// the previous chain's end followed by a visible duration segment, which is
// the standard echarts approach to Gantt-style bars.
func buildTimelineChart(result *schema.TimelineResult) *charts.Bar {
	if len(result.Rows) == 0 {
		return emptyBarChart("Chain Timeline")
	}

	slots := make([][]schema.TimelineRow, result.SlotCount)
	for _, row := range result.Rows {
		slots[row.Slot] = append(slots[row.Slot], row)
	}
	maxPerSlot := 0
	segGaps := make([][]float64, result.SlotCount)
	segSpans := make([][]float64, result.SlotCount)
	for slot, rows := range slots {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Start.Before(rows[j].Start) })
		segGaps[slot], segSpans[slot] = slotSegments(rows, result.WindowStart)
		if len(rows) > maxPerSlot {
			maxPerSlot = len(rows)
		}
	}

	labels := make([]string, result.SlotCount)
	for i := range labels {
		// Slot 0 renders at the bottom of a category axis, so keep its label first.
		labels[i] = fmt.Sprintf("Slot %d", i)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Chain Timeline",
			Subtitle: fmt.Sprintf("%d chains in %d slots over %s to %s",
				result.ChainCount, result.SlotCount,
				result.WindowStart.Format(contract.DateOnlyFormat),
				result.WindowEnd.Format(contract.DateOnlyFormat)),
		}),
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: barChartHeight}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithGridOpts(opts.Grid{Left: "8%", Right: "5%", Top: "60", Bottom: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "value",
			Name:      "Hours since window start",
			AxisLabel: &opts.AxisLabel{FontSize: labelFontSize},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "category", Data: labels,
			AxisLabel: &opts.AxisLabel{FontSize: labelFontSize},
		}),
	)

	// One gap series and one duration series per chain position, all in one stack.
	for pos := 0; pos < maxPerSlot; pos++ {
		gaps := make([]opts.BarData, result.SlotCount)
		durations := make([]opts.BarData, result.SlotCount)

		for slot, rows := range slots {
			if pos >= len(rows) {
				gaps[slot] = opts.BarData{Value: 0}
				durations[slot] = opts.BarData{Value: 0}
				continue
			}

			row := rows[pos]
			color := chainColor
			if row.TruncatedStart || row.TruncatedEnd {
				color = clampedColor
			}

			gaps[slot] = opts.BarData{Value: segGaps[slot][pos]}
			durations[slot] = opts.BarData{
				Value:     segSpans[slot][pos],
				Name:      schema.ShortHash(row.Head),
				ItemStyle: &opts.ItemStyle{Color: color},
			}
		}

		bar.AddSeries(fmt.Sprintf("gap-%d", pos), gaps,
			charts.WithBarChartOpts(opts.BarChart{Stack: timelineStack}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: gapColor}),
		)
		bar.AddSeries(fmt.Sprintf("chain-%d", pos), durations,
			charts.WithBarChartOpts(opts.BarChart{Stack: timelineStack}),
		)
	}

	return bar
}

// slotSegments converts one slot's rows into alternating gap and span widths
// in hours. Gaps are measured from the previous chain's drawn end rather than
// its real end, so the minimum drawn width of short chains cannot push later
// bars past their true start offsets.
func slotSegments(rows []schema.TimelineRow, windowStart time.Time) (gaps, spans []float64) {
	drawnEnd := 0.0
	for _, row := range rows {
		gap := row.Start.Sub(windowStart).Hours() - drawnEnd
		if gap < 0 {
			gap = 0
		}
		span := chainSpanHours(row)
		gaps = append(gaps, gap)
		spans = append(spans, span)
		drawnEnd += gap + span
	}
	return gaps, spans
}

// chainSpanHours returns the drawable width of a chain. Single-commit chains
// get a minimum width of one hour so they stay visible.
func chainSpanHours(row schema.TimelineRow) float64 {
	span := row.End.Sub(row.Start).Hours()
	if span < 1 {
		span = 1
	}
	return span
}

func emptyBarChart(title string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: emptyChartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "No data"}),
	)
	return bar
}

// truncateLabel shortens a file path for chart labels.
func truncateLabel(path string) string {
	if len(path) <= maxLabelLen {
		return path
	}
	return "..." + path[len(path)-maxLabelLen+3:]
}
