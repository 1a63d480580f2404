// Package chart renders chart tables as HTML line charts.
package chart

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/darshan-rambhia/whm/internal/model"
)

// gap is how echarts marks a missing value on a line.
const gap = "-"

// TimeFormat is the x-axis label layout.
const TimeFormat = "2006-01-02 15:04"

// Line builds a line chart with one series per column of s.
func Line(s model.ChartSeries) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    s.Table,
			Subtitle: fmt.Sprintf("%d samples", len(s.Points)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll", Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", AxisLabel: &opts.AxisLabel{Rotate: 45}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: s.Table, Width: "100%", Height: "480px"}),
	)

	labels := make([]string, len(s.Points))
	for i, p := range s.Points {
		labels[i] = time.Unix(p.Time, 0).UTC().Format(TimeFormat)
	}
	line.SetXAxis(labels)

	for col, name := range s.Columns {
		data := make([]opts.LineData, len(s.Points))
		for i, p := range s.Points {
			if col < len(p.Values) && p.Values[col] != nil {
				data[i] = opts.LineData{Value: *p.Values[col]}
			} else {
				data[i] = opts.LineData{Value: gap}
			}
		}
		line.AddSeries(name, data,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(len(s.Points) < 100)}),
		)
	}
	return line
}

// Render writes s as a standalone HTML page. The page is rendered into a
// buffer first so a failure never leaves a partial document in w.
func Render(w io.Writer, s model.ChartSeries) error {
	var buf bytes.Buffer
	if err := Line(s).Render(&buf); err != nil {
		return fmt.Errorf("rendering chart %s: %w", s.Table, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
