package visualization

import (
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	runtime "github.com/Zaba505/qiskit-runtime-go"
)

type spansConfig struct {
	title       string
	names       []string
	normalize   bool
	commonStart bool
}

// SpansOption configures DrawExecutionSpans.
type SpansOption func(*spansConfig)

// WithSpansTitle sets the chart title.
func WithSpansTitle(title string) SpansOption {
	return func(cfg *spansConfig) {
		cfg.title = title
	}
}

// WithSpansNames names the span collections, in order. Unnamed collections
// fall back to "span collection N".
func WithSpansNames(names ...string) SpansOption {
	return func(cfg *spansConfig) {
		cfg.names = names
	}
}

// WithNormalize plots the percentage of each collection's shots completed
// instead of absolute cumulative shots.
func WithNormalize() SpansOption {
	return func(cfg *spansConfig) {
		cfg.normalize = true
	}
}

// WithCommonStart shifts every collection so its earliest span starts at
// zero, turning the x axis into elapsed seconds.
func WithCommonStart() SpansOption {
	return func(cfg *spansConfig) {
		cfg.commonStart = true
	}
}

// DrawExecutionSpans renders one cumulative-progress line per span
// collection and writes the chart to w as HTML.
func DrawExecutionSpans(w io.Writer, collections []runtime.ExecutionSpans, options ...SpansOption) error {
	if len(collections) == 0 {
		return fmt.Errorf("at least one span collection is required")
	}
	var cfg spansConfig
	for _, option := range options {
		option(&cfg)
	}

	yName := "cumulative shots"
	if cfg.normalize {
		yName = "shots completed (%)"
	}

	line := charts.NewLine()
	xAxis := opts.XAxis{Type: "time", Name: "time"}
	if cfg.commonStart {
		xAxis = opts.XAxis{Type: "value", Name: "elapsed (s)"}
	}
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: cfg.title}),
		charts.WithXAxisOpts(xAxis),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: yName}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	for i, spans := range collections {
		sorted := spans.Sorted()
		name := fmt.Sprintf("span collection %d", i)
		if i < len(cfg.names) && cfg.names[i] != "" {
			name = cfg.names[i]
		}

		start := sorted.Start()
		total := sorted.Size()
		data := make([]opts.LineData, 0, 2*len(sorted))
		cum := 0
		for _, span := range sorted {
			data = append(data, lineDatum(cfg, start, span.Start, cum, total))
			cum += span.Size()
			data = append(data, lineDatum(cfg, start, span.Stop, cum, total))
		}

		line.AddSeries(name, data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: colorAt(i)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: colorAt(i)}),
		)
	}

	return line.Render(w)
}

func lineDatum(cfg spansConfig, start, t time.Time, cum, total int) opts.LineData {
	var x interface{} = t.Format("2006-01-02 15:04:05.000")
	if cfg.commonStart {
		x = t.Sub(start).Seconds()
	}
	var y interface{} = cum
	if cfg.normalize {
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(cum) / float64(total)
		}
		y = pct
	}
	return opts.LineData{Value: []interface{}{x, y}}
}
