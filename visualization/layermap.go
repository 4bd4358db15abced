package visualization

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	runtime "github.com/Zaba505/qiskit-runtime-go"
)

type layerMapConfig struct {
	title       string
	colors      []string
	noDataColor string
	coordinates map[int][2]float32
}

// LayerMapOption configures DrawLayerErrorMap.
type LayerMapOption func(*layerMapConfig)

// WithLayerMapTitle sets the chart title.
func WithLayerMapTitle(title string) LayerMapOption {
	return func(cfg *layerMapConfig) {
		cfg.title = title
	}
}

// WithColorscale replaces the default low-to-high rate colorscale.
func WithColorscale(colors ...string) LayerMapOption {
	return func(cfg *layerMapConfig) {
		cfg.colors = colors
	}
}

// WithNoDataColor sets the color for qubits the layer carries no rates for.
func WithNoDataColor(color string) LayerMapOption {
	return func(cfg *layerMapConfig) {
		cfg.noDataColor = color
	}
}

// WithQubitCoordinates places physical qubits at fixed chart positions
// instead of the default circular layout.
func WithQubitCoordinates(coordinates map[int][2]float32) LayerMapOption {
	return func(cfg *layerMapConfig) {
		cfg.coordinates = coordinates
	}
}

// DrawLayerErrorMap renders the learnt layer noise over the backend's
// coupling map and writes the chart to w as HTML. Qubit nodes are valued by
// their summed single-body rates, coupling edges by their summed two-body
// rates.
func DrawLayerErrorMap(w io.Writer, layerErr *runtime.LayerError, couplingMap [][2]int, options ...LayerMapOption) error {
	if layerErr == nil {
		return fmt.Errorf("a layer error is required")
	}
	cfg := layerMapConfig{colors: rateColors, noDataColor: "#d3d3d3"}
	for _, option := range options {
		option(&cfg)
	}

	qubits := layerErr.Qubits()
	oneBody, err := layerErr.Error().RestrictNumBodies(1)
	if err != nil {
		return err
	}
	twoBody, err := layerErr.Error().RestrictNumBodies(2)
	if err != nil {
		return err
	}

	nodeRates := make(map[int]float64, len(qubits))
	for i, label := range oneBody.Generators() {
		for _, q := range actingQubits(label, qubits) {
			nodeRates[q] += oneBody.Rates()[i]
		}
	}
	edgeRates := make(map[[2]int]float64)
	for i, label := range twoBody.Generators() {
		acting := actingQubits(label, qubits)
		if len(acting) == 2 {
			edgeRates[orderedPair(acting[0], acting[1])] += twoBody.Rates()[i]
		}
	}

	maxRate := 0.0
	for _, r := range nodeRates {
		if r > maxRate {
			maxRate = r
		}
	}
	for _, r := range edgeRates {
		if r > maxRate {
			maxRate = r
		}
	}

	nodes := make([]opts.GraphNode, 0, len(qubits))
	for _, q := range qubits {
		node := opts.GraphNode{
			Name:       fmt.Sprintf("q%d", q),
			SymbolSize: 30,
		}
		if rate, ok := nodeRates[q]; ok {
			node.Value = float32(rate)
		} else {
			node.ItemStyle = &opts.ItemStyle{Color: cfg.noDataColor}
		}
		if xy, ok := cfg.coordinates[q]; ok {
			node.X = xy[0]
			node.Y = xy[1]
		}
		nodes = append(nodes, node)
	}

	links := make([]opts.GraphLink, 0, len(couplingMap))
	for _, edge := range couplingMap {
		link := opts.GraphLink{
			Source: fmt.Sprintf("q%d", edge[0]),
			Target: fmt.Sprintf("q%d", edge[1]),
		}
		if rate, ok := edgeRates[orderedPair(edge[0], edge[1])]; ok {
			link.Value = float32(rate)
		}
		links = append(links, link)
	}

	layout := "circular"
	if len(cfg.coordinates) > 0 {
		layout = "none"
	}

	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: cfg.title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxRate),
			InRange:    &opts.VisualMapInRange{Color: cfg.colors},
		}),
	)
	graph.AddSeries("layer error", nodes, links,
		charts.WithGraphChartOpts(opts.GraphChart{
			Layout: layout,
			Roam:   opts.Bool(true),
		}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}),
	)

	return graph.Render(w)
}

// actingQubits maps the non-identity positions of a little-endian Pauli
// label to physical qubits.
func actingQubits(label string, qubits []int) []int {
	var acting []int
	n := len(label)
	for i := 0; i < n && i < len(qubits); i++ {
		if label[n-1-i] != 'I' {
			acting = append(acting, qubits[i])
		}
	}
	return acting
}

func orderedPair(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}
