// Package visualization renders interactive HTML charts for execution spans
// and learnt layer noise. Charts are written as self-contained HTML via
// go-echarts.
package visualization

// Default series palette, cycled when more collections than colors are drawn.
var palette = []string{
	"#636efa", "#ef553b", "#00cc96", "#ab63fa", "#ffa15a",
	"#19d3f3", "#ff6692", "#b6e880", "#ff97ff", "#fecb52",
}

// Default colorscale for rate-valued visual maps, low to high.
var rateColors = []string{"#4169e1", "#ffa500", "#dc143c"}

func colorAt(i int) string {
	return palette[i%len(palette)]
}
