package chart

// Palette is the fixed color sequence assigned to chart series.
var Palette = []string{
	"#4F46E5",
	"#10B981",
	"#F59E0B",
	"#EF4444",
	"#8B5CF6",
	"#06B6D4",
	"#EC4899",
	"#84CC16",
}

// Data is the generic shape a chart renderer consumes. Labels, Values and
// Colors always have the same length.
type Data struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Colors []string  `json:"colors"`
}

// Colors returns n colors from Palette, starting over when n exceeds it.
func Colors(n int) []string {
	colors := make([]string, n)
	for i := range colors {
		colors[i] = Palette[i%len(Palette)]
	}
	return colors
}

// New pairs labels with values and assigns colors.
func New(labels []string, values []float64) Data {
	if len(labels) != len(values) {
		panic("chart: labels and values differ in length")
	}
	return Data{
		Labels: append([]string{}, labels...),
		Values: append([]float64{}, values...),
		Colors: Colors(len(labels)),
	}
}
