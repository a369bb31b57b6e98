// Package chartjs builds Chart.js line chart configurations on the
// server so the dashboard script only has to hand them to the Chart
// constructor.
package chartjs

import (
	"math"
)

const ColorYellow = "#ffc107d4"
const ColorRed = "#f44336d4"

// NewChart creates a two-dataset line chart with one point per label.
// A market day normally has 24 intervals but DST days have 23 or 25,
// so the caller supplies the labels.
func NewChart(title string, labels []string) Chart {
	chart := Chart{
		Type: "line",
		Data: Data{
			Labels: labels,
			Datasets: []Dataset{
				{
					Data:        make([]*float64, len(labels)),
					BorderWidth: 1,
					Tension:     0.4,
					Fill:        true,
					BorderColor: ColorYellow,
					YAxisID:     "YAxis1",
				},
				{
					Data:        make([]*float64, len(labels)),
					BorderWidth: 1,
					Tension:     0.4,
					Fill:        true,
					BorderColor: ColorRed,
					YAxisID:     "YAxis2",
				},
			},
		},
		Options: Options{
			Responsive: true,
			Plugins: Plugins{
				Legend: Legend{Display: false},
				Title:  Title{Display: false},
			},
			Scales: map[string]Scale{
				"YAxis1": {
					Type:     "linear",
					Display:  true,
					Position: "left",
					Title:    ScaleTitle{Display: true, Text: "", Color: ColorYellow}},
				"YAxis2": {
					Type:     "linear",
					Display:  true,
					Position: "right",
					Title:    ScaleTitle{Display: true, Text: "", Color: ColorRed}},
			},
		},
	}

	if title != "" {
		chart.Options.Plugins.Title = Title{Display: true, Text: title}
	}

	return chart
}

func (cs Scale) WithTitle(title string) Scale {
	cs.Title.Text = title
	return cs
}

func (cs Scale) WithMinAndMax(min, max float64) Scale {
	cs.Min = &min
	cs.Max = &max
	return cs
}

func FixedFloat64(num float64, precision int) *float64 {
	p := math.Pow(10, float64(precision))
	rounded := math.Round(num * p)
	result := rounded / p
	return &result
}
