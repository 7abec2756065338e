package digest

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
)

// renderPriceChart draws the price window as a PNG time series, oldest to
// newest left to right.
func renderPriceChart(points []pricePoint) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 samples, have %d", len(points))
	}

	// Points arrive newest first; the chart reads left to right.
	xs := make([]time.Time, 0, len(points))
	ys := make([]float64, 0, len(points))
	for i := len(points) - 1; i >= 0; i-- {
		xs = append(xs, points[i].At)
		ys = append(ys, points[i].Price)
	}

	graph := chart.Chart{
		Title:  "Bitcoin Price Movement",
		Width:  800,
		Height: 480,
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeValueFormatterWithFormat("01-02 15:04"),
		},
		YAxis: chart.YAxis{
			Name: "Price (USD)",
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "BTC/USD",
				XValues: xs,
				YValues: ys,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
