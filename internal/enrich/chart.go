package enrich

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/HaliroESG/portfolio-project/internal/models"
	"github.com/HaliroESG/portfolio-project/internal/signals"
)

// RenderValueChart renders a PNG line chart of the instrument's EUR
// value series with its 200-day moving average overlaid when enough
// history exists. Returns raw PNG bytes.
func RenderValueChart(ticker string, aligned models.AlignedSeries) ([]byte, error) {
	if len(aligned) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(aligned))
	}

	xValues := make([]time.Time, len(aligned))
	valueY := make([]float64, len(aligned))
	for i, p := range aligned {
		xValues[i] = p.Date
		valueY[i] = p.ValueEUR
	}

	series := []chart.Series{
		chart.TimeSeries{
			Name: "Value (EUR)",
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex("2563eb"),
				StrokeWidth: 2.0,
			},
			XValues: xValues,
			YValues: valueY,
		},
	}

	// Rolling MA200 over the EUR values when the series is deep enough.
	if len(aligned) >= signals.MA200Period {
		maX := make([]time.Time, 0, len(aligned)-signals.MA200Period+1)
		maY := make([]float64, 0, len(aligned)-signals.MA200Period+1)
		values := aligned.ValuesEUR()
		for i := signals.MA200Period; i <= len(values); i++ {
			if ma, ok := signals.SMA(values[:i], signals.MA200Period); ok {
				maX = append(maX, aligned[i-1].Date)
				maY = append(maY, ma)
			}
		}
		series = append(series, chart.TimeSeries{
			Name: "MA200",
			Style: chart.Style{
				StrokeColor:     drawing.ColorFromHex("9ca3af"),
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{5.0, 3.0},
			},
			XValues: maX,
			YValues: maY,
		})
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s EUR Value", ticker),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("€%.2f", f)
				}
				return ""
			},
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
