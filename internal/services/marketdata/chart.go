package marketdata

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/marketpulse/internal/models"
)

// RenderIndexChart renders 30-day SENSEX and NIFTY history as a PNG.
// SENSEX is plotted on the left axis, NIFTY on the right.
func (s *Service) RenderIndexChart(ctx context.Context) ([]byte, error) {
	sensex := s.FetchHistoricalData(ctx, SymbolSensex)
	nifty := s.FetchHistoricalData(ctx, SymbolNifty)
	return renderIndexChart(sensex, nifty)
}

func renderIndexChart(sensex, nifty []models.HistoricalPoint) ([]byte, error) {
	if len(sensex) < 2 || len(nifty) < 2 {
		return nil, fmt.Errorf("need at least 2 data points per index, got %d and %d", len(sensex), len(nifty))
	}

	sensexX, sensexY, err := toSeries(sensex)
	if err != nil {
		return nil, err
	}
	niftyX, niftyY, err := toSeries(nifty)
	if err != nil {
		return nil, err
	}

	sensexSeries := chart.TimeSeries{
		Name: "SENSEX",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: sensexX,
		YValues: sensexY,
	}

	niftySeries := chart.TimeSeries{
		Name: "NIFTY 50",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("f97316"), // orange-500
			StrokeWidth: 2.5,
		},
		YAxis:   chart.YAxisSecondary,
		XValues: niftyX,
		YValues: niftyY,
	}

	pointsFormatter := func(v interface{}) string {
		if f, ok := v.(float64); ok {
			return fmt.Sprintf("%.0f", f)
		}
		return ""
	}

	graph := chart.Chart{
		Title:  "Indian Market Indices",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("02 Jan")
				}
				return ""
			},
		},
		YAxis:          chart.YAxis{ValueFormatter: pointsFormatter},
		YAxisSecondary: chart.YAxis{ValueFormatter: pointsFormatter},
		Series: []chart.Series{
			sensexSeries,
			niftySeries,
		},
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

func toSeries(points []models.HistoricalPoint) ([]time.Time, []float64, error) {
	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		d, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			return nil, nil, fmt.Errorf("bad history date %q: %w", p.Date, err)
		}
		xs[i] = d
		ys[i] = p.Price
	}
	return xs, ys, nil
}
