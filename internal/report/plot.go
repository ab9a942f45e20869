package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/matthieukhl/ordersight/internal/analyze"
	"github.com/matthieukhl/ordersight/internal/queries"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SaveFunnelDistribution renders the click-to-order and click-to-ship hour
// distributions as two overlaid lines and writes a PNG into dir.
func SaveFunnelDistribution(dist *queries.FunnelDistribution, dir string) (string, error) {
	p := plot.New()
	p.Title.Text = "Hours from click to order and ship"
	p.X.Label.Text = "hours"
	p.Y.Label.Text = "events"

	order := make(plotter.XYs, len(dist.Hours))
	ship := make(plotter.XYs, len(dist.Hours))
	for i, hour := range dist.Hours {
		order[i] = plotter.XY{X: float64(hour), Y: float64(dist.ClickToOrder[i])}
		ship[i] = plotter.XY{X: float64(hour), Y: float64(dist.ClickToShip[i])}
	}

	orderLine, err := plotter.NewLine(order)
	if err != nil {
		return "", fmt.Errorf("failed to build click-to-order line: %w", err)
	}
	orderLine.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}

	shipLine, err := plotter.NewLine(ship)
	if err != nil {
		return "", fmt.Errorf("failed to build click-to-ship line: %w", err)
	}
	shipLine.Color = color.RGBA{R: 255, G: 127, B: 14, A: 255}

	p.Add(orderLine, shipLine)
	p.Legend.Add("Click to order", orderLine)
	p.Legend.Add("Click to ship", shipLine)
	p.Legend.Top = true

	path := filepath.Join(dir, "hour_distribution.png")
	if err := savePlot(p, path); err != nil {
		return "", err
	}
	return path, nil
}

// SaveDeliveryScatter renders delivery time against order time of day, with
// the fitted model values overlaid, and writes a PNG into dir.
func SaveDeliveryScatter(observations []analyze.DeliveryObservation, model *analyze.Model, dir string) (string, error) {
	p := plot.New()
	p.X.Label.Text = "Order Time of Day"
	p.Y.Label.Text = "Delivery Time (hours)"

	data := make(plotter.XYs, len(observations))
	fit := make(plotter.XYs, len(observations))
	for i, o := range observations {
		data[i] = plotter.XY{X: o.OrderTimeOfDay, Y: o.DeliveryTime}
		fit[i] = plotter.XY{X: o.OrderTimeOfDay, Y: model.Predict(o.OrderTimeOfDay)}
	}

	scatter, err := plotter.NewScatter(data)
	if err != nil {
		return "", fmt.Errorf("failed to build scatter: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(1.5)
	// Heavy overplotting, same as the source data: keep the points nearly
	// transparent so density reads as shade.
	scatter.GlyphStyle.Color = color.NRGBA{R: 31, G: 119, B: 180, A: 16}

	fitted, err := plotter.NewScatter(fit)
	if err != nil {
		return "", fmt.Errorf("failed to build fitted overlay: %w", err)
	}
	fitted.GlyphStyle.Radius = vg.Points(1.5)
	fitted.GlyphStyle.Color = color.NRGBA{R: 44, G: 160, B: 44, A: 255}

	p.Add(scatter, fitted)
	p.Legend.Add("Data", scatter)
	p.Legend.Add("OLS Model", fitted)
	p.Legend.Top = true

	path := filepath.Join(dir, "regression_discontinuity.png")
	if err := savePlot(p, path); err != nil {
		return "", err
	}
	return path, nil
}

func savePlot(p *plot.Plot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
