package report

import (
	"encoding/json"
	"fmt"

	quickchartgo "github.com/henomis/quickchart-go"
	"github.com/matthieukhl/ordersight/internal/queries"
)

type ChartConfig struct {
	Type string    `json:"type"`
	Data ChartData `json:"data"`
}

type ChartData struct {
	Labels   []int     `json:"labels"`
	DataSets []Dataset `json:"datasets"`
}

type Dataset struct {
	Label string `json:"label"`
	Data  []int  `json:"data"`
	Fill  bool   `json:"fill"`
}

// FunnelChartURL renders the funnel distributions as a hosted chart URL,
// for clients of the HTTP API that want an image instead of raw buckets.
func FunnelChartURL(dist *queries.FunnelDistribution) (string, error) {
	config := ChartConfig{
		Type: "line",
		Data: ChartData{
			Labels: dist.Hours,
			DataSets: []Dataset{
				{Label: "Click to order", Data: dist.ClickToOrder},
				{Label: "Click to ship", Data: dist.ClickToShip},
			},
		},
	}

	bytes, err := json.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chart config: %w", err)
	}

	qc := quickchartgo.New()
	qc.Config = string(bytes)

	url, err := qc.GetUrl()
	if err != nil {
		return "", fmt.Errorf("failed to build chart url: %w", err)
	}
	return url, nil
}
