package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitOLSRecoversExactLinearRelationship(t *testing.T) {
	var xs, ys []float64
	for x := 0.0; x < 24; x += 0.5 {
		xs = append(xs, x)
		ys = append(ys, 2*x+5)
	}

	model, err := FitOLS(BaselineDesign(), xs, ys)
	require.NoError(t, err)

	require.Len(t, model.Coefficients, 2)
	assert.InDelta(t, 5.0, model.Coefficients[0].Estimate, 1e-8)
	assert.InDelta(t, 2.0, model.Coefficients[1].Estimate, 1e-8)
	assert.InDelta(t, 1.0, model.R2, 1e-12)
	assert.InDelta(t, 25.0, model.Predict(10), 1e-8)
}

func TestFitOLSRecoversInjectedDiscontinuity(t *testing.T) {
	// Below hour 11: y = 10 + 0.5x. At 11 the level jumps by 3 and the
	// slope steepens by 1.
	var xs, ys []float64
	for x := 0.0; x < 24; x += 0.25 {
		y := 10 + 0.5*x
		if x >= 11 {
			y += 3 + 1*(x-11)
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}

	model, err := FitOLS(DiscontinuityDesign(11), xs, ys)
	require.NoError(t, err)
	require.Len(t, model.Coefficients, 4)

	assert.InDelta(t, 10+0.5*11, model.Coefficients[0].Estimate, 1e-6, "level at the break")
	assert.InDelta(t, 0.5, model.Coefficients[1].Estimate, 1e-6, "slope below the break")
	assert.InDelta(t, 3.0, model.Coefficients[2].Estimate, 1e-6, "level jump at the break")
	assert.InDelta(t, 1.0, model.Coefficients[3].Estimate, 1e-6, "slope change past the break")

	assert.InDelta(t, 10+0.5*10, model.Predict(10), 1e-6)
	assert.InDelta(t, 10+0.5*12+3+1, model.Predict(12), 1e-6)
}

func TestFitOLSRejectsDegenerateInputs(t *testing.T) {
	_, err := FitOLS(BaselineDesign(), []float64{1, 2}, []float64{1})
	require.Error(t, err)

	_, err = FitOLS(BaselineDesign(), []float64{1, 2}, []float64{1, 2})
	require.Error(t, err, "as many terms as observations cannot be fit")

	// All observations below the break leave two all-zero columns.
	xs := []float64{1, 2, 3, 4, 5, 6}
	ys := []float64{1, 2, 3, 4, 5, 6}
	_, err = FitOLS(DiscontinuityDesign(11), xs, ys)
	require.Error(t, err)
}

func TestSummaryListsEveryTerm(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	ys := []float64{2.1, 3.9, 6.2, 7.8, 10.1}

	model, err := FitOLS(BaselineDesign(), xs, ys)
	require.NoError(t, err)

	summary := model.Summary()
	assert.Contains(t, summary, "const")
	assert.Contains(t, summary, "order_time_of_day")
	assert.Contains(t, summary, "n=5")
}
