package analyze

import (
	"fmt"
	"math"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Design turns one value of the independent variable into a row of the
// design matrix.
type Design struct {
	Name  string
	Terms []string
	Row   func(x float64) []float64
}

// BaselineDesign is an ordinary linear fit with an intercept.
func BaselineDesign() Design {
	return Design{
		Name:  "baseline OLS",
		Terms: []string{"const", "order_time_of_day"},
		Row: func(x float64) []float64 {
			return []float64{1, x}
		},
	}
}

// DiscontinuityDesign allows both the intercept and the slope to change at
// breakHour: an indicator for x ≥ breakHour, a recentred slope term, and
// their interaction.
func DiscontinuityDesign(breakHour float64) Design {
	centered := fmt.Sprintf("time_minus_%g", breakHour)
	indicator := fmt.Sprintf("past_%g", breakHour)
	return Design{
		Name:  fmt.Sprintf("discontinuity at hour %g", breakHour),
		Terms: []string{"const", centered, indicator, centered + ":" + indicator},
		Row: func(x float64) []float64 {
			ind := 0.0
			if x >= breakHour {
				ind = 1
			}
			return []float64{1, x - breakHour, ind, (x - breakHour) * ind}
		},
	}
}

// Coefficient is one fitted model term.
type Coefficient struct {
	Term     string  `json:"term"`
	Estimate float64 `json:"estimate"`
	StdErr   float64 `json:"std_err"`
	TStat    float64 `json:"t_stat"`
}

// Model is a fitted least-squares regression.
type Model struct {
	Design       Design
	Coefficients []Coefficient
	N            int
	R2           float64
	AdjR2        float64

	beta []float64
}

// FitOLS fits ys on the design expansion of xs by ordinary least squares.
func FitOLS(design Design, xs, ys []float64) (*Model, error) {
	n := len(xs)
	p := len(design.Terms)
	if len(ys) != n {
		return nil, fmt.Errorf("mismatched sample sizes: %d vs %d", n, len(ys))
	}
	if n <= p {
		return nil, fmt.Errorf("need more than %d observations to fit %d terms, got %d", p, p, n)
	}

	X := mat.NewDense(n, p, nil)
	for i, x := range xs {
		X.SetRow(i, design.Row(x))
	}
	y := mat.NewVecDense(n, ys)

	var qr mat.QR
	qr.Factorize(X)

	beta := mat.NewVecDense(p, nil)
	if err := qr.SolveVecTo(beta, false, y); err != nil {
		return nil, fmt.Errorf("failed to solve least squares: %w", err)
	}

	// Residual variance and R².
	meanY := stat.Mean(ys, nil)
	var rss, tss float64
	for i, x := range xs {
		fitted := floats.Dot(design.Row(x), beta.RawVector().Data)
		r := ys[i] - fitted
		rss += r * r
		d := ys[i] - meanY
		tss += d * d
	}

	r2 := 0.0
	if tss > 0 {
		r2 = 1 - rss/tss
	}
	adjR2 := 1 - (1-r2)*float64(n-1)/float64(n-p)
	sigma2 := rss / float64(n-p)

	// Standard errors via (XᵀX)⁻¹.
	var xtx, xtxInv mat.Dense
	xtx.Mul(X.T(), X)
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("design matrix is singular: %w", err)
	}

	model := &Model{
		Design: design,
		N:      n,
		R2:     r2,
		AdjR2:  adjR2,
		beta:   beta.RawVector().Data,
	}
	for j, term := range design.Terms {
		estimate := beta.AtVec(j)
		stderr := math.Sqrt(sigma2 * xtxInv.At(j, j))
		t := math.Inf(1)
		if stderr > 0 {
			t = estimate / stderr
		}
		model.Coefficients = append(model.Coefficients, Coefficient{
			Term:     term,
			Estimate: estimate,
			StdErr:   stderr,
			TStat:    t,
		})
	}

	return model, nil
}

// Predict evaluates the fitted model at x.
func (m *Model) Predict(x float64) float64 {
	return floats.Dot(m.Design.Row(x), m.beta)
}

// Fitted evaluates the model at every x.
func (m *Model) Fitted(xs []float64) []float64 {
	fitted := make([]float64, len(xs))
	for i, x := range xs {
		fitted[i] = m.Predict(x)
	}
	return fitted
}

// Summary renders a coefficient table.
func (m *Model) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (n=%d, R²=%.4f, adj. R²=%.4f)\n", m.Design.Name, m.N, m.R2, m.AdjR2)

	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "term\tcoef\tstd err\tt")
	for _, c := range m.Coefficients {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.3f\n", c.Term, c.Estimate, c.StdErr, c.TStat)
	}
	w.Flush()

	return b.String()
}
