package predict

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/matthieukhl/ordersight/internal/models"
	"gonum.org/v1/gonum/floats"
)

// PLUS imputation: predict a user's loyalty-program membership from the
// demographic columns of the raw user extract.

// Params controls training and evaluation.
type Params struct {
	Folds        int
	TestFraction float64
	Epochs       int
	LearningRate float64
	Seed         int64
}

// Dataset is a one-hot encoded design over the user demographics, with the
// PLUS flag as the label.
type Dataset struct {
	Features []string
	X        [][]float64
	Y        []float64
}

// Encode one-hot encodes user_level, gender, education, purchase_power, and
// city_level. Levels are sorted per field so the encoding is stable across
// runs regardless of extract order.
func Encode(users []models.User) (*Dataset, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to encode")
	}

	fields := []struct {
		name  string
		value func(u models.User) string
	}{
		{"user_level", func(u models.User) string { return u.UserLevel }},
		{"gender", func(u models.User) string { return u.Gender }},
		{"education", func(u models.User) string { return u.Education }},
		{"purchase_power", func(u models.User) string { return u.PurchasePower }},
		{"city_level", func(u models.User) string { return u.CityLevel }},
	}

	ds := &Dataset{}
	type column struct {
		field int
		level string
	}
	var columns []column
	for fi, field := range fields {
		levels := make(map[string]bool)
		for _, u := range users {
			levels[field.value(u)] = true
		}
		sorted := make([]string, 0, len(levels))
		for level := range levels {
			sorted = append(sorted, level)
		}
		sort.Strings(sorted)
		for _, level := range sorted {
			columns = append(columns, column{field: fi, level: level})
			ds.Features = append(ds.Features, field.name+"="+level)
		}
	}

	ds.X = make([][]float64, len(users))
	ds.Y = make([]float64, len(users))
	for i, u := range users {
		row := make([]float64, len(columns))
		for j, c := range columns {
			if fields[c.field].value(u) == c.level {
				row[j] = 1
			}
		}
		ds.X[i] = row
		ds.Y[i] = float64(u.Plus)
	}

	return ds, nil
}

// Classifier is a fitted logistic-regression model.
type Classifier struct {
	weights []float64
	bias    float64
}

// Train fits a logistic regression by full-batch gradient descent.
func Train(X [][]float64, y []float64, params Params) *Classifier {
	n := len(X)
	p := 0
	if n > 0 {
		p = len(X[0])
	}

	c := &Classifier{weights: make([]float64, p)}
	if n == 0 {
		return c
	}

	grad := make([]float64, p)
	for epoch := 0; epoch < params.Epochs; epoch++ {
		for j := range grad {
			grad[j] = 0
		}
		var biasGrad float64

		for i, row := range X {
			err := sigmoid(floats.Dot(c.weights, row)+c.bias) - y[i]
			floats.AddScaled(grad, err, row)
			biasGrad += err
		}

		step := params.LearningRate / float64(n)
		floats.AddScaled(c.weights, -step, grad)
		c.bias -= step * biasGrad
	}

	return c
}

// Predict classifies one encoded row.
func (c *Classifier) Predict(row []float64) int {
	if sigmoid(floats.Dot(c.weights, row)+c.bias) >= 0.5 {
		return 1
	}
	return 0
}

// CrossValidate reports mean accuracy over k shuffled folds.
func CrossValidate(ds *Dataset, params Params) (float64, error) {
	n := len(ds.X)
	if params.Folds < 2 {
		return 0, fmt.Errorf("need at least 2 folds, got %d", params.Folds)
	}
	if n < params.Folds {
		return 0, fmt.Errorf("need at least %d samples for %d folds, got %d", params.Folds, params.Folds, n)
	}

	perm := rand.New(rand.NewSource(params.Seed)).Perm(n)

	var total float64
	for fold := 0; fold < params.Folds; fold++ {
		lo := fold * n / params.Folds
		hi := (fold + 1) * n / params.Folds

		var trainX, testX [][]float64
		var trainY, testY []float64
		for i, idx := range perm {
			if i >= lo && i < hi {
				testX = append(testX, ds.X[idx])
				testY = append(testY, ds.Y[idx])
			} else {
				trainX = append(trainX, ds.X[idx])
				trainY = append(trainY, ds.Y[idx])
			}
		}

		model := Train(trainX, trainY, params)
		total += accuracy(model, testX, testY)
	}

	return total / float64(params.Folds), nil
}

// ConfusionMatrix counts hold-out predictions against the true PLUS flags.
type ConfusionMatrix struct {
	TrueNegative  int
	FalsePositive int
	FalseNegative int
	TruePositive  int
}

// Accuracy is the share of correct predictions.
func (m ConfusionMatrix) Accuracy() float64 {
	total := m.TrueNegative + m.FalsePositive + m.FalseNegative + m.TruePositive
	if total == 0 {
		return 0
	}
	return float64(m.TrueNegative+m.TruePositive) / float64(total)
}

// String renders the matrix with row labels for the true class and column
// labels for the predicted class.
func (m ConfusionMatrix) String() string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tNot PLUS\tPLUS")
	fmt.Fprintf(w, "Not PLUS\t%d\t%d\n", m.TrueNegative, m.FalsePositive)
	fmt.Fprintf(w, "PLUS\t%d\t%d\n", m.FalseNegative, m.TruePositive)
	w.Flush()
	return b.String()
}

// HoldOut shuffles the dataset, trains on the first (1 − TestFraction), and
// evaluates on the rest.
func HoldOut(ds *Dataset, params Params) (*ConfusionMatrix, error) {
	n := len(ds.X)
	split := n - int(float64(n)*params.TestFraction)
	if split <= 0 || split >= n {
		return nil, fmt.Errorf("test fraction %.2f leaves no usable split for %d samples", params.TestFraction, n)
	}

	perm := rand.New(rand.NewSource(params.Seed)).Perm(n)

	var trainX, testX [][]float64
	var trainY, testY []float64
	for i, idx := range perm {
		if i < split {
			trainX = append(trainX, ds.X[idx])
			trainY = append(trainY, ds.Y[idx])
		} else {
			testX = append(testX, ds.X[idx])
			testY = append(testY, ds.Y[idx])
		}
	}

	model := Train(trainX, trainY, params)

	matrix := &ConfusionMatrix{}
	for i, row := range testX {
		predicted := model.Predict(row)
		switch {
		case testY[i] == 0 && predicted == 0:
			matrix.TrueNegative++
		case testY[i] == 0 && predicted == 1:
			matrix.FalsePositive++
		case testY[i] == 1 && predicted == 0:
			matrix.FalseNegative++
		default:
			matrix.TruePositive++
		}
	}

	return matrix, nil
}

func accuracy(model *Classifier, X [][]float64, y []float64) float64 {
	if len(X) == 0 {
		return 0
	}
	correct := 0
	for i, row := range X {
		if float64(model.Predict(row)) == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(X))
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
