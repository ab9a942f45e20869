package predict

import (
	"fmt"
	"testing"

	"github.com/matthieukhl/ordersight/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParams = Params{
	Folds:        5,
	TestFraction: 0.25,
	Epochs:       500,
	LearningRate: 0.5,
	Seed:         42,
}

// separableUsers builds users whose PLUS flag is fully determined by
// purchase power, so a linear classifier can recover it exactly.
func separableUsers(n int) []models.User {
	users := make([]models.User, n)
	for i := range users {
		power := "1"
		plus := 0
		if i%2 == 0 {
			power = "3"
			plus = 1
		}
		users[i] = models.User{
			UserID:        fmt.Sprintf("U%09d", i),
			Plus:          plus,
			UserLevel:     fmt.Sprintf("%d", i%4),
			Gender:        []string{"F", "M", "U"}[i%3],
			Education:     fmt.Sprintf("%d", i%5),
			PurchasePower: power,
			CityLevel:     fmt.Sprintf("%d", i%6),
		}
	}
	return users
}

func TestEncode(t *testing.T) {
	users := []models.User{
		{UserID: "U000000001", Plus: 1, UserLevel: "2", Gender: "F", Education: "3", PurchasePower: "1", CityLevel: "4"},
		{UserID: "U000000002", Plus: 0, UserLevel: "1", Gender: "M", Education: "3", PurchasePower: "2", CityLevel: "4"},
	}

	ds, err := Encode(users)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"user_level=1", "user_level=2",
		"gender=F", "gender=M",
		"education=3",
		"purchase_power=1", "purchase_power=2",
		"city_level=4",
	}, ds.Features)

	require.Len(t, ds.X, 2)
	assert.Equal(t, []float64{0, 1, 1, 0, 1, 1, 0, 1}, ds.X[0])
	assert.Equal(t, []float64{1, 0, 0, 1, 1, 0, 1, 1}, ds.X[1])
	assert.Equal(t, []float64{1, 0}, ds.Y)

	_, err = Encode(nil)
	require.Error(t, err)
}

func TestCrossValidateSeparable(t *testing.T) {
	ds, err := Encode(separableUsers(200))
	require.NoError(t, err)

	acc, err := CrossValidate(ds, testParams)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, acc, 0.95)
}

func TestCrossValidateRejectsBadParams(t *testing.T) {
	ds, err := Encode(separableUsers(20))
	require.NoError(t, err)

	bad := testParams
	bad.Folds = 1
	_, err = CrossValidate(ds, bad)
	require.Error(t, err)

	small, err := Encode(separableUsers(3))
	require.NoError(t, err)
	_, err = CrossValidate(small, testParams)
	require.Error(t, err)
}

func TestHoldOut(t *testing.T) {
	ds, err := Encode(separableUsers(200))
	require.NoError(t, err)

	matrix, err := HoldOut(ds, testParams)
	require.NoError(t, err)

	total := matrix.TrueNegative + matrix.FalsePositive + matrix.FalseNegative + matrix.TruePositive
	assert.Equal(t, 50, total)
	assert.GreaterOrEqual(t, matrix.Accuracy(), 0.95)

	rendered := matrix.String()
	assert.Contains(t, rendered, "Not PLUS")
	assert.Contains(t, rendered, "PLUS")
}

func TestHoldOutRejectsDegenerateSplit(t *testing.T) {
	ds, err := Encode(separableUsers(4))
	require.NoError(t, err)

	bad := testParams
	bad.TestFraction = 1.0
	_, err = HoldOut(ds, bad)
	require.Error(t, err)
}
