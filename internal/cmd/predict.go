package cmd

import (
	"fmt"

	"github.com/matthieukhl/ordersight/internal/config"
	"github.com/matthieukhl/ordersight/internal/ingest"
	"github.com/matthieukhl/ordersight/internal/predict"
	"github.com/spf13/cobra"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Impute PLUS membership from user demographics",
	Long: `Train a logistic-regression classifier that predicts a user's PLUS
membership from the demographic columns of the user extract (user level,
gender, education, purchase power, city level), report cross-validated
accuracy, and print a confusion matrix for a hold-out split.`,
	RunE: runPrediction,
}

func init() {
	rootCmd.AddCommand(predictCmd)
}

func runPrediction(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	users, err := ingest.ReadUsers(cfg.Extracts.Users)
	if err != nil {
		return err
	}

	dataset, err := predict.Encode(users)
	if err != nil {
		return err
	}
	fmt.Printf("🔮 Encoded %d users into %d one-hot features\n", len(dataset.X), len(dataset.Features))

	params := predict.Params{
		Folds:        cfg.Predict.Folds,
		TestFraction: cfg.Predict.TestFraction,
		Epochs:       cfg.Predict.Epochs,
		LearningRate: cfg.Predict.LearningRate,
		Seed:         cfg.Predict.Seed,
	}

	accuracy, err := predict.CrossValidate(dataset, params)
	if err != nil {
		return err
	}
	fmt.Printf("Average accuracy over %d folds: %.4f\n\n", params.Folds, accuracy)

	matrix, err := predict.HoldOut(dataset, params)
	if err != nil {
		return err
	}
	fmt.Printf("Hold-out confusion matrix (%.0f%% test split, accuracy %.4f):\n%s",
		params.TestFraction*100, matrix.Accuracy(), matrix)

	return nil
}
