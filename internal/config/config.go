package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Store    StoreConfig    `mapstructure:"store"`
	Extracts ExtractsConfig `mapstructure:"extracts"`
	Output   OutputConfig   `mapstructure:"output"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Predict  PredictConfig  `mapstructure:"predict"`
	Server   ServerConfig   `mapstructure:"server"`
}

type StoreConfig struct {
	Driver       string `mapstructure:"driver"` // sqlite3 or mysql
	Path         string `mapstructure:"path"`   // sqlite store file
	DSN          string `mapstructure:"dsn"`    // mysql DSN
	MaxOpenConns int    `mapstructure:"maxOpenConns"`
}

type ExtractsConfig struct {
	Orders   string `mapstructure:"orders"`
	Delivery string `mapstructure:"delivery"`
	Clicks   string `mapstructure:"clicks"`
	Users    string `mapstructure:"users"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

type AnalysisConfig struct {
	PromiseCode       string  `mapstructure:"promise_code"`
	MaxDeliveryHours  float64 `mapstructure:"max_delivery_hours"`
	BreakHour         float64 `mapstructure:"break_hour"`
	FunnelWindowHours int     `mapstructure:"funnel_window_hours"`
}

type PredictConfig struct {
	Folds        int     `mapstructure:"folds"`
	TestFraction float64 `mapstructure:"test_fraction"`
	Epochs       int     `mapstructure:"epochs"`
	LearningRate float64 `mapstructure:"learning_rate"`
	Seed         int64   `mapstructure:"seed"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoadConfig loads configuration from config.yaml and environment variables.
// A missing config file is fine: the defaults describe a checkout-local
// layout with extracts under data/ and charts under output/.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./deploy/")
	v.AddConfigPath("./")
	v.AddConfigPath("$HOME/.ordersight/")
	v.AddConfigPath("/etc/ordersight/")

	v.SetEnvPrefix("ORDERSIGHT")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", "sqlite3")
	v.SetDefault("store.path", "data/ordersight.db")
	v.SetDefault("store.maxOpenConns", 4)

	v.SetDefault("extracts.orders", "data/JD_order_data.csv")
	v.SetDefault("extracts.delivery", "data/JD_delivery_data.csv")
	v.SetDefault("extracts.clicks", "data/JD_click_data.csv")
	v.SetDefault("extracts.users", "data/JD_user_data.csv")

	v.SetDefault("output.dir", "output")

	v.SetDefault("analysis.promise_code", "1")
	v.SetDefault("analysis.max_delivery_hours", 72.0)
	v.SetDefault("analysis.break_hour", 11.0)
	v.SetDefault("analysis.funnel_window_hours", 24)

	v.SetDefault("predict.folds", 5)
	v.SetDefault("predict.test_fraction", 0.25)
	v.SetDefault("predict.epochs", 200)
	v.SetDefault("predict.learning_rate", 0.1)
	v.SetDefault("predict.seed", 0)

	v.SetDefault("server.addr", ":8080")
}
