package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	LogLevel  string
	LogFormat string

	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	Tax TaxConfig

	SweepInterval time.Duration
}

// TaxConfig carries the tax regime parameters. The defaults describe the
// Georgian small-business regime (1% flat rate, 500k GEL annual ceiling,
// declarations due on the 15th of the following month); a declara.yaml
// file can override them.
type TaxConfig struct {
	Rate            float64
	AnnualThreshold float64
	FilingDay       int
	FilingFee       float64
	ServiceFeeRate  float64
}

// TotalFeeRate is the effective rate a user pays when the admin filing
// service is used: the statutory tax plus our service fee.
func (t TaxConfig) TotalFeeRate() float64 {
	return t.Rate + t.ServiceFeeRate
}

// Load loads configuration from environment variables and a .env file,
// plus an optional declara.yaml for tax-parameter overrides.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "declara"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),

		DBType:     getenv("DATABASE_TYPE", "postgres"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "declara"),
		DBUser:     getenv("DATABASE_USER", "postgres"),
		DBPassword: getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),

		Tax: loadTaxConfig(),

		SweepInterval: getenvDuration("SWEEP_INTERVAL", time.Hour),
	}
}

func loadTaxConfig() TaxConfig {
	v := viper.New()
	v.SetConfigName("declara")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/declara")

	v.SetDefault("tax.rate", 0.01)
	v.SetDefault("tax.annual_threshold", 500000.0)
	v.SetDefault("tax.filing_day", 15)
	v.SetDefault("tax.filing_fee", 50.0)
	v.SetDefault("tax.service_fee_rate", 0.02)

	// A missing or malformed file falls back to the statutory defaults.
	_ = v.ReadInConfig()

	return TaxConfig{
		Rate:            v.GetFloat64("tax.rate"),
		AnnualThreshold: v.GetFloat64("tax.annual_threshold"),
		FilingDay:       v.GetInt("tax.filing_day"),
		FilingFee:       v.GetFloat64("tax.filing_fee"),
		ServiceFeeRate:  v.GetFloat64("tax.service_fee_rate"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
