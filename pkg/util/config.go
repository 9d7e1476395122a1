package util

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

func ReadConfig() error {
	viper.SetConfigName("config")
	viper.AddConfigPath("./data/")
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// defaults + env only
			return nil
		}
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}

// SetDefaults. defaults for the server keys. match tuning defaults come from http.SetMatchingDefaults.
func SetDefaults() {
	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("API_TIMEOUT", "60s")
	viper.SetDefault("USE_RATE_LIMIT", false)
	viper.SetDefault("RATE_LIMIT_RPS", 10.0)
	viper.SetDefault("RATE_LIMIT_BURST", 20)
	viper.SetDefault("MAX_UPLOAD_BYTES", 50<<20)

	viper.SetDefault("DB_PATH", "./data/curvematch.db")

	viper.SetDefault("MATCH_MAX_RESULTS", 20)
	viper.SetDefault("MATCH_WORKERS", 4)
	viper.SetDefault("GRADIENT_CACHE_SIZE", 4096)
}
