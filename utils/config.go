package utils

import (
	"github.com/spf13/viper"
)

// GetEnv returns the environment name the service is running under.
func GetEnv() string {
	env := viper.GetString("ENV")
	if env == "" {
		return "development"
	}
	return env
}

// IsProduction reports whether the service runs in production mode.
func IsProduction() bool {
	return GetEnv() == "production"
}
