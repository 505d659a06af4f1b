package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`
	Redis struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	JWT struct {
		// Access and refresh tokens are signed with independent secrets so
		// one kind can never be replayed as the other.
		AccessSecret  string        `mapstructure:"access_secret"`
		RefreshSecret string        `mapstructure:"refresh_secret"`
		AccessTTL     time.Duration `mapstructure:"access_ttl"`
		RefreshTTL    time.Duration `mapstructure:"refresh_ttl"`
	} `mapstructure:"jwt"`
	RateLimit struct {
		Login          ActionLimit `mapstructure:"login"`
		MealAnalysis   ActionLimit `mapstructure:"meal_analysis"`
		PlanGeneration ActionLimit `mapstructure:"plan_generation"`
		RecipeImport   ActionLimit `mapstructure:"recipe_import"`
	} `mapstructure:"rate_limit"`
}

// ActionLimit is the window/ceiling pair for one rate-limited action.
type ActionLimit struct {
	Window      time.Duration `mapstructure:"window"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

var AppConfig Config

func LoadConfig(path string) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yml")

	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("jwt.access_ttl", 2*time.Hour)
	viper.SetDefault("jwt.refresh_ttl", 7*24*time.Hour)

	viper.SetDefault("rate_limit.login.window", 15*time.Minute)
	viper.SetDefault("rate_limit.login.max_attempts", 10)
	viper.SetDefault("rate_limit.meal_analysis.window", 24*time.Hour)
	viper.SetDefault("rate_limit.meal_analysis.max_attempts", 20)
	viper.SetDefault("rate_limit.plan_generation.window", 24*time.Hour)
	viper.SetDefault("rate_limit.plan_generation.max_attempts", 5)
	viper.SetDefault("rate_limit.recipe_import.window", time.Hour)
	viper.SetDefault("rate_limit.recipe_import.max_attempts", 10)
}
