package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Models     ModelsConfig     `mapstructure:"models"`
	Weather    WeatherConfig    `mapstructure:"weather"`
	Fertilizer FertilizerConfig `mapstructure:"fertilizer"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type ModelsConfig struct {
	Dir           string         `mapstructure:"dir"`
	SharedLibrary string         `mapstructure:"shared_library"`
	Crop          ArtifactConfig `mapstructure:"crop"`
	Disease       ArtifactConfig `mapstructure:"disease"`
}

// ArtifactConfig paths are resolved against ModelsConfig.Dir unless absolute.
type ArtifactConfig struct {
	Model    string `mapstructure:"model"`
	Metadata string `mapstructure:"metadata"`
	Labels   string `mapstructure:"labels"`
}

type WeatherConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	CurrentURL  string        `mapstructure:"current_url"`
	ForecastURL string        `mapstructure:"forecast_url"`
	IconURL     string        `mapstructure:"icon_url"`
	Timezone    string        `mapstructure:"timezone"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RateLimit   float64       `mapstructure:"rate_limit"`
	RateBurst   int           `mapstructure:"rate_burst"`
}

type FertilizerConfig struct {
	// Table overrides the bundled reference table when set.
	Table string `mapstructure:"table"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_upload_bytes", 10<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("models.dir", "models")
	v.SetDefault("models.shared_library", "")
	v.SetDefault("models.crop.model", "crop_prediction_model.onnx")
	v.SetDefault("models.crop.metadata", "crop_metadata.json")
	v.SetDefault("models.crop.labels", "crop_labels.json")
	v.SetDefault("models.disease.model", "plant_disease_detection.onnx")
	v.SetDefault("models.disease.metadata", "disease_metadata.json")
	v.SetDefault("models.disease.labels", "disease_labels.json")

	v.SetDefault("weather.api_key", "")
	v.SetDefault("weather.current_url", "https://api.openweathermap.org/data/2.5/weather")
	v.SetDefault("weather.forecast_url", "https://api.openweathermap.org/data/2.5/onecall")
	v.SetDefault("weather.icon_url", "https://openweathermap.org/img/wn/%s@2x.png")
	v.SetDefault("weather.timezone", "Asia/Kolkata")
	v.SetDefault("weather.timeout", 10*time.Second)
	v.SetDefault("weather.rate_limit", 1.0)
	v.SetDefault("weather.rate_burst", 5)

	v.SetDefault("fertilizer.table", "")
}

// LoadConfig reads defaults, then the optional file at path, then
// environment variables such as WEATHER_API_KEY or SERVER_PORT.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// PORT is what most hosting platforms set.
	if port := v.GetInt("PORT"); port != 0 {
		config.Server.Port = port
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	if c.Weather.APIKey == "" {
		return errors.New("weather.api_key (WEATHER_API_KEY) is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Weather.RateLimit <= 0 || c.Weather.RateBurst <= 0 {
		return errors.New("weather rate limit and burst must be positive")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errors.New("server.max_upload_bytes must be positive")
	}
	return nil
}

// Resolve returns the artifact paths joined with the models directory.
func (m ModelsConfig) Resolve(a ArtifactConfig) ArtifactConfig {
	join := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(m.Dir, p)
	}
	return ArtifactConfig{
		Model:    join(a.Model),
		Metadata: join(a.Metadata),
		Labels:   join(a.Labels),
	}
}

// ProjectRoot maps a working directory inside cmd/server back to the
// repository root so relative paths such as models/ still resolve.
func ProjectRoot(wd string) string {
	if filepath.Base(wd) == "server" && filepath.Base(filepath.Dir(wd)) == "cmd" {
		return filepath.Join(wd, "..", "..")
	}
	return wd
}

// Anchor makes the relative models directory and fertilizer table relative to root.
func (c *Config) Anchor(root string) {
	if c.Models.Dir != "" && !filepath.IsAbs(c.Models.Dir) {
		c.Models.Dir = filepath.Join(root, c.Models.Dir)
	}
	if c.Fertilizer.Table != "" && !filepath.IsAbs(c.Fertilizer.Table) {
		c.Fertilizer.Table = filepath.Join(root, c.Fertilizer.Table)
	}
}
