package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const DefaultEnvFile = ".env"

type Config struct {
	// OpenAI
	OpenAIAPIKey  string
	OpenAIBaseURL string
	ModelName     string
	MaxTokens     int64
	Temperature   float64

	// Zero-shot classification
	ZeroShotURL string
	HFAPIToken  string
	LabelsFile  string

	// HTTP
	HTTPAddr       string
	MaxUploadBytes int64

	// Database
	DatabasePath string

	// Google Cloud
	GoogleCloudProject string
	SubscriptionID     string

	// App settings
	Environment string
	NumWorkers  int
}

// MissingVarsError lists the required environment variables that were not set.
type MissingVarsError struct {
	Vars []string
}

func (e *MissingVarsError) Error() string {
	return "missing required environment variables: " + strings.Join(e.Vars, ", ")
}

var required = []string{"OPENAI_API_KEY"}

// Load overlays envFile onto the process environment and builds a Config.
// Variables already present in the environment take precedence over the file,
// and a missing file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetDefault("ENV", "development")
	v.SetDefault("MODEL_NAME", "gpt-4o-mini")
	v.SetDefault("MAX_TOKENS", 200)
	v.SetDefault("TEMPERATURE", 0.3)
	v.SetDefault("ZEROSHOT_URL", "https://router.huggingface.co/hf-inference/models/facebook/bart-large-mnli")
	v.SetDefault("HTTP_ADDR", ":8000")
	v.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	v.SetDefault("DATABASE_PATH", "mailreply.db")
	v.SetDefault("NUM_WORKERS", 5)
	v.AutomaticEnv()

	var missing []string
	for _, key := range required {
		if strings.TrimSpace(v.GetString(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingVarsError{Vars: missing}
	}

	maxTokens, err := cast.ToInt64E(v.Get("MAX_TOKENS"))
	if err != nil || maxTokens < 1 {
		return nil, fmt.Errorf("MAX_TOKENS must be a positive integer, got %q", v.GetString("MAX_TOKENS"))
	}
	temperature, err := cast.ToFloat64E(v.Get("TEMPERATURE"))
	if err != nil || temperature < 0 || temperature > 2 {
		return nil, fmt.Errorf("TEMPERATURE must be a number between 0 and 2, got %q", v.GetString("TEMPERATURE"))
	}
	maxUpload, err := cast.ToInt64E(v.Get("MAX_UPLOAD_BYTES"))
	if err != nil || maxUpload < 1 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be a positive integer, got %q", v.GetString("MAX_UPLOAD_BYTES"))
	}
	numWorkers, err := cast.ToIntE(v.Get("NUM_WORKERS"))
	if err != nil {
		return nil, fmt.Errorf("NUM_WORKERS must be an integer, got %q", v.GetString("NUM_WORKERS"))
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	cfg := &Config{
		OpenAIAPIKey:       v.GetString("OPENAI_API_KEY"),
		OpenAIBaseURL:      v.GetString("OPENAI_BASE_URL"),
		ModelName:          v.GetString("MODEL_NAME"),
		MaxTokens:          maxTokens,
		Temperature:        temperature,
		ZeroShotURL:        v.GetString("ZEROSHOT_URL"),
		HFAPIToken:         v.GetString("HF_API_TOKEN"),
		LabelsFile:         v.GetString("LABELS_FILE"),
		HTTPAddr:           v.GetString("HTTP_ADDR"),
		MaxUploadBytes:     maxUpload,
		DatabasePath:       v.GetString("DATABASE_PATH"),
		GoogleCloudProject: v.GetString("GOOGLE_CLOUD_PROJECT"),
		SubscriptionID:     v.GetString("SUBSCRIPTION_ID"),
		Environment:        v.GetString("ENV"),
		NumWorkers:         numWorkers,
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// PubSubEnabled reports whether the Pub/Sub intake has what it needs to start.
func (c *Config) PubSubEnabled() bool {
	return c.GoogleCloudProject != "" && c.SubscriptionID != ""
}
