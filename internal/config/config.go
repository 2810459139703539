package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ProviderConfig holds the connection settings for the translation service.
// APIType selects between a plain OpenAI-compatible endpoint and an Azure
// OpenAI deployment.
type ProviderConfig struct {
	APIType    string `mapstructure:"api_type"`
	Endpoint   string `mapstructure:"endpoint"`
	APIKey     string `mapstructure:"api_key"`
	APIVersion string `mapstructure:"api_version"`
	Model      string `mapstructure:"model"`
}

// Config holds all settings for the translator.
type Config struct {
	Provider ProviderConfig `mapstructure:"provider"`

	TargetLang string `mapstructure:"target_lang"`
	SaveAsPDF  bool   `mapstructure:"save_as_pdf"`

	// MaxBatchChars bounds the cumulative content length of a plain-text
	// translation batch. DocxBatchSize bounds a docx paragraph batch by
	// segment count. MaxChunkChars bounds a single PDF block chunk.
	MaxBatchChars int `mapstructure:"max_batch_chars"`
	DocxBatchSize int `mapstructure:"docx_batch_size"`
	MaxChunkChars int `mapstructure:"max_chunk_chars"`

	RequestTimeout  int `mapstructure:"request_timeout"`  // seconds
	BatchIntervalMS int `mapstructure:"batch_interval_ms"` // pause between batch calls

	WatermarkText string `mapstructure:"watermark_text"`
	Debug         bool   `mapstructure:"debug"`
}

// Load reads the configuration from the given path, or from
// ~/.doctranslate.yaml when no path is given. Missing files are not an
// error; defaults and environment variables still apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DOCTRANSLATE")
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
			v.SetConfigName(".doctranslate")
			v.SetConfigType("yaml")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; a present-but-broken one is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// The API key is usually supplied through the environment rather than
	// the config file.
	if cfg.Provider.APIKey == "" {
		if key := os.Getenv("AZURE_OPENAI_API_KEY"); key != "" {
			cfg.Provider.APIKey = key
		} else if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			cfg.Provider.APIKey = key
		}
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider.api_type", "openai")
	v.SetDefault("provider.model", "gpt-4o")
	v.SetDefault("target_lang", "Dutch")
	v.SetDefault("max_batch_chars", 3000)
	v.SetDefault("docx_batch_size", 20)
	v.SetDefault("max_chunk_chars", 3000)
	v.SetDefault("request_timeout", 300)
	v.SetDefault("batch_interval_ms", 500)
	v.SetDefault("watermark_text", "generated with doctranslate")
}

// Validate reports configuration problems that would prevent a run.
func (c *Config) Validate() error {
	if c.Provider.APIKey == "" {
		return fmt.Errorf("no API key configured (set provider.api_key or AZURE_OPENAI_API_KEY)")
	}
	if c.Provider.APIType == "azure" && c.Provider.Endpoint == "" {
		return fmt.Errorf("azure api_type requires provider.endpoint")
	}
	if c.Provider.Model == "" {
		return fmt.Errorf("no model or deployment configured")
	}
	return nil
}

// OutputFolder returns the folder translated files are written to for the
// given input folder, creating it if necessary.
func OutputFolder(inputFolder string) (string, error) {
	out := filepath.Join(inputFolder, "translations")
	if err := os.MkdirAll(out, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output folder: %w", err)
	}
	return out, nil
}
