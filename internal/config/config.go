// Package config loads server configuration from a YAML file and
// DREAMROOM-prefixed environment variables, with working defaults for local
// development: mock generation, file storage, no AI refinement.
package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Provider    ProviderConfig
	Generation  GenerationConfig
	Storage     StorageConfig
	Refine      RefineConfig
	Logging     LoggingConfig
}

type ServerConfig struct {
	Port          int
	PublicBaseURL string
}

// ProviderConfig holds the external generation service credentials. The
// provider is used only when all connection fields are set; otherwise every
// batch runs against the local mock generator.
type ProviderConfig struct {
	RestEndpoint   string
	SocketEndpoint string
	AppID          string
	Username       string
	Password       string
}

type GenerationConfig struct {
	Concurrency   int
	WindowDelay   time.Duration
	Timeout       time.Duration
	MockStepDelay time.Duration
}

// StorageConfig selects the artifact backend: "file" for a local directory,
// "s3" for an S3-compatible object store.
type StorageConfig struct {
	Backend string
	Dir     string

	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string

	MaxArtifactAge time.Duration
}

type RefineConfig struct {
	APIKey string
	Model  string
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("dreamroom")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("DREAMROOM")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("server.port", 3001)
	v.SetDefault("server.publicbaseurl", "")

	v.SetDefault("generation.concurrency", 1)
	v.SetDefault("generation.windowdelay", "1s")
	v.SetDefault("generation.timeout", "2m")
	v.SetDefault("generation.mockstepdelay", "500ms")

	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.dir", "generated-images")
	v.SetDefault("storage.bucket", "dreamroom-artifacts")
	v.SetDefault("storage.usessl", true)
	v.SetDefault("storage.maxartifactage", "24h")

	v.SetDefault("logging.level", "info")
}
