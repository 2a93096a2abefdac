package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/tendant/publitio-go/pkg/publitio"
	"github.com/tendant/publitio-go/pkg/publitio/source"
	fssource "github.com/tendant/publitio-go/pkg/publitio/source/fs"
	s3source "github.com/tendant/publitio-go/pkg/publitio/source/s3"
)

// Option applies configuration to a ClientConfig instance.
type Option func(*ClientConfig) error

// Load constructs a ClientConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ClientConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ClientConfig {
	return ClientConfig{
		BaseURL: publitio.DefaultBaseURL,
		Timeout: 30 * time.Second,
		S3: S3Config{
			Region: "us-east-1",
		},
	}
}

// ClientConfig holds the settings needed to build a publitio.Client.
type ClientConfig struct {
	APIKey    string        `yaml:"api_key" json:"api_key" env:"PUBLITIO_API_KEY"`
	APISecret string        `yaml:"api_secret" json:"api_secret" env:"PUBLITIO_API_SECRET"`
	BaseURL   string        `yaml:"base_url" json:"base_url" env:"PUBLITIO_BASE_URL" env-default:"https://api.publit.io/v1"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" env:"PUBLITIO_TIMEOUT" env-default:"30s"`

	// Upload sources
	S3 S3Config `yaml:"s3" json:"s3"`
}

// S3Config configures the s3:// upload source.
type S3Config struct {
	Region          string `yaml:"region" json:"region" env:"AWS_REGION" env-default:"us-east-1"`
	AccessKeyID     string `yaml:"access_key_id" json:"access_key_id" env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" json:"secret_access_key" env:"AWS_SECRET_ACCESS_KEY"`
	Endpoint        string `yaml:"endpoint" json:"endpoint" env:"AWS_S3_ENDPOINT"`
	UsePathStyle    bool   `yaml:"use_path_style" json:"use_path_style" env:"AWS_S3_USE_PATH_STYLE"`
}

// Validate validates the client configuration
func (c *ClientConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("base_url must be an http(s) url, got: %s", c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative, got: %s", c.Timeout)
	}
	return nil
}

// BuildClient creates a Client from the configuration. Credentials are
// checked here rather than in Validate so commands that never call the API
// can still load a partial config.
func (c *ClientConfig) BuildClient(opts ...publitio.Option) (*publitio.Client, error) {
	if c.APIKey == "" || c.APISecret == "" {
		return nil, fmt.Errorf("%w: set PUBLITIO_API_KEY and PUBLITIO_API_SECRET", publitio.ErrMissingCredentials)
	}

	options := []publitio.Option{
		publitio.WithBaseURL(c.BaseURL),
		publitio.WithTimeout(c.Timeout),
	}
	return publitio.New(c.APIKey, c.APISecret, append(options, opts...)...)
}

// BuildSources creates the upload source registry: local files and stdin,
// plus s3:// objects.
func (c *ClientConfig) BuildSources(ctx context.Context) (*source.Registry, error) {
	registry := source.NewRegistry()
	registry.Register("file", fssource.New())

	s3Opener, err := s3source.New(ctx, s3source.Config{
		Region:          c.S3.Region,
		AccessKeyID:     c.S3.AccessKeyID,
		SecretAccessKey: c.S3.SecretAccessKey,
		Endpoint:        c.S3.Endpoint,
		UsePathStyle:    c.S3.UsePathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build s3 source: %w", err)
	}
	registry.Register("s3", s3Opener)

	return registry, nil
}
