package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// WithCredentials sets the API key and secret
func WithCredentials(key, secret string) Option {
	return func(c *ClientConfig) error {
		if key == "" || secret == "" {
			return fmt.Errorf("api key and secret cannot be empty")
		}
		c.APIKey = key
		c.APISecret = secret
		return nil
	}
}

// WithBaseURL sets the API base URL
func WithBaseURL(baseURL string) Option {
	return func(c *ClientConfig) error {
		if baseURL == "" {
			return fmt.Errorf("base url cannot be empty")
		}
		c.BaseURL = baseURL
		return nil
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *ClientConfig) error {
		if timeout < 0 {
			return fmt.Errorf("timeout cannot be negative, got: %s", timeout)
		}
		c.Timeout = timeout
		return nil
	}
}

// WithS3 configures the s3:// upload source
func WithS3(s3 S3Config) Option {
	return func(c *ClientConfig) error {
		if s3.Region == "" {
			s3.Region = "us-east-1"
		}
		c.S3 = s3
		return nil
	}
}

// FromEnv applies environment variable overrides.
//
//	PUBLITIO_API_KEY      - API key
//	PUBLITIO_API_SECRET   - API secret
//	PUBLITIO_BASE_URL     - API base URL (default: https://api.publit.io/v1)
//	PUBLITIO_TIMEOUT      - request timeout, e.g. "45s" (default: 30s)
//	AWS_REGION, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY,
//	AWS_S3_ENDPOINT, AWS_S3_USE_PATH_STYLE - s3:// upload source
func FromEnv() Option {
	return func(c *ClientConfig) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return nil
	}
}

// FromFile reads a YAML, JSON, TOML or .env config file. Environment
// variables still take precedence over values from the file.
func FromFile(path string) Option {
	return func(c *ClientConfig) error {
		if path == "" {
			return nil
		}
		if err := cleanenv.ReadConfig(path, c); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}
}
