package filestore

import "github.com/koustreak/pmysql/internal/errs"

// Provider identifies the object-storage backend.
type Provider string

const (
	ProviderMinIO Provider = "minio"
)

// Config holds the object-store connection settings from the YAML
// configuration's filestore section.
type Config struct {
	Provider  Provider
	Endpoint  string // host:port, e.g. "localhost:9000"
	AccessKey string
	SecretKey string
	UseSSL    bool

	// Region is only needed by region-aware S3 deployments.
	Region string
}

// DefaultConfig returns a MinIO config without TLS.
func DefaultConfig(endpoint, accessKey, secretKey string) *Config {
	return &Config{
		Provider:  ProviderMinIO,
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
	}
}

// Validate checks that the config names a supported provider and endpoint.
func (c *Config) Validate() error {
	if c.Provider != ProviderMinIO {
		return errs.New(errs.ErrKindInvalidInput, "unsupported filestore provider "+string(c.Provider))
	}
	if c.Endpoint == "" {
		return errs.New(errs.ErrKindInvalidInput, "filestore endpoint is required")
	}
	return nil
}
