package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RetryBehavior is what the generated client does after a known error.
type RetryBehavior string

const (
	RetryFail  RetryBehavior = "fail"
	RetryRetry RetryBehavior = "retry"
)

// HTTPClientConfiguration is baked into the retry classification table of the
// generated HTTP client.
type HTTPClientConfiguration struct {
	RetryOnUnknownError             bool          `json:"retryOnUnknownError" yaml:"retryOnUnknownError"`
	KnownErrorsDefaultRetryBehavior RetryBehavior `json:"knownErrorsDefaultRetryBehavior" yaml:"knownErrorsDefaultRetryBehavior"`
	// UnretriableUnknownErrors and RetriableUnknownErrors are error identities
	// not declared by the model whose retry behavior is fixed.
	UnretriableUnknownErrors []string `json:"unretriableUnknownErrors" yaml:"unretriableUnknownErrors"`
	RetriableUnknownErrors   []string `json:"retriableUnknownErrors" yaml:"retriableUnknownErrors"`
	// KnownErrorsRetryOverride sets the behavior of individual model errors,
	// overriding KnownErrorsDefaultRetryBehavior.
	KnownErrorsRetryOverride map[string]RetryBehavior `json:"knownErrorsRetryOverride,omitempty" yaml:"knownErrorsRetryOverride,omitempty"`
}

// DefaultHTTPClientConfiguration retries unknown errors and fails on known ones.
func DefaultHTTPClientConfiguration() HTTPClientConfiguration {
	return HTTPClientConfiguration{
		RetryOnUnknownError:             true,
		KnownErrorsDefaultRetryBehavior: RetryFail,
		UnretriableUnknownErrors:        []string{},
		RetriableUnknownErrors:          []string{},
	}
}

// Validate checks retry behaviors.
func (c HTTPClientConfiguration) Validate() error {
	if err := c.KnownErrorsDefaultRetryBehavior.validate(); err != nil {
		return err
	}
	for identity, behavior := range c.KnownErrorsRetryOverride {
		if err := behavior.validate(); err != nil {
			return fmt.Errorf("knownErrorsRetryOverride %s: %w", identity, err)
		}
	}
	return nil
}

func (b RetryBehavior) validate() error {
	switch b {
	case RetryFail, RetryRetry:
		return nil
	default:
		return configError("unknown retry behavior %q (allowed: fail, retry)", string(b))
	}
}

// KnownErrorRetries reports whether the generated client retries the given
// model error.
func (c HTTPClientConfiguration) KnownErrorRetries(identity string) bool {
	if b, ok := c.KnownErrorsRetryOverride[identity]; ok {
		return b == RetryRetry
	}
	return c.KnownErrorsDefaultRetryBehavior == RetryRetry
}

// LoadHTTPClientConfiguration reads a JSON or YAML file. Missing fields keep
// their DefaultHTTPClientConfiguration values.
func LoadHTTPClientConfiguration(path string) (HTTPClientConfiguration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return HTTPClientConfiguration{}, configError("read http client configuration %s: %v", path, err)
	}
	cfg := DefaultHTTPClientConfiguration()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return HTTPClientConfiguration{}, configError("parse http client configuration %s: %v", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return HTTPClientConfiguration{}, err
	}
	return cfg, nil
}
