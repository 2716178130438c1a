package config

import (
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Environment holds the environment variables the generator reads.
type Environment struct {
	LogLevel string `env:"SMOKEGEN_LOG_LEVEL" envDefault:"info"`
	// GoModCache, GoPath and Home locate the module cache for model locations.
	GoModCache string `env:"GOMODCACHE"`
	GoPath     string `env:"GOPATH"`
	Home       string `env:"HOME"`
}

// LoadEnvironment parses the process environment.
func LoadEnvironment() (Environment, error) {
	var e Environment
	if err := env.Parse(&e); err != nil {
		return Environment{}, configError("environment: %v", err)
	}
	return e, nil
}

// ModuleCache returns the module cache directory following the go command's
// rules: GOMODCACHE, else the first GOPATH entry plus pkg/mod, else
// $HOME/go/pkg/mod.
func (e Environment) ModuleCache() string {
	if e.GoModCache != "" {
		return e.GoModCache
	}
	if e.GoPath != "" {
		return filepath.Join(firstListEntry(e.GoPath), "pkg", "mod")
	}
	if e.Home != "" {
		return filepath.Join(e.Home, "go", "pkg", "mod")
	}
	return ""
}
