package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrConfiguration matches every configuration error reported by this package.
var ErrConfiguration = errors.New("configuration error")

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// GenerationType selects what a run emits and whether existing hand-editable
// files are preserved.
type GenerationType string

const (
	// Server generates a fresh application, overwriting every file.
	Server GenerationType = "server"
	// ServerUpdate regenerates derived files and keeps existing scaffold-once files.
	ServerUpdate GenerationType = "serverUpdate"
	// ServerWithPlugin and ServerUpdateWithPlugin scaffold the application
	// only; the model, client and HTTP libraries come from the plugin types.
	ServerWithPlugin       GenerationType = "serverWithPlugin"
	ServerUpdateWithPlugin GenerationType = "serverUpdateWithPlugin"
	// CodeGenModel, CodeGenClient and CodeGenHTTP1 emit a single library
	// into the base output path.
	CodeGenModel  GenerationType = "codeGenModel"
	CodeGenClient GenerationType = "codeGenClient"
	CodeGenHTTP1  GenerationType = "codeGenHttp1"
)

// GenerationTypes lists every generation type.
var GenerationTypes = []GenerationType{
	Server, ServerUpdate, ServerWithPlugin, ServerUpdateWithPlugin,
	CodeGenModel, CodeGenClient, CodeGenHTTP1,
}

// ParseGenerationType accepts the names in GenerationTypes.
func ParseGenerationType(s string) (GenerationType, error) {
	for _, g := range GenerationTypes {
		if strings.TrimSpace(s) == string(g) {
			return g, nil
		}
	}
	names := make([]string, len(GenerationTypes))
	for i, g := range GenerationTypes {
		names[i] = string(g)
	}
	return "", configError("unknown generation type %q (allowed: %s)", s, strings.Join(names, ", "))
}

func (g *GenerationType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseGenerationType(s)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Libraries is the set of libraries a generation type emits.
type Libraries struct {
	Model       bool
	Client      bool
	HTTP        bool
	Application bool
}

// Libraries reports which libraries g emits. The application covers the
// operations library, the executable and the project files. Unknown types
// emit nothing.
func (g GenerationType) Libraries() Libraries {
	switch g {
	case Server, ServerUpdate:
		return Libraries{Model: true, Client: true, HTTP: true, Application: true}
	case ServerWithPlugin, ServerUpdateWithPlugin:
		return Libraries{Application: true}
	case CodeGenModel:
		return Libraries{Model: true}
	case CodeGenClient:
		return Libraries{Client: true}
	case CodeGenHTTP1:
		return Libraries{HTTP: true}
	default:
		return Libraries{}
	}
}

// PreservesExisting reports whether scaffold-once files that already exist
// must be left untouched.
func (g GenerationType) PreservesExisting() bool {
	switch g {
	case ServerUpdate, ServerUpdateWithPlugin:
		return true
	default:
		return false
	}
}

// IsPlugin reports whether g emits a single library for a build plugin.
func (g GenerationType) IsPlugin() bool {
	return g == CodeGenModel || g == CodeGenClient || g == CodeGenHTTP1
}
