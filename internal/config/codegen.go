// Package config holds the generator's run configuration: the
// smoke-framework-codegen.json file, its policy types and environment overrides.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	sm "github.com/mark3labs/smokegen/internal/servicemodel"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// FileName is the configuration file looked up in the base file path.
const FileName = "smoke-framework-codegen.json"

// DefaultApplicationSuffix is appended to the base name to name the application.
const DefaultApplicationSuffix = "Service"

// DefaultFrameworkImportPath is the import path of the target framework.
const DefaultFrameworkImportPath = "github.com/smokego/smoke"

//go:embed schema.json
var schemaDocument []byte

const schemaURL = "memory://smokegen/smoke-framework-codegen.schema.json"

// ModelLocation points at a model file, optionally inside a Go module the
// generated package depends on.
type ModelLocation struct {
	ModelFilePath          string `json:"modelFilePath"`
	ModelProductDependency string `json:"modelProductDependency,omitempty"`
}

// CodeGen is the content of smoke-framework-codegen.json. Every field is
// optional in the file; command-line flags fill or override them.
type CodeGen struct {
	ModelFilePath               string                   `json:"modelFilePath,omitempty"`
	BaseName                    string                   `json:"baseName,omitempty"`
	ApplicationSuffix           string                   `json:"applicationSuffix,omitempty"`
	GenerationType              GenerationType           `json:"generationType,omitempty"`
	ApplicationDescription      string                   `json:"applicationDescription,omitempty"`
	GoModulePath                string                   `json:"goModulePath,omitempty"`
	FrameworkImportPath         string                   `json:"frameworkImportPath,omitempty"`
	ModelOverride               *sm.ModelOverride        `json:"modelOverride,omitempty"`
	HTTPClientConfiguration     *HTTPClientConfiguration `json:"httpClientConfiguration,omitempty"`
	InitializationType          InitializationType       `json:"initializationType,omitempty"`
	OperationStubGenerationRule *StubRule                `json:"operationStubGenerationRule,omitempty"`
	CodeGenFeatures             *CodeGenFeatures         `json:"codeGenFeatures,omitempty"`
	ModelLocations              map[string]ModelLocation `json:"modelLocations,omitempty"`
}

var compiledSchema *jsonschema.Schema

func configSchema() (*jsonschema.Schema, error) {
	if compiledSchema != nil {
		return compiledSchema, nil
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaDocument)); err != nil {
		return nil, fmt.Errorf("register config schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}
	compiledSchema = schema
	return schema, nil
}

// Parse validates data against the configuration schema and decodes it.
func Parse(data []byte) (*CodeGen, error) {
	var document any
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, configError("%s is not valid JSON: %v", FileName, err)
	}
	schema, err := configSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(document); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return nil, configError("%s: %s", FileName, validationErr.Error())
		}
		return nil, configError("%s: %v", FileName, err)
	}

	var cfg CodeGen
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, configError("decode %s: %v", FileName, err)
	}
	if err := cfg.ModelOverride.Validate(); err != nil {
		return nil, configError("%s: %v", FileName, err)
	}
	if cfg.HTTPClientConfiguration != nil {
		merged := DefaultHTTPClientConfiguration()
		if err := json.Unmarshal(data, &struct {
			C *HTTPClientConfiguration `json:"httpClientConfiguration"`
		}{&merged}); err != nil {
			return nil, configError("decode %s: %v", FileName, err)
		}
		cfg.HTTPClientConfiguration = &merged
	}
	return &cfg, nil
}

// Load reads FileName from baseFilePath. A missing file is not an error:
// found is false and cfg is empty.
func Load(baseFilePath string) (cfg *CodeGen, found bool, err error) {
	path := filepath.Join(baseFilePath, FileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &CodeGen{}, false, nil
	}
	if err != nil {
		return nil, false, configError("read %s: %v", path, err)
	}
	cfg, err = Parse(data)
	if err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}

// StubRule returns the configured stub generation rule or the default.
func (c *CodeGen) StubRule() OperationStubGenerationRule {
	if c == nil || c.OperationStubGenerationRule == nil {
		return DefaultStubGenerationRule()
	}
	return c.OperationStubGenerationRule.Rule()
}

// Features returns the configured feature toggles with defaults filled in.
func (c *CodeGen) Features() CodeGenFeatures {
	if c == nil || c.CodeGenFeatures == nil {
		return DefaultCodeGenFeatures()
	}
	return c.CodeGenFeatures.WithDefaults()
}

// HTTPClient returns the configured HTTP client configuration or the default.
func (c *CodeGen) HTTPClient() HTTPClientConfiguration {
	if c == nil || c.HTTPClientConfiguration == nil {
		return DefaultHTTPClientConfiguration()
	}
	return *c.HTTPClientConfiguration
}

// Sample returns the configuration written by the init command.
func Sample() CodeGen {
	features := DefaultCodeGenFeatures()
	return CodeGen{
		ModelFilePath:               "swagger.yaml",
		BaseName:                    "Example",
		ApplicationSuffix:           DefaultApplicationSuffix,
		GenerationType:              ServerUpdate,
		InitializationType:          InitializationStreamlined,
		OperationStubGenerationRule: &StubRule{AllFunctionsWithinContext{}},
		CodeGenFeatures:             &features,
		FrameworkImportPath:         DefaultFrameworkImportPath,
	}
}
