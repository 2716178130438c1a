package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	sm "github.com/mark3labs/smokegen/internal/servicemodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FullDocument(t *testing.T) {
	t.Parallel()
	cfg, err := Parse([]byte(`{
  "modelFilePath": "swagger.yaml",
  "baseName": "Widget",
  "generationType": "serverUpdate",
  "initializationType": "streamlined",
  "operationStubGenerationRule": {"allFunctionsWithinContextExceptStandaloneFunctionsFor": {"exceptions": ["Ping"]}},
  "codeGenFeatures": {"asyncOperationStubs": "enabled"},
  "httpClientConfiguration": {"knownErrorsDefaultRetryBehavior": "retry"},
  "modelOverride": {"operationInputOverrides": {"CreateWidget": {"pathFields": ["id"], "defaultInputLocation": "query"}}}
}`))
	require.NoError(t, err)

	assert.Equal(t, "Widget", cfg.BaseName)
	assert.Equal(t, ServerUpdate, cfg.GenerationType)
	assert.Equal(t, InitializationStreamlined, cfg.InitializationType)

	rule := cfg.StubRule()
	assert.Equal(t, StandaloneFunction, rule.StubGeneration("Ping"))
	assert.Equal(t, FunctionWithinContext, rule.StubGeneration("GetWidget"))

	features := cfg.Features()
	assert.True(t, features.AsyncOperationStubs.Enabled())
	assert.True(t, features.TestDiscovery.Enabled(), "unset toggles take defaults")

	client := cfg.HTTPClient()
	assert.Equal(t, RetryRetry, client.KnownErrorsDefaultRetryBehavior)
	assert.True(t, client.RetryOnUnknownError, "unset fields keep defaults")

	require.NotNil(t, cfg.ModelOverride)
	assert.Equal(t, sm.LocationQuery, cfg.ModelOverride.OperationInputOverrides["CreateWidget"].DefaultInputLocation)
}

func TestParse_SchemaViolations(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"unknown field":      `{"baseName": "W", "colour": "red"}`,
		"bad generation":     `{"generationType": "client"}`,
		"bad stub rule":      `{"operationStubGenerationRule": {"sometimes": {}}}`,
		"bad default":        `{"modelOverride": {"operationInputOverrides": {"Op": {"defaultInputLocation": "path"}}}}`,
		"wrong type":         `{"baseName": 3}`,
		"two rule variants":  `{"operationStubGenerationRule": {"allStandaloneFunctions": {}, "allFunctionsWithinContext": {}}}`,
		"bad feature status": `{"codeGenFeatures": {"testDiscovery": "yes"}}`,
		"not json":           `{`,
	}
	for name, doc := range cases {
		doc := doc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	t.Parallel()
	cfg, found, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, DefaultStubGenerationRule(), cfg.StubRule())
	assert.Equal(t, DefaultHTTPClientConfiguration(), cfg.HTTPClient())
}

func TestLoad_ReadsFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{"baseName": "Widget"}`), 0o644))
	cfg, found, err := Load(dir)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Widget", cfg.BaseName)
}

func TestSampleRoundTripsThroughSchema(t *testing.T) {
	t.Parallel()
	data, err := json.Marshal(Sample())
	require.NoError(t, err)
	cfg, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, AllFunctionsWithinContext{}, cfg.StubRule())
	assert.Equal(t, ServerUpdate, cfg.GenerationType)
}

func TestStubRules(t *testing.T) {
	t.Parallel()
	standalone := StandaloneExceptWithinContextFor{Exceptions: []string{"B"}}
	assert.Equal(t, StandaloneFunction, standalone.StubGeneration("A"))
	assert.Equal(t, FunctionWithinContext, standalone.StubGeneration("B"))

	within := WithinContextExceptStandaloneFor{Exceptions: []string{"B"}}
	assert.Equal(t, FunctionWithinContext, within.StubGeneration("A"))
	assert.Equal(t, StandaloneFunction, within.StubGeneration("B"))

	assert.Equal(t, StandaloneFunction, AllStandaloneFunctions{}.StubGeneration("A"))
	assert.Equal(t, FunctionWithinContext, AllFunctionsWithinContext{}.StubGeneration("A"))
}

func TestStubRule_JSON(t *testing.T) {
	t.Parallel()
	var r StubRule
	require.NoError(t, json.Unmarshal([]byte(`"allFunctionsWithinContext"`), &r))
	assert.Equal(t, AllFunctionsWithinContext{}, r.Rule())

	require.NoError(t, json.Unmarshal([]byte(`{"allStandaloneFunctionsExceptFunctionsWithinContextFor": {"exceptions": ["X"]}}`), &r))
	assert.Equal(t, StandaloneExceptWithinContextFor{Exceptions: []string{"X"}}, r.Rule())

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"allStandaloneFunctionsExceptFunctionsWithinContextFor": {"exceptions": ["X"]}}`, string(data))

	assert.ErrorIs(t, json.Unmarshal([]byte(`"sometimes"`), &r), ErrConfiguration)
}

func TestGenerationTypeLibraries(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Libraries{Model: true, Client: true, HTTP: true, Application: true}, Server.Libraries())
	assert.Equal(t, Libraries{Application: true}, ServerUpdateWithPlugin.Libraries())
	assert.Equal(t, Libraries{Client: true}, CodeGenClient.Libraries())
	assert.True(t, ServerUpdate.PreservesExisting())
	assert.False(t, Server.PreservesExisting())
	assert.True(t, CodeGenHTTP1.IsPlugin())
	assert.Equal(t, Libraries{}, GenerationType("serverish").Libraries())
	assert.False(t, GenerationType("serverish").PreservesExisting())

	_, err := ParseGenerationType("serverish")
	assert.ErrorIs(t, err, ErrConfiguration)
	g, err := ParseGenerationType("codeGenHttp1")
	require.NoError(t, err)
	assert.Equal(t, CodeGenHTTP1, g)
}

func TestLoadHTTPClientConfiguration(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retryOnUnknownError: false\nknownErrorsRetryOverride:\n  Throttled: retry\n"), 0o644))

	cfg, err := LoadHTTPClientConfiguration(path)
	require.NoError(t, err)
	assert.False(t, cfg.RetryOnUnknownError)
	assert.Equal(t, RetryFail, cfg.KnownErrorsDefaultRetryBehavior)
	assert.True(t, cfg.KnownErrorRetries("Throttled"))
	assert.False(t, cfg.KnownErrorRetries("NotFound"))

	require.NoError(t, os.WriteFile(path, []byte("knownErrorsDefaultRetryBehavior: sometimes\n"), 0o644))
	_, err = LoadHTTPClientConfiguration(path)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestEnvironmentModuleCache(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "/cache", Environment{GoModCache: "/cache", GoPath: "/gp"}.ModuleCache())
	assert.Equal(t, filepath.Join("/gp", "pkg", "mod"), Environment{GoPath: "/gp"}.ModuleCache())
	assert.Equal(t, filepath.Join("/home/u", "go", "pkg", "mod"), Environment{Home: "/home/u"}.ModuleCache())
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("SMOKEGEN_LOG_LEVEL", "debug")
	t.Setenv("GOMODCACHE", "/tmp/modcache")
	e, err := LoadEnvironment()
	require.NoError(t, err)
	assert.Equal(t, "debug", e.LogLevel)
	assert.Equal(t, "/tmp/modcache", e.ModuleCache())
}
