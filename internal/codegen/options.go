package codegen

import (
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/mark3labs/smokegen/internal/config"
	sm "github.com/mark3labs/smokegen/internal/servicemodel"
)

// Options controls a generation run.
type Options struct {
	BaseName               string // required; "Widget" yields widgetmodel, WidgetClient, ...
	ApplicationSuffix      string // defaults to config.DefaultApplicationSuffix
	ApplicationDescription string
	OutputDir              string // required; the base output path
	GenerationType         config.GenerationType
	ModulePath             string // module path of the generated tree; defaults to the command name
	FrameworkImportPath    string

	StubRule           config.OperationStubGenerationRule
	Features           config.CodeGenFeatures
	InitializationType config.InitializationType
	HTTPClient         config.HTTPClientConfiguration
	Override           *sm.ModelOverride

	DryRun bool // plan only; nothing is written
	Logger *zap.Logger
}

// withDefaults validates opts and fills unset values.
func (opts Options) withDefaults() (Options, error) {
	if strings.TrimSpace(opts.BaseName) == "" {
		return opts, configurationError("the base name must be specified")
	}
	if strings.IndexFunc(opts.BaseName, isAlphanumeric) < 0 {
		return opts, configurationError("the base name %q has no usable characters", opts.BaseName)
	}
	if strings.TrimSpace(opts.OutputDir) == "" {
		return opts, configurationError("the base output file path must be specified")
	}
	if opts.ApplicationSuffix == "" {
		opts.ApplicationSuffix = config.DefaultApplicationSuffix
	}
	if opts.GenerationType == "" {
		opts.GenerationType = config.Server
	}
	if _, err := config.ParseGenerationType(string(opts.GenerationType)); err != nil {
		return opts, classify(err)
	}
	if opts.StubRule == nil {
		opts.StubRule = config.DefaultStubGenerationRule()
	}
	opts.Features = opts.Features.WithDefaults()
	opts.InitializationType = opts.InitializationType.OrDefault()
	if opts.HTTPClient.KnownErrorsDefaultRetryBehavior == "" {
		opts.HTTPClient = config.DefaultHTTPClientConfiguration()
	}
	if err := opts.HTTPClient.Validate(); err != nil {
		return opts, classify(err)
	}
	if err := opts.Override.Validate(); err != nil {
		return opts, configurationError("model override: %v", err)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return opts, nil
}

func isAlphanumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
