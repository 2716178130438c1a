package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/mark3labs/smokegen/internal/codegen"
	"github.com/mark3labs/smokegen/internal/config"
	"github.com/mark3labs/smokegen/internal/naming"
	sm "github.com/mark3labs/smokegen/internal/servicemodel"
)

// GenerateConfig captures all inputs of the generate command after merging
// flags, smoke-framework-codegen.json and defaults, in that order.
type GenerateConfig struct {
	BaseFilePath           string
	BaseOutputFilePath     string
	ModelPath              string
	BaseName               string
	ApplicationSuffix      string
	GenerationType         config.GenerationType
	ApplicationDescription string
	ModulePath             string
	FrameworkImportPath    string

	Override           *sm.ModelOverride
	HTTPClient         config.HTTPClientConfiguration
	StubRule           config.OperationStubGenerationRule
	Features           config.CodeGenFeatures
	InitializationType config.InitializationType

	DryRun   bool
	Verbose  bool
	LogLevel string
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a smoke service from a Swagger/OpenAPI model",
		Long: "Generate the model, client and HTTP libraries, operation stubs and application " +
			"scaffold of a smoke service. Options not given as flags are read from " +
			config.FileName + " in the base file path.",
		Example: strings.TrimSpace(`  smokegen generate --base-file-path . --base-name Widget --model-path swagger.yaml --generation-type server
  smokegen generate --base-file-path ./widget --generation-type serverUpdate --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("base-file-path", "", "Directory holding "+config.FileName+" and the generated package")
	flags.String("base-output-file-path", "", "Directory to write into; defaults to the base file path")
	flags.String("model-path", "", "Path or URL of the Swagger 2.0 / OpenAPI 3.0 model")
	flags.String("base-name", "", "Base name of the generated packages, e.g. Widget")
	flags.String("application-suffix", "", "Suffix of the application name (default "+config.DefaultApplicationSuffix+")")
	flags.String("generation-type", "", "One of "+generationTypeNames())
	flags.String("application-description", "", "Description of the generated application")
	flags.String("model-override-path", "", "JSON or YAML file overriding operation input and output locations")
	flags.String("http-client-configuration-path", "", "JSON or YAML retry configuration of the generated HTTP client")
	flags.Bool("dry-run", false, "Print the planned files without writing them")

	return cmd
}

func generationTypeNames() string {
	names := make([]string, len(config.GenerationTypes))
	for i, g := range config.GenerationTypes {
		names[i] = string(g)
	}
	return strings.Join(names, ", ")
}

// missingParameter is the usage error for a value found neither in flags nor
// in the configuration file.
func missingParameter(name, baseFilePath string) error {
	return newUsageError(fmt.Sprintf("The %s needs to be specified either in %s or provided directly.",
		name, filepath.Join(baseFilePath, config.FileName)))
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	flags := cmd.Flags()
	value := func(name string) (string, bool, error) {
		if !flags.Changed(name) {
			return "", false, nil
		}
		v, err := flags.GetString(name)
		return strings.TrimSpace(v), true, err
	}

	baseFilePath, _, err := value("base-file-path")
	if err != nil {
		return nil, err
	}
	if baseFilePath == "" {
		return nil, newUsageError("generate: --base-file-path is required")
	}

	environment, err := config.LoadEnvironment()
	if err != nil {
		return nil, err
	}
	file, _, err := config.Load(baseFilePath)
	if err != nil {
		return nil, err
	}

	cfg := &GenerateConfig{
		BaseFilePath:           baseFilePath,
		BaseOutputFilePath:     baseFilePath,
		BaseName:               file.BaseName,
		ApplicationSuffix:      file.ApplicationSuffix,
		GenerationType:         file.GenerationType,
		ApplicationDescription: file.ApplicationDescription,
		ModulePath:             file.GoModulePath,
		FrameworkImportPath:    file.FrameworkImportPath,
		Override:               file.ModelOverride,
		HTTPClient:             file.HTTPClient(),
		StubRule:               file.StubRule(),
		Features:               file.Features(),
		InitializationType:     file.InitializationType.OrDefault(),
		LogLevel:               environment.LogLevel,
	}
	if err := applyGenerateFlagOverrides(flags, cfg, value); err != nil {
		return nil, err
	}
	if cfg.Verbose {
		cfg.LogLevel = "debug"
	}

	if cfg.BaseName == "" {
		return nil, missingParameter("base name", baseFilePath)
	}
	if cfg.GenerationType == "" {
		return nil, missingParameter("generation type", baseFilePath)
	}
	if cfg.ApplicationSuffix == "" {
		cfg.ApplicationSuffix = config.DefaultApplicationSuffix
	}

	modelPath, set, err := value("model-path")
	if err != nil {
		return nil, err
	}
	if set && modelPath != "" {
		cfg.ModelPath = modelPath
	} else {
		target := naming.PackageName(cfg.BaseName, "model")
		path, ok, err := file.ModelPath(baseFilePath, target, environment)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, missingParameter("model file path", baseFilePath)
		}
		cfg.ModelPath = path
	}
	return cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig, value func(string) (string, bool, error)) error {
	for _, f := range []struct {
		name   string
		target *string
	}{
		{"base-output-file-path", &cfg.BaseOutputFilePath},
		{"base-name", &cfg.BaseName},
		{"application-suffix", &cfg.ApplicationSuffix},
		{"application-description", &cfg.ApplicationDescription},
	} {
		v, set, err := value(f.name)
		if err != nil {
			return err
		}
		if set && v != "" {
			*f.target = v
		}
	}

	if v, set, err := value("generation-type"); err != nil {
		return err
	} else if set {
		g, err := config.ParseGenerationType(v)
		if err != nil {
			return newUsageError("generate: " + err.Error())
		}
		cfg.GenerationType = g
	}

	if v, set, err := value("model-override-path"); err != nil {
		return err
	} else if set && v != "" {
		override, err := sm.LoadModelOverride(v)
		if err != nil {
			return newUsageError("generate: " + err.Error())
		}
		cfg.Override = override
	}

	if v, set, err := value("http-client-configuration-path"); err != nil {
		return err
	} else if set && v != "" {
		client, err := config.LoadHTTPClientConfiguration(v)
		if err != nil {
			return newUsageError("generate: " + err.Error())
		}
		cfg.HTTPClient = client
	}

	if flags.Changed("dry-run") {
		v, err := flags.GetBool("dry-run")
		if err != nil {
			return err
		}
		cfg.DryRun = v
	}
	if flags.Changed("verbose") {
		v, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = v
	}
	return nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	logger, err := NewLogger(LogConfig{Component: "generate", Level: cfg.LogLevel}, os.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	doc, err := sm.Load(ctx, cfg.ModelPath, sm.WithLogger(logger))
	if err != nil {
		var se *sm.SpecError
		if errors.As(err, &se) {
			msg := fmt.Sprintf("model: %s", se.Message)
			if se.Location != "" {
				msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
			}
			if se.JSONPointer != "" {
				msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
			}
			return newUsageError(msg)
		}
		return err
	}
	model, err := sm.Build(ctx, doc, sm.WithBuildLogger(logger))
	if err != nil {
		return fmt.Errorf("build model: %w", err)
	}
	logger.Debug("model loaded",
		zap.String("path", cfg.ModelPath),
		zap.Int("swaggerVersion", doc.SwaggerVersion),
		zap.Int("operations", len(model.Operations)),
		zap.Int("structures", len(model.Structures)))

	res, err := codegen.Generate(ctx, model, codegen.Options{
		BaseName:               cfg.BaseName,
		ApplicationSuffix:      cfg.ApplicationSuffix,
		ApplicationDescription: cfg.ApplicationDescription,
		OutputDir:              cfg.BaseOutputFilePath,
		GenerationType:         cfg.GenerationType,
		ModulePath:             cfg.ModulePath,
		FrameworkImportPath:    cfg.FrameworkImportPath,
		StubRule:               cfg.StubRule,
		Features:               cfg.Features,
		InitializationType:     cfg.InitializationType,
		HTTPClient:             cfg.HTTPClient,
		Override:               cfg.Override,
		DryRun:                 cfg.DryRun,
		Logger:                 logger,
	})
	if err != nil {
		return err
	}
	if cfg.DryRun {
		printPlan(cfg.BaseOutputFilePath, res.Planned)
	}
	return nil
}

func printPlan(outDir string, planned []codegen.PlannedFile) {
	if abs, err := filepath.Abs(outDir); err == nil {
		outDir = abs
	}
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, len(planned))
	for _, p := range planned {
		fmt.Fprintf(os.Stdout, "- %s [%s, %s]\n", p.RelPath, p.Policy, p.Action)
	}
}
