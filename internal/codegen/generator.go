// Package codegen renders a normalized service model into the Go source tree
// of a smoke service: the model, client and HTTP binding libraries, the
// operation stubs and their tests, and the application scaffold.
package codegen

import (
	"context"
	"path"
	"sort"

	"go.uber.org/zap"

	"github.com/mark3labs/smokegen/internal/binding"
	"github.com/mark3labs/smokegen/internal/output"
	sm "github.com/mark3labs/smokegen/internal/servicemodel"
)

// Policy says whether a file is rewritten by every run.
type Policy string

const (
	// PolicyAlways files are derived from the model and always replaced.
	PolicyAlways Policy = "always"
	// PolicyScaffoldOnce files are meant to be edited; update runs keep them.
	PolicyScaffoldOnce Policy = "scaffold-once"
)

// PlannedFile describes one file of the generated tree.
type PlannedFile struct {
	RelPath string
	Policy  Policy
	Action  output.Action
	Size    int
}

// Result reports the resolved names and every planned file in path order.
type Result struct {
	Application string
	ModulePath  string
	Planned     []PlannedFile
}

type generator struct {
	opts   Options
	logger *zap.Logger
	l      layout
	v      *view
}

type fileSpec struct {
	rel      string
	policy   Policy
	template string
	data     any
}

type renderedFile struct {
	fileSpec
	contents []byte
}

// Generate renders model under opts. Every binding is resolved and every file
// rendered before the first write, so configuration and model-consistency
// errors leave the output tree untouched.
func Generate(ctx context.Context, model *sm.ServiceModel, opts Options) (*Result, error) {
	if model == nil {
		return nil, configurationError("no service model")
	}
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	if err := output.ValidateDirectory(opts.OutputDir); err != nil {
		return nil, classify(err)
	}

	plan, err := binding.NewPlan(model, opts.Override)
	if err != nil {
		return nil, classify(err)
	}
	l := newLayout(opts)
	v, err := newView(model, plan, opts, l)
	if err != nil {
		return nil, err
	}
	g := &generator{opts: opts, logger: opts.Logger, l: l, v: v}
	v.GeneratedDirs = g.generatedDirs()

	files, err := g.renderFiles(g.files())
	if err != nil {
		return nil, err
	}

	result := &Result{Application: l.Application, ModulePath: l.ModulePath}
	counts := map[output.Action]int{}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		action, err := g.write(f)
		if err != nil {
			return nil, classify(err)
		}
		counts[action]++
		g.logger.Debug("planned file",
			zap.String("path", f.rel),
			zap.String("policy", string(f.policy)),
			zap.String("action", string(action)))
		result.Planned = append(result.Planned, PlannedFile{RelPath: f.rel, Policy: f.policy, Action: action, Size: len(f.contents)})
	}
	g.logger.Info("generation complete",
		zap.String("application", l.Application),
		zap.String("generationType", string(opts.GenerationType)),
		zap.String("output", opts.OutputDir),
		zap.Bool("dryRun", opts.DryRun),
		zap.Int("operations", len(v.Operations)),
		zap.Int("written", counts[output.Written]),
		zap.Int("skipped", counts[output.SkippedExisting]),
		zap.Int("planned", counts[output.Planned]))
	return result, nil
}

// renderFiles renders specs and returns them in path order.
func (g *generator) renderFiles(specs []fileSpec) ([]renderedFile, error) {
	files := make([]renderedFile, 0, len(specs))
	for _, spec := range specs {
		contents, err := g.render(spec.template, spec.rel, spec.data)
		if err != nil {
			return nil, renderError(spec.rel, err)
		}
		files = append(files, renderedFile{fileSpec: spec, contents: contents})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].rel < files[j].rel })
	for i := 1; i < len(files); i++ {
		if files[i].rel == files[i-1].rel {
			return nil, inconsistent("", "two generated files share the path %s", files[i].rel)
		}
	}
	return files, nil
}

// mode maps a file policy to a write mode. Only update runs keep existing
// scaffold-once files.
func (g *generator) mode(policy Policy) output.Mode {
	if policy == PolicyAlways || !g.opts.GenerationType.PreservesExisting() {
		return output.Force
	}
	return output.SkipIfExists
}

func (g *generator) write(f renderedFile) (output.Action, error) {
	mode := g.mode(f.policy)
	if !g.opts.DryRun {
		return output.Scaffold(mode, f.rel, g.opts.OutputDir, f.contents)
	}
	if mode == output.SkipIfExists {
		exists, err := output.Exists(f.rel, g.opts.OutputDir)
		if err != nil {
			return "", err
		}
		if exists {
			return output.SkippedExisting, nil
		}
	}
	return output.Planned, nil
}

func (g *generator) generatedDirs() []string {
	libs := g.opts.GenerationType.Libraries()
	var dirs []string
	for _, lib := range []struct {
		enabled bool
		dir     string
	}{
		{libs.Model, g.l.ModelDir},
		{libs.Client, g.l.ClientDir},
		{libs.HTTP, g.l.HTTPDir},
	} {
		if lib.enabled && lib.dir != "" {
			dirs = append(dirs, lib.dir)
		}
	}
	return dirs
}

// files lists the files of the libraries selected by the generation type.
func (g *generator) files() []fileSpec {
	libs := g.opts.GenerationType.Libraries()
	l, v := g.l, g.v
	var files []fileSpec
	add := func(dir, name string, policy Policy, template string, data any) {
		files = append(files, fileSpec{rel: path.Join(dir, name), policy: policy, template: template, data: data})
	}

	if libs.Model {
		for _, name := range []string{"structures.go", "errors.go", "operations.go", "defaults.go", "http_parts.go"} {
			add(l.ModelDir, name, PolicyAlways, name+".tmpl", v)
		}
	}
	if libs.Client {
		for _, name := range []string{"client.go", "mock_client.go", "throwing_client.go", "http_client.go"} {
			add(l.ClientDir, name, PolicyAlways, name+".tmpl", v)
		}
	}
	if libs.HTTP {
		for _, name := range []string{"http_input.go", "http_output.go", "handler_selector.go"} {
			add(l.HTTPDir, name, PolicyAlways, name+".tmpl", v)
		}
		if v.Streamlined {
			add(l.HTTPDir, "streamlined_initializer.go", PolicyAlways, "streamlined_initializer.go.tmpl", v)
		}
		add(l.HTTPDir, "operation_delegate.go", PolicyScaffoldOnce, "operation_delegate.go.tmpl", v)
	}
	if libs.Application {
		add(l.OperationsDir, "context.go", PolicyScaffoldOnce, "context.go.tmpl", v)
		for _, op := range v.Operations {
			add(l.OperationsDir, op.StubFile, PolicyScaffoldOnce, "stub.go.tmpl", stubData{V: v, Op: op})
			if op.Input != nil {
				add(l.OperationsDir, op.TestFile, PolicyScaffoldOnce, "stub_test.go.tmpl", stubData{V: v, Op: op})
			}
		}
		add(l.OperationsDir, "test_config_test.go", PolicyScaffoldOnce, "test_config_test.go.tmpl", v)
		if !v.Features.TestDiscovery.Enabled() {
			add(l.OperationsDir, "main_test.go", PolicyScaffoldOnce, "main_test.go.tmpl", v)
		}
		add(l.CommandDir, "main.go", PolicyScaffoldOnce, "main.go.tmpl", v)
		add(l.CommandDir, "initializer.go", PolicyScaffoldOnce, "initializer.go.tmpl", v)
		add("", "go.mod", PolicyScaffoldOnce, "go.mod.tmpl", v)
		add("", ".gitignore", PolicyScaffoldOnce, "gitignore.tmpl", v)
		add("", ".golangci.yml", PolicyScaffoldOnce, "golangci.yml.tmpl", v)
		add("", "Makefile", PolicyScaffoldOnce, "Makefile.tmpl", v)
		add("", "README.md", PolicyScaffoldOnce, "README.md.tmpl", v)
	}
	return files
}
