package codegen

import (
	"path"

	"github.com/mark3labs/smokegen/internal/config"
	"github.com/mark3labs/smokegen/internal/naming"
)

// layout names the packages and directories of a generated tree.
type layout struct {
	Base        string // "Widget"
	Application string // "WidgetService"
	Description string
	ModulePath  string
	Framework   string

	ModelPkg      string
	ClientPkg     string
	OperationsPkg string
	HTTPPkg       string
	CommandName   string

	ModelImport      string
	ClientImport     string
	OperationsImport string
	HTTPImport       string

	// Directories relative to the output root. Plugin generation types
	// write their single library into the root itself.
	ModelDir      string
	ClientDir     string
	OperationsDir string
	HTTPDir       string
	CommandDir    string
}

func newLayout(opts Options) layout {
	base := naming.TypeName(opts.BaseName)
	suffix := opts.ApplicationSuffix
	l := layout{
		Base:          base,
		Application:   base + naming.TypeName(suffix),
		Description:   opts.ApplicationDescription,
		ModulePath:    opts.ModulePath,
		Framework:     opts.FrameworkImportPath,
		ModelPkg:      naming.PackageName(opts.BaseName, "model"),
		ClientPkg:     naming.PackageName(opts.BaseName, "client"),
		OperationsPkg: naming.PackageName(opts.BaseName, "operations"),
		HTTPPkg:       naming.PackageName(opts.BaseName, "operations", "http"),
		CommandName:   naming.PackageName(opts.BaseName, suffix),
	}
	if l.ModulePath == "" {
		l.ModulePath = l.CommandName
	}
	if l.Framework == "" {
		l.Framework = config.DefaultFrameworkImportPath
	}
	if l.Description == "" {
		l.Description = "The " + opts.BaseName + suffix + "."
	}
	l.ModelImport = path.Join(l.ModulePath, l.ModelPkg)
	l.ClientImport = path.Join(l.ModulePath, l.ClientPkg)
	l.OperationsImport = path.Join(l.ModulePath, l.OperationsPkg)
	l.HTTPImport = path.Join(l.ModulePath, l.HTTPPkg)

	l.ModelDir, l.ClientDir, l.OperationsDir, l.HTTPDir = l.ModelPkg, l.ClientPkg, l.OperationsPkg, l.HTTPPkg
	l.CommandDir = path.Join("cmd", l.CommandName)
	if opts.GenerationType.IsPlugin() {
		l.ModelDir, l.ClientDir, l.HTTPDir = "", "", ""
	}
	return l
}

