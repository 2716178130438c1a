package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
)

// WildcardModelLocation is the modelLocations key used for any target
// without its own entry.
const WildcardModelLocation = "*"

// ModelPath returns the model file for target. An explicit ModelFilePath
// wins; otherwise modelLocations is consulted for target, then for the
// wildcard key. Relative paths are resolved against baseFilePath. ok is false
// when nothing is configured.
func (c *CodeGen) ModelPath(baseFilePath, target string, environment Environment) (path string, ok bool, err error) {
	if c == nil {
		return "", false, nil
	}
	if c.ModelFilePath != "" {
		return resolveRelative(baseFilePath, c.ModelFilePath), true, nil
	}
	loc, found := c.ModelLocations[target]
	if !found {
		loc, found = c.ModelLocations[WildcardModelLocation]
	}
	if !found {
		return "", false, nil
	}
	path, err = ResolveModelLocation(baseFilePath, loc, environment)
	if err != nil {
		return "", false, err
	}
	return path, true, nil
}

// ResolveModelLocation finds the file a ModelLocation names. A location with a
// ModelProductDependency is looked up in the module named by that dependency:
// a local replace directive in baseFilePath's go.mod, then vendor/, then the
// module cache at the required version.
func ResolveModelLocation(baseFilePath string, loc ModelLocation, environment Environment) (string, error) {
	if loc.ModelProductDependency == "" {
		return resolveRelative(baseFilePath, loc.ModelFilePath), nil
	}
	dependency := loc.ModelProductDependency

	goModPath := filepath.Join(baseFilePath, "go.mod")
	data, err := os.ReadFile(goModPath)
	if err != nil {
		return "", configError("model location %s: read %s: %v", dependency, goModPath, err)
	}
	file, err := modfile.Parse(goModPath, data, nil)
	if err != nil {
		return "", configError("model location %s: %v", dependency, err)
	}

	var required *module.Version
	for _, r := range file.Require {
		if r.Mod.Path == dependency {
			required = &r.Mod
			break
		}
	}
	if required == nil {
		return "", configError("model location %s: module is not required by %s", dependency, goModPath)
	}

	for _, r := range file.Replace {
		if r.Old.Path != dependency || (r.Old.Version != "" && r.Old.Version != required.Version) {
			continue
		}
		if modfile.IsDirectoryPath(r.New.Path) {
			return filepath.Join(resolveRelative(baseFilePath, r.New.Path), loc.ModelFilePath), nil
		}
		required = &module.Version{Path: r.New.Path, Version: r.New.Version}
	}

	vendored := filepath.Join(baseFilePath, "vendor", filepath.FromSlash(dependency), loc.ModelFilePath)
	if _, err := os.Stat(vendored); err == nil {
		return vendored, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", configError("model location %s: %v", dependency, err)
	}

	cache := environment.ModuleCache()
	if cache == "" {
		return "", configError("model location %s: module cache not found (set GOMODCACHE)", dependency)
	}
	escapedPath, err := module.EscapePath(required.Path)
	if err != nil {
		return "", configError("model location %s: %v", dependency, err)
	}
	escapedVersion, err := module.EscapeVersion(required.Version)
	if err != nil {
		return "", configError("model location %s: %v", dependency, err)
	}
	return filepath.Join(cache, filepath.FromSlash(escapedPath)+"@"+escapedVersion, loc.ModelFilePath), nil
}

func resolveRelative(base, path string) string {
	if filepath.IsAbs(path) || base == "" {
		return path
	}
	return filepath.Join(base, path)
}

func firstListEntry(list string) string {
	first, _, _ := strings.Cut(list, string(filepath.ListSeparator))
	return first
}
