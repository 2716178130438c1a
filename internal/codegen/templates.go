package codegen

import (
	"bytes"
	"embed"
	"strconv"
	"strings"
	"sync"
	"text/template"
)

//go:embed templates/*.tmpl templates/*/*.tmpl
var templateFS embed.FS

var loadTemplates = sync.OnceValues(func() (*template.Template, error) {
	return template.New("").
		Funcs(templateFuncs).
		ParseFS(templateFS, "templates/*.tmpl", "templates/*/*.tmpl")
})

var templateFuncs = template.FuncMap{
	"quote": strconv.Quote,
	"join":  strings.Join,
}

// stubData is what the per-operation templates are executed with.
type stubData struct {
	V  *view
	Op operationView
}

// render executes the named template. Go files are formatted; everything else
// is returned as rendered.
func (g *generator) render(name, relPath string, data any) ([]byte, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	if !strings.HasSuffix(relPath, ".go") {
		return buf.Bytes(), nil
	}
	return g.format(relPath, buf.Bytes()), nil
}
