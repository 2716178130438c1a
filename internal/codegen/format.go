package codegen

import (
	"go.uber.org/zap"
	"golang.org/x/tools/imports"
)

var formatOptions = &imports.Options{Comments: true, TabIndent: true, TabWidth: 8}

// format runs goimports over a rendered Go file, dropping unused imports. A
// file that does not parse is kept unformatted so the problem stays visible
// in the output tree.
func (g *generator) format(relPath string, src []byte) []byte {
	formatted, err := imports.Process(relPath, src, formatOptions)
	if err != nil {
		g.logger.Warn("generated file is not valid Go; writing it unformatted",
			zap.String("path", relPath), zap.Error(err))
		return src
	}
	return formatted
}
