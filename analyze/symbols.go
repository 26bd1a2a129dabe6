package analyze

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
)

// goSymbols extracts top-level declarations from a Go source file.
// Parse failures yield no symbols rather than failing the scan.
func goSymbols(path, rel string) []Symbol {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		return nil
	}

	var symbols []Symbol
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			kind := "func"
			name := d.Name.Name
			if d.Recv != nil && len(d.Recv.List) > 0 {
				kind = "method"
				name = recvName(d.Recv.List[0].Type) + "." + name
			}
			symbols = append(symbols, Symbol{
				Kind: kind,
				Name: name,
				File: rel,
				Line: fset.Position(d.Pos()).Line,
				Doc:  docLine(d.Doc),
			})
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				doc := docLine(ts.Doc)
				if doc == "" {
					doc = docLine(d.Doc)
				}
				symbols = append(symbols, Symbol{
					Kind: "type",
					Name: ts.Name.Name,
					File: rel,
					Line: fset.Position(ts.Pos()).Line,
					Doc:  doc,
				})
			}
		}
	}
	return symbols
}

func recvName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return recvName(t.X)
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		return recvName(t.X)
	}
	return "?"
}

func docLine(cg *ast.CommentGroup) string {
	if cg == nil {
		return ""
	}
	text := strings.TrimSpace(cg.Text())
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return text
}
