package errors

import (
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

// TestErrorCodesAreUnique scans the package sources for vars initialized with
// an Error{...} composite literal and fails if two of them share a Code.
// Reflection can't enumerate package-level vars, so the AST is the only way.
func TestErrorCodesAreUnique(t *testing.T) {
	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, ".", func(info fs.FileInfo) bool {
		return strings.HasSuffix(info.Name(), ".go") && !strings.HasSuffix(info.Name(), "_test.go")
	}, 0)
	if err != nil {
		t.Fatalf("parse dir: %v", err)
	}
	pkg, ok := pkgs["errors"]
	if !ok {
		t.Fatal("package 'errors' not found")
	}

	seen := map[int]string{}
	for _, f := range pkg.Files {
		ast.Inspect(f, func(n ast.Node) bool {
			gd, ok := n.(*ast.GenDecl)
			if !ok || gd.Tok != token.VAR {
				return true
			}
			for _, spec := range gd.Specs {
				vs, ok := spec.(*ast.ValueSpec)
				if !ok {
					continue
				}
				for i, name := range vs.Names {
					if i >= len(vs.Values) {
						continue
					}
					cl, ok := vs.Values[i].(*ast.CompositeLit)
					if !ok || !isErrorComposite(cl) {
						continue
					}
					code, ok := extractCodeField(cl)
					if !ok {
						continue
					}
					if prev, dup := seen[code]; dup {
						t.Errorf("duplicate Error.Code %d: %s and %s", code, prev, name.Name)
					}
					seen[code] = name.Name
				}
			}
			return true
		})
	}
}

func TestErrorMarshalAndWith(t *testing.T) {
	c := qt.New(t)
	e := ErrAppointmentNotFound.Withf("id %s", "abc")
	c.Assert(e.Code, qt.Equals, ErrAppointmentNotFound.Code)
	c.Assert(e.HTTPstatus, qt.Equals, http.StatusNotFound)
	c.Assert(e.Error(), qt.Contains, "appointment not found")
	c.Assert(e.Error(), qt.Contains, "id abc")

	data, err := e.MarshalJSON()
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Contains, `"code":40401`)
}

func isErrorComposite(cl *ast.CompositeLit) bool {
	switch t := cl.Type.(type) {
	case *ast.Ident:
		return t.Name == "Error"
	case *ast.SelectorExpr:
		return t.Sel.Name == "Error"
	default:
		return false
	}
}

func extractCodeField(cl *ast.CompositeLit) (int, bool) {
	for _, elt := range cl.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		key, ok := kv.Key.(*ast.Ident)
		if !ok || key.Name != "Code" {
			continue
		}
		if v, ok := kv.Value.(*ast.BasicLit); ok && v.Kind == token.INT {
			n, err := strconv.ParseInt(strings.ReplaceAll(v.Value, "_", ""), 0, 32)
			if err == nil {
				return int(n), true
			}
		}
	}
	return 0, false
}
