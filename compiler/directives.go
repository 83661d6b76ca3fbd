package compiler

import (
	"regexp"

	"github.com/rbjs-dev/rbjs/ast"
	"github.com/rbjs-dev/rbjs/options"
	"github.com/rbjs-dev/rbjs/parser"
)

// directivePattern matches a "# key: value" comment.
var directivePattern = regexp.MustCompile(`^#\s*([A-Za-z][\w-]*)\s*:\s*(.*?)\s*$`)

// parseDirectives reads the directive block: the comments located before
// the first node of the tree, or every comment when the tree is empty.
// Keys are normalized like option names. The values true, false and nil
// are converted, anything else is kept as a string.
func parseDirectives(tree *ast.Node, comments []parser.Comment) map[string]any {
	directives := map[string]any{}
	for _, comment := range comments {
		if tree != nil && comment.Pos.Char >= tree.Loc.Char {
			break
		}
		m := directivePattern.FindStringSubmatch(comment.Text)
		if m == nil {
			continue
		}
		directives[options.NormalizeName(m[1])] = directiveValue(m[2])
	}
	return directives
}

func directiveValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	case "nil":
		return nil
	}
	return s
}
