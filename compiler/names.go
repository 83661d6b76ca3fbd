package compiler

import (
	"regexp"
	"strings"

	"github.com/goccy/go-json"
)

// reservedWords cannot be used as JavaScript variable names.
var reservedWords = map[string]bool{
	"arguments": true, "await": true, "break": true, "case": true,
	"catch": true, "class": true, "const": true, "continue": true,
	"debugger": true, "default": true, "delete": true, "do": true,
	"else": true, "enum": true, "eval": true, "export": true,
	"extends": true, "false": true, "finally": true, "for": true,
	"function": true, "if": true, "implements": true, "import": true,
	"in": true, "instanceof": true, "interface": true, "let": true,
	"new": true, "null": true, "package": true, "private": true,
	"protected": true, "public": true, "return": true, "static": true,
	"super": true, "switch": true, "this": true, "throw": true,
	"true": true, "try": true, "typeof": true, "undefined": true,
	"var": true, "void": true, "while": true, "with": true, "yield": true,
}

var identifier = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)

func isIdentifier(name string) bool {
	return identifier.MatchString(name)
}

// jsLocal returns the JavaScript name of a Ruby local variable.
func jsLocal(name string) string {
	if reservedWords[name] {
		return name + "$"
	}
	return name
}

// jsProperty returns the property access of a Ruby method: .$name, or
// ["$name"] when the name is not a valid identifier.
func jsProperty(name string) string {
	if isIdentifier(name) {
		return ".$" + name
	}
	return "[" + quote("$"+name) + "]"
}

// ivarName strips the @ of an instance variable name. Reserved words get
// a trailing $ like locals.
func ivarName(name string) string {
	return jsLocal(strings.TrimPrefix(name, "@"))
}

// quote returns s as a JavaScript string literal.
func quote(s string) string {
	data, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(data)
}
