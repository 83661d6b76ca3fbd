package compiler

import (
	"regexp"
	"strconv"
	"strings"
)

// operatorNames is applied in order, longer operators first.
var operatorNames = []struct{ op, name string }{
	{"<=>", "$lt_eq_gt"},
	{"===", "$eq_eq_eq"},
	{"==", "$eq_eq"},
	{"=~", "$eq_tilde"},
	{"!~", "$excl_tilde"},
	{"!=", "$not_eq"},
	{"<=", "$lt_eq"},
	{">=", "$gt_eq"},
	{"=", "$eq"},
	{"?", "$ques"},
	{"!", "$excl"},
	{"/", "$slash"},
	{"%", "$percent"},
	{"+", "$plus"},
	{"-", "$minus"},
	{"<", "$lt"},
	{">", "$gt"},
}

var nonIdentifier = regexp.MustCompile(`[^\w$]`)

// sanitizeName rewrites a Ruby method or variable name into characters
// valid in a JavaScript identifier.
func sanitizeName(name string) string {
	for _, r := range operatorNames {
		name = strings.ReplaceAll(name, r.op, r.name)
	}
	return nonIdentifier.ReplaceAllLiteralString(name, "$")
}

// uniqueName returns an identifier derived from name that no other call in
// this compilation returns. Generated names start with '$', which Ruby
// local variable names cannot, and end with a counter.
func (c *Compiler) uniqueName(name string) string {
	name = sanitizeName(name)
	c.unique++
	if !strings.HasPrefix(name, "$") {
		name = "$" + name
	}
	return name + "$" + strconv.Itoa(c.unique)
}
