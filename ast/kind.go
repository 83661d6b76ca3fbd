package ast

// Kind is the tag of a syntax tree node.
type Kind uint8

// Node kinds. The names returned by String match the tags produced by the
// parser.
const (
	Invalid Kind = iota

	// Literals
	Nil
	True
	False
	Self
	Int
	Float
	Str
	Dstr
	Sym
	Array
	Hash
	Pair

	// Variables and constants
	Lvar
	Lvasgn
	Ivar
	Ivasgn
	Gvar
	Gvasgn
	Const
	Casgn

	// Calls
	Send
	Block
	BlockPass
	Args
	Arg
	Optarg
	Restarg
	Blockarg

	// Control flow
	Begin
	Kwbegin
	If
	And
	Or
	While
	Until
	WhilePost
	UntilPost
	Break
	Next
	Redo
	Retry
	Return
	JSReturn
	Yield
	ReturnableYield
	Case
	When
	Rescue
	Resbody
	Ensure

	// Definitions
	Def
	Class
	Module
	Undef

	// Verbatim target code
	Xstr

	// Top wraps the whole program once it has been classified.
	Top

	kindCount
)

var kindNames = [kindCount]string{
	Invalid:         "invalid",
	Nil:             "nil",
	True:            "true",
	False:           "false",
	Self:            "self",
	Int:             "int",
	Float:           "float",
	Str:             "str",
	Dstr:            "dstr",
	Sym:             "sym",
	Array:           "array",
	Hash:            "hash",
	Pair:            "pair",
	Lvar:            "lvar",
	Lvasgn:          "lvasgn",
	Ivar:            "ivar",
	Ivasgn:          "ivasgn",
	Gvar:            "gvar",
	Gvasgn:          "gvasgn",
	Const:           "const",
	Casgn:           "casgn",
	Send:            "send",
	Block:           "block",
	BlockPass:       "block_pass",
	Args:            "args",
	Arg:             "arg",
	Optarg:          "optarg",
	Restarg:         "restarg",
	Blockarg:        "blockarg",
	Begin:           "begin",
	Kwbegin:         "kwbegin",
	If:              "if",
	And:             "and",
	Or:              "or",
	While:           "while",
	Until:           "until",
	WhilePost:       "while_post",
	UntilPost:       "until_post",
	Break:           "break",
	Next:            "next",
	Redo:            "redo",
	Retry:           "retry",
	Return:          "return",
	JSReturn:        "js_return",
	Yield:           "yield",
	ReturnableYield: "returnable_yield",
	Case:            "case",
	When:            "when",
	Rescue:          "rescue",
	Resbody:         "resbody",
	Ensure:          "ensure",
	Def:             "def",
	Class:           "class",
	Module:          "module",
	Undef:           "undef",
	Xstr:            "xstr",
	Top:             "top",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, kindCount)
	for k := Kind(1); k < kindCount; k++ {
		m[kindNames[k]] = k
	}
	return m
}()

// String returns the tag name of the kind.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "unknown"
}

// LookupKind returns the kind with the given tag name.
func LookupKind(name string) (Kind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}

// Kinds returns every valid kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount-1)
	for k := Kind(1); k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}
