package errors

// ErrorCode represents a unique identifier for error types.
// Codes are organized by category:
//   - E1xxx: Syntax errors
//   - E2xxx: Compile errors
//   - E4xxx: Configuration errors
type ErrorCode string

const (
	// Syntax errors (E1xxx)
	E1001 ErrorCode = "E1001" // Invalid syntax
	E1002 ErrorCode = "E1002" // Unterminated string literal
	E1003 ErrorCode = "E1003" // Unclosed delimiter
	E1004 ErrorCode = "E1004" // Unknown node tag

	// Compile errors (E2xxx)
	E2001 ErrorCode = "E2001" // Unsupported construct
	E2002 ErrorCode = "E2002" // Invalid jump (break, next, redo, retry)
	E2003 ErrorCode = "E2003" // Invalid yield
	E2004 ErrorCode = "E2004" // Void value expression
	E2005 ErrorCode = "E2005" // Dynamic require
	E2006 ErrorCode = "E2006" // Malformed node

	// Configuration errors (E4xxx)
	E4001 ErrorCode = "E4001" // Invalid option value
	E4002 ErrorCode = "E4002" // Unknown option
)

// codeDescriptions maps error codes to their short descriptions.
var codeDescriptions = map[ErrorCode]string{
	E1001: "invalid syntax",
	E1002: "unterminated string literal",
	E1003: "unclosed delimiter",
	E1004: "unknown node tag",

	E2001: "unsupported construct",
	E2002: "invalid jump",
	E2003: "invalid yield",
	E2004: "void value expression",
	E2005: "dynamic require",
	E2006: "malformed node",

	E4001: "invalid option value",
	E4002: "unknown option",
}

// Description returns the short description for an error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// Category returns the error category based on the code prefix.
func (c ErrorCode) Category() string {
	if len(c) < 2 {
		return "unknown"
	}
	switch c[1] {
	case '1':
		return "syntax"
	case '2':
		return "compile"
	case '4':
		return "config"
	default:
		return "unknown"
	}
}
