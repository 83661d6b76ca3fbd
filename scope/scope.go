// Package scope tracks the lexical contexts opened while generating code.
//
// Scopes live in an arena owned by a Manager and refer to their parent by
// ID. A scope is opened when a handler enters a new lexical context (the
// program, a class or module body, a method, a block) and closed when that
// handler returns, so the open scopes always form a single chain.
package scope

import (
	"fmt"
	"slices"
)

// Kind is the kind of lexical context a scope represents.
type Kind uint8

const (
	Top Kind = iota
	Module
	Class
	Def
	Block
)

func (k Kind) String() string {
	switch k {
	case Top:
		return "top"
	case Module:
		return "module"
	case Class:
		return "class"
	case Def:
		return "def"
	case Block:
		return "block"
	}
	return fmt.Sprintf("scope(%d)", int(k))
}

// ID is the handle of a scope in its Manager's arena.
type ID int

// None is the ID of the parent of the outermost scope.
const None ID = -1

// While is the marker pushed for each loop being compiled.
type While struct {
	// RedoVar names the temporary flag used when the body contains redo.
	RedoVar string
	// UseRedo is set once a redo has been compiled inside the loop.
	UseRedo bool
	// Closure is set when the loop is compiled inside an expression closure,
	// where break and next must leave the closure as well.
	Closure bool
	// Label names the loop once a jump has to address it by name.
	Label string
	// RetryDepth counts the retry loops open when the loop started.
	RetryDepth int
}

// Scope is one lexical context.
type Scope struct {
	ID     ID
	Kind   Kind
	Parent ID

	// Name is the class, module or method name.
	Name string
	// Identity is the JavaScript function name of a method or block.
	Identity string
	// BlockName is the parameter holding the block passed to a method.
	BlockName string
	// Async marks a method or block compiled as an async function.
	Async bool
	// CatchReturn is set on a method when a block inside it returns from
	// the method.
	CatchReturn bool

	usesBlock bool
	args      map[string]bool
	locals    []string
	localSet  map[string]bool
	temps     []string
	free      []string
	nextTemp  int
	whiles    []*While
	cases     []string
}

func newScope(id ID, kind Kind, parent ID) *Scope {
	return &Scope{
		ID:       id,
		Kind:     kind,
		Parent:   parent,
		args:     map[string]bool{},
		localSet: map[string]bool{},
	}
}

// IsDef reports whether the scope is a method body.
func (s *Scope) IsDef() bool { return s.Kind == Def }

// IsBlock reports whether the scope is a block body.
func (s *Scope) IsBlock() bool { return s.Kind == Block }

// IsTop reports whether the scope is the program scope.
func (s *Scope) IsTop() bool { return s.Kind == Top }

// IsClassOrModule reports whether the scope is a class or module body.
func (s *Scope) IsClassOrModule() bool { return s.Kind == Class || s.Kind == Module }

// AddArg records a parameter of the scope's function.
func (s *Scope) AddArg(name string) {
	s.args[name] = true
}

// HasArg reports whether name is a parameter of the scope's function.
func (s *Scope) HasArg(name string) bool {
	return s.args[name]
}

// AddLocal declares a local variable. Declaring it twice is a no-op.
func (s *Scope) AddLocal(name string) {
	if s.localSet[name] || s.args[name] {
		return
	}
	s.localSet[name] = true
	s.locals = append(s.locals, name)
}

// HasLocal reports whether the scope itself declares name.
func (s *Scope) HasLocal(name string) bool {
	return s.localSet[name] || s.args[name]
}

// Locals returns the declared locals in declaration order.
func (s *Scope) Locals() []string {
	return slices.Clone(s.locals)
}

// Temps returns every temporary minted in the scope.
func (s *Scope) Temps() []string {
	return slices.Clone(s.temps)
}

// NewTemp returns a temporary variable name, reusing the most recently
// queued one when available.
func (s *Scope) NewTemp() string {
	if n := len(s.free); n > 0 {
		name := s.free[n-1]
		s.free = s.free[:n-1]
		return name
	}
	for {
		name := "$" + tempName(s.nextTemp)
		s.nextTemp++
		if !s.HasLocal(name) {
			s.temps = append(s.temps, name)
			return name
		}
	}
}

// QueueTemp hands a temporary back for reuse.
func (s *Scope) QueueTemp(name string) {
	if slices.Contains(s.free, name) {
		return
	}
	s.free = append(s.free, name)
}

// tempName returns the n-th name of the sequence a, b, ..., z, aa, ab, ...
func tempName(n int) string {
	var b []byte
	for n++; n > 0; n = (n - 1) / 26 {
		b = append(b, byte('a'+(n-1)%26))
	}
	slices.Reverse(b)
	return string(b)
}

// PushWhile starts a loop context.
func (s *Scope) PushWhile() *While {
	w := &While{}
	s.whiles = append(s.whiles, w)
	return w
}

// PopWhile ends the innermost loop context.
func (s *Scope) PopWhile() {
	if len(s.whiles) > 0 {
		s.whiles = s.whiles[:len(s.whiles)-1]
	}
}

// InWhile reports whether code is being generated inside a loop of this
// scope.
func (s *Scope) InWhile() bool {
	return len(s.whiles) > 0
}

// CurrentWhile returns the innermost loop, or nil.
func (s *Scope) CurrentWhile() *While {
	if len(s.whiles) == 0 {
		return nil
	}
	return s.whiles[len(s.whiles)-1]
}

// PushCase starts a case context whose subject is held in the given
// variable ("" when the case has no subject).
func (s *Scope) PushCase(subject string) {
	s.cases = append(s.cases, subject)
}

// PopCase ends the innermost case context.
func (s *Scope) PopCase() {
	if len(s.cases) > 0 {
		s.cases = s.cases[:len(s.cases)-1]
	}
}

// InCase reports whether code is being generated inside a case.
func (s *Scope) InCase() bool {
	return len(s.cases) > 0
}

// CaseSubject returns the subject variable of the innermost case.
func (s *Scope) CaseSubject() string {
	if len(s.cases) == 0 {
		return ""
	}
	return s.cases[len(s.cases)-1]
}

// UsesBlock marks the method as needing its block parameter.
func (s *Scope) UsesBlock() {
	s.usesBlock = true
}

// BlockUsed reports whether UsesBlock was called.
func (s *Scope) BlockUsed() bool {
	return s.usesBlock
}
