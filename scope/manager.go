package scope

// Manager owns every scope of one compilation.
type Manager struct {
	arena   []*Scope
	current ID
}

// NewManager returns a manager with no open scope.
func NewManager() *Manager {
	return &Manager{current: None}
}

// Open creates a scope nested in the current one and makes it current.
func (m *Manager) Open(kind Kind) *Scope {
	s := newScope(ID(len(m.arena)), kind, m.current)
	m.arena = append(m.arena, s)
	m.current = s.ID
	return s
}

// Close makes the parent of the current scope current again. The closed
// scope stays in the arena so fragments can still refer to it.
func (m *Manager) Close() {
	if m.current == None {
		return
	}
	m.current = m.arena[m.current].Parent
}

// Current returns the current scope, or nil when none is open.
func (m *Manager) Current() *Scope {
	return m.Get(m.current)
}

// CurrentID returns the ID of the current scope.
func (m *Manager) CurrentID() ID {
	return m.current
}

// Get returns the scope with the given ID, or nil.
func (m *Manager) Get(id ID) *Scope {
	if id < 0 || int(id) >= len(m.arena) {
		return nil
	}
	return m.arena[id]
}

// Parent returns the parent of s, or nil for the outermost scope.
func (m *Manager) Parent(s *Scope) *Scope {
	if s == nil {
		return nil
	}
	return m.Get(s.Parent)
}

// Len returns the number of scopes created so far.
func (m *Manager) Len() int {
	return len(m.arena)
}

// NewTemp returns a temporary of the current scope.
func (m *Manager) NewTemp() string {
	return m.Current().NewTemp()
}

// QueueTemp hands a temporary of the current scope back for reuse.
func (m *Manager) QueueTemp(name string) {
	m.Current().QueueTemp(name)
}

// WithTemp runs fn with a fresh temporary and queues it afterwards.
func (m *Manager) WithTemp(fn func(tmp string) error) error {
	s := m.Current()
	tmp := s.NewTemp()
	defer s.QueueTemp(tmp)
	return fn(tmp)
}

// PushWhile starts a loop context in the current scope.
func (m *Manager) PushWhile() *While {
	return m.Current().PushWhile()
}

// PopWhile ends the innermost loop context of the current scope.
func (m *Manager) PopWhile() {
	m.Current().PopWhile()
}

// InWhile reports whether the current scope is inside a loop.
func (m *Manager) InWhile() bool {
	s := m.Current()
	return s != nil && s.InWhile()
}

// FindParentDef returns the nearest method scope above the current one,
// not counting the current scope itself.
func (m *Manager) FindParentDef() *Scope {
	for s := m.Parent(m.Current()); s != nil; s = m.Parent(s) {
		if s.IsDef() {
			return s
		}
	}
	return nil
}

// FindYieldingScope returns the nearest scope, starting with the current
// one, that is a method or that received a block parameter.
func (m *Manager) FindYieldingScope() *Scope {
	for s := m.Current(); s != nil; s = m.Parent(s) {
		if s.IsDef() || s.BlockName != "" {
			return s
		}
	}
	return nil
}

// InDef reports whether the current scope is a method or a block inside
// one.
func (m *Manager) InDef() bool {
	s := m.Current()
	if s == nil {
		return false
	}
	return s.IsDef() || (s.IsBlock() && m.FindParentDef() != nil)
}

// LocalOwner returns the scope declaring the local name, looking through
// enclosing blocks up to the nearest non-block scope. It returns nil when
// the name is not visible.
func (m *Manager) LocalOwner(name string) *Scope {
	for s := m.Current(); s != nil; s = m.Parent(s) {
		if s.HasLocal(name) {
			return s
		}
		if !s.IsBlock() {
			return nil
		}
	}
	return nil
}

// IsLocal reports whether name is a visible local variable.
func (m *Manager) IsLocal(name string) bool {
	return m.LocalOwner(name) != nil
}
