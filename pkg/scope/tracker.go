package scope

// Tracker is a stack of lexical scopes, innermost last. The global scope at
// the bottom is never popped.
type Tracker struct {
	scopes []map[string]TranslationSource
}

// NewTracker returns a tracker holding only the global scope.
func NewTracker() *Tracker {
	return &Tracker{scopes: []map[string]TranslationSource{{}}}
}

// Enter pushes a new scope.
func (t *Tracker) Enter() {
	t.scopes = append(t.scopes, map[string]TranslationSource{})
}

// Exit pops the innermost scope. Exiting at module level is a no-op.
func (t *Tracker) Exit() {
	if len(t.scopes) > 1 {
		t.scopes = t.scopes[:len(t.scopes)-1]
	}
}

// Depth is the number of open scopes, including the global one.
func (t *Tracker) Depth() int { return len(t.scopes) }

// AtModuleLevel reports whether only the global scope is open.
func (t *Tracker) AtModuleLevel() bool { return len(t.scopes) == 1 }

// Bind records name in the innermost scope, replacing an earlier binding there.
func (t *Tracker) Bind(name string, src TranslationSource) {
	t.scopes[len(t.scopes)-1][name] = src
}

// Lookup returns the innermost binding of name. A Shadowed hit is returned
// as found; it stops the outward walk.
func (t *Tracker) Lookup(name string) (TranslationSource, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if src, ok := t.scopes[i][name]; ok {
			return src, true
		}
	}
	return TranslationSource{}, false
}

// Active returns the binding of name only if it denotes a live translator.
func (t *Tracker) Active(name string) (TranslationSource, bool) {
	src, ok := t.Lookup(name)
	if !ok || src.IsShadowed() {
		return TranslationSource{}, false
	}
	return src, true
}

// InCurrentScope reports whether name is bound in the innermost scope.
func (t *Tracker) InCurrentScope(name string) bool {
	_, ok := t.scopes[len(t.scopes)-1][name]
	return ok
}

// HasOuterBinding reports whether an active translator named name is visible
// from outside the innermost scope.
func (t *Tracker) HasOuterBinding(name string) bool {
	for i := len(t.scopes) - 2; i >= 0; i-- {
		if src, ok := t.scopes[i][name]; ok {
			return !src.IsShadowed()
		}
	}
	return false
}

// Shadow binds Shadowed for every name that would otherwise resolve to an
// outer translator. Names already bound in the innermost scope are kept.
func (t *Tracker) Shadow(names ...string) {
	for _, name := range names {
		if t.InCurrentScope(name) {
			continue
		}
		if t.HasOuterBinding(name) {
			t.Bind(name, ShadowedSource())
		}
	}
}
