// Package errstack provides the shared context-stack behaviour for domain
// errors. Every layer that re-wraps an error appends exactly one string
// describing what it was trying to do, so the stack reads top-down as a
// causal breadcrumb trail independent of the native error chain.
package errstack

// Stack is an ordered, append-only list of human-readable context strings,
// oldest first. Embed it (as a named field or anonymously) in an error type
// to give it the append operations.
type Stack []string

// AppendDetail appends a single context string in place.
func (s *Stack) AppendDetail(detail string) {
	*s = append(*s, detail)
}

// AppendDetails appends context strings in place, preserving their order.
func (s *Stack) AppendDetails(details ...string) {
	*s = append(*s, details...)
}

// Details returns the accumulated context strings, oldest first.
func (s *Stack) Details() []string {
	return *s
}

// Error is implemented by every domain error that carries a Stack.
type Error interface {
	error
	AppendDetail(detail string)
	AppendDetails(details ...string)
	Details() []string
}

// With appends a single detail and returns the error, for chaining at
// construction sites.
func With[E Error](err E, detail string) E {
	err.AppendDetail(detail)
	return err
}

// WithAll appends details in order and returns the error.
func WithAll[E Error](err E, details ...string) E {
	err.AppendDetails(details...)
	return err
}
