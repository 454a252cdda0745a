package op

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// HandlerFunc is a unit of extension logic bound to exactly one stage.
// A non-nil error return is a handler fault: the transaction is
// aborted with a generic server error.
type HandlerFunc[C any] func(context.Context, C) error

// HandlerDescriptor identifies a handler by a unique name within its
// stage, ranks it by priority (lower runs earlier, ties keep
// registration order) and carries the callable logic.
type HandlerDescriptor[C any] struct {
	Name     string
	Priority int
	Handler  HandlerFunc[C]
}

var (
	ErrHandlerNameEmpty = errors.New("op: handler name must not be empty")
	ErrHandlerNil       = errors.New("op: handler must not be nil")
)

// Chain is the ordered collection of handlers registered for one
// stage. Registration is expected at startup; Resolve may be called
// concurrently with reconfiguration.
type Chain[C any] struct {
	mu          sync.RWMutex
	descriptors []HandlerDescriptor[C]
}

// Register inserts the descriptor, replacing any handler of the same
// name. The replacement counts as a fresh registration for tie
// breaking purposes.
func (c *Chain[C]) Register(desc HandlerDescriptor[C]) error {
	if desc.Name == "" {
		return ErrHandlerNameEmpty
	}
	if desc.Handler == nil {
		return ErrHandlerNil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(desc.Name)
	c.descriptors = append(c.descriptors, desc)
	return nil
}

// Remove deletes the named handler and reports whether it was present.
func (c *Chain[C]) Remove(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remove(name)
}

func (c *Chain[C]) remove(name string) bool {
	for i, desc := range c.descriptors {
		if desc.Name == name {
			c.descriptors = append(c.descriptors[:i], c.descriptors[i+1:]...)
			return true
		}
	}
	return false
}

// Resolve returns the invocation order: ascending priority, ties in
// registration order. The result is a copy and fully deterministic for
// the current registry contents.
func (c *Chain[C]) Resolve() []HandlerDescriptor[C] {
	c.mu.RLock()
	resolved := make([]HandlerDescriptor[C], len(c.descriptors))
	copy(resolved, c.descriptors)
	c.mu.RUnlock()
	sort.SliceStable(resolved, func(i, j int) bool {
		return resolved[i].Priority < resolved[j].Priority
	})
	return resolved
}

// HandlerRegistry groups the four stage chains of the end-session
// pipeline. The stage set is closed; each chain is typed by its stage
// context.
type HandlerRegistry struct {
	extract       Chain[*ExtractContext]
	validate      Chain[*ValidateContext]
	handle        Chain[*HandleContext]
	applyResponse Chain[*ApplyResponseContext]
}

func NewHandlerRegistry() *HandlerRegistry {
	return new(HandlerRegistry)
}

func (r *HandlerRegistry) Extract() *Chain[*ExtractContext] {
	return &r.extract
}

func (r *HandlerRegistry) Validate() *Chain[*ValidateContext] {
	return &r.validate
}

func (r *HandlerRegistry) Handle() *Chain[*HandleContext] {
	return &r.handle
}

func (r *HandlerRegistry) ApplyResponse() *Chain[*ApplyResponseContext] {
	return &r.applyResponse
}
