// internal/delivery/registry.go
package delivery

import (
	"fmt"
	"strings"
	"sync"

	"github.com/user/magnus/internal/types"
)

// Handler delivers a reply message to a session identified by sessionKey.
type Handler func(sessionKey types.SessionKey, msg *types.Message) error

// Registry routes replies to the appropriate delivery handler based on
// session key prefix (e.g. "telegram:", "http:").
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty delivery registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register adds a handler for session keys starting with prefix.
func (r *Registry) Register(prefix string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[prefix] = handler
}

// Deliver finds the handler matching the session key prefix and calls it.
// Returns an error if no handler is registered for the prefix.
func (r *Registry) Deliver(sessionKey types.SessionKey, msg *types.Message) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for prefix, handler := range r.handlers {
		if strings.HasPrefix(string(sessionKey), prefix) {
			return handler(sessionKey, msg)
		}
	}
	return fmt.Errorf("no delivery handler for session key: %s", sessionKey)
}
