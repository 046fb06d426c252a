package commands

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
)

// Registry holds registered commands.
type Registry struct {
	mu      sync.RWMutex
	cmds    map[string]Command // name and aliases map to command
	primary []Command
}

// NewRegistry creates a new command registry.
func NewRegistry() *Registry {
	return &Registry{
		cmds: make(map[string]Command),
	}
}

// Register adds a command to the registry.
// Returns an error if the name or any alias is already registered.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := append([]string{c.Name()}, c.Aliases()...)
	for _, name := range names {
		if _, exists := r.cmds[name]; exists {
			return fmt.Errorf("command name or alias already registered: %s", name)
		}
	}

	for _, name := range names {
		r.cmds[name] = c
	}
	r.primary = append(r.primary, c)
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.cmds[name]
	return cmd, ok
}

// All returns all commands sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := slices.Clone(r.primary)
	slices.SortFunc(all, func(a, b Command) int {
		return cmp.Compare(a.Name(), b.Name())
	})
	return all
}

// DefaultRegistry is the global command registry.
var DefaultRegistry = NewRegistry()

// Register adds a command to the default registry.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
