package state

import "sync"

// Registry maps user ids to their workspaces. A workspace is created on the
// first authenticated request and dropped on sign-out.
type Registry struct {
	mu         sync.Mutex
	workspaces map[string]*Workspace
}

func NewRegistry() *Registry {
	return &Registry{workspaces: make(map[string]*Workspace)}
}

// Get returns the user's workspace, creating it if needed.
func (r *Registry) Get(userID string) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.workspaces[userID]
	if !ok {
		ws = NewWorkspace()
		r.workspaces[userID] = ws
	}
	return ws
}

// Drop removes the user's workspace.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workspaces, userID)
}
