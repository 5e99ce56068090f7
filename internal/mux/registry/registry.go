// Package registry implements C6: the process-wide name -> session map,
// the one piece of genuinely global state in the daemon.
package registry

import (
	"log"
	"sync"

	"tenexmux/internal/mux/muxerr"
	"tenexmux/internal/mux/session"
)

// Registry maps session name to Session, guarded by a single mutex held
// only for pointer swaps (§4.6, §5). Callers must clone the session handle
// out and drop this lock before acquiring any session/window lock.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{sessions: make(map[string]*session.Session)}
}

// Create registers a new session, failing with Exists if name is taken.
func (r *Registry) Create(name, workingDir string, command []string, rows, cols int, created int64) error {
	r.mu.Lock()
	if _, ok := r.sessions[name]; ok {
		r.mu.Unlock()
		return muxerr.Newf(muxerr.Exists, "session %q already exists", name)
	}
	r.mu.Unlock()

	s, err := session.New(name, workingDir, command, rows, cols, created)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[name]; ok {
		// Lost a create race; tear down the session we just spawned.
		go s.KillAll()
		return muxerr.Newf(muxerr.Exists, "session %q already exists", name)
	}
	r.sessions[name] = s
	return nil
}

// Get clones the session handle out of the registry without holding the
// registry lock past this call, per the deadlock discipline of §4.6/§5.
func (r *Registry) Get(name string) (*session.Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[name]
	r.mu.Unlock()
	if !ok {
		return nil, muxerr.Newf(muxerr.NotFound, "session %q not found", name)
	}
	return s, nil
}

// Kill removes name from the registry and terminates its windows.
func (r *Registry) Kill(name string) error {
	r.mu.Lock()
	s, ok := r.sessions[name]
	if ok {
		delete(r.sessions, name)
	}
	r.mu.Unlock()
	if !ok {
		return muxerr.Newf(muxerr.NotFound, "session %q not found", name)
	}
	s.KillAll()
	return nil
}

// Exists reports whether name is present and alive (§4.6).
func (r *Registry) Exists(name string) bool {
	s, err := r.Get(name)
	if err != nil {
		return false
	}
	return s.Alive()
}

// Rename moves a session's entry to a new name, failing with Exists if the
// new name is taken (§4.5). Per §4.6/§5, the session handle is cloned out
// and the registry lock dropped before calling s.Rename, which acquires the
// session's own mutex; r.mu is only re-acquired to swap the map key.
func (r *Registry) Rename(oldName, newName string) error {
	r.mu.Lock()
	if _, ok := r.sessions[newName]; ok {
		r.mu.Unlock()
		return muxerr.Newf(muxerr.Exists, "session %q already exists", newName)
	}
	s, ok := r.sessions[oldName]
	r.mu.Unlock()
	if !ok {
		return muxerr.Newf(muxerr.NotFound, "session %q not found", oldName)
	}

	s.Rename(newName)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[newName]; ok {
		return muxerr.Newf(muxerr.Exists, "session %q already exists", newName)
	}
	delete(r.sessions, oldName)
	r.sessions[newName] = s
	return nil
}

// SessionInfo is the list-facing snapshot of one session.
type SessionInfo struct {
	Name    string
	Created int64
	Windows int
}

// List snapshots the registry, drops dead sessions from the result and
// schedules their removal after the snapshot is taken, and logs (never
// raises) any removal failure (§4.6).
func (r *Registry) List() []SessionInfo {
	r.mu.Lock()
	snapshot := make(map[string]*session.Session, len(r.sessions))
	for name, s := range r.sessions {
		snapshot[name] = s
	}
	r.mu.Unlock()

	var out []SessionInfo
	var dead []string
	for name, s := range snapshot {
		if s.Alive() {
			out = append(out, SessionInfo{Name: s.Name, Created: s.Created, Windows: s.WindowCount()})
		} else {
			dead = append(dead, name)
		}
	}

	for _, name := range dead {
		if err := r.Kill(name); err != nil {
			log.Printf("registry: sweep removal of %q failed: %v", name, err)
		}
	}

	return out
}
