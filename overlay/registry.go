// Package overlay owns the host-side bookkeeping the annotation engine
// stays deliberately free of: which markers are currently applied to which
// buffer, and how a marker set renders into terminal output.
package overlay

import (
	"sync"

	"github.com/lexcodex/bracepy/annotate"
)

// Registry maps buffer identities (URIs) to the marker set currently applied
// to them. Replace implements full-replace semantics: the previous set is
// discarded wholesale, so markers from an older analysis pass never survive
// alongside a newer one.
type Registry struct {
	mu      sync.RWMutex
	buffers map[string]*bufferState
}

type bufferState struct {
	version int32
	markers []annotate.LineMarker
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{buffers: make(map[string]*bufferState)}
}

// Replace installs markers for a buffer version. A result computed for an
// older version than the one already applied is discarded and Replace
// reports false; the last pass to finish for the most recent version wins.
func (r *Registry) Replace(uri string, version int32, markers []annotate.LineMarker) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.buffers[uri]
	if ok && version < state.version {
		return false
	}
	applied := make([]annotate.LineMarker, len(markers))
	copy(applied, markers)
	r.buffers[uri] = &bufferState{version: version, markers: applied}
	return true
}

// Markers returns a copy of the marker set applied to a buffer.
func (r *Registry) Markers(uri string) []annotate.LineMarker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.buffers[uri]
	if !ok {
		return nil
	}
	markers := make([]annotate.LineMarker, len(state.markers))
	copy(markers, state.markers)
	return markers
}

// Version returns the buffer version the applied set was computed for, or -1
// when the buffer is unknown.
func (r *Registry) Version(uri string) int32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.buffers[uri]
	if !ok {
		return -1
	}
	return state.version
}

// Clear drops every marker for a buffer, typically on close.
func (r *Registry) Clear(uri string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.buffers, uri)
}

// Buffers lists the URIs that currently carry markers.
func (r *Registry) Buffers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	uris := make([]string, 0, len(r.buffers))
	for uri := range r.buffers {
		uris = append(uris, uri)
	}
	return uris
}
