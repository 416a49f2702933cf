// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package dispatch provides name-keyed routing of decoded protocol
// messages to handlers.
package dispatch

import (
	"encoding/json"
	"sync"
)

// Handler is a function that handles a decoded message payload.
// Handlers run synchronously on the goroutine that calls Dispatch.
type Handler func(payload json.RawMessage)

// Registry maps message names to handlers.
//
// Registration is expected to complete before messages start arriving;
// the lock is kept for defensive safety rather than as a hot-path
// requirement.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register registers a handler for the given name.
// Re-registering a name replaces the previous handler.
func (r *Registry) Register(name string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = handler
}

// Has reports whether a handler is registered for the given name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[name]
	return ok
}

// Dispatch invokes the handler registered for name with the payload,
// synchronously on the calling goroutine. It returns false when no
// handler is registered; the message is the caller's to count and drop.
func (r *Registry) Dispatch(name string, payload json.RawMessage) bool {
	r.mu.RLock()
	handler, ok := r.handlers[name]
	r.mu.RUnlock()

	if !ok {
		return false
	}

	handler(payload)
	return true
}
