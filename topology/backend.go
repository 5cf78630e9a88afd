// Copyright (c) 2026 The hwloc-go Authors.
// SPDX-License-Identifier: Apache-2.0

package topology

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dora-zhang/hwloc/base"
)

// Phase orders backend execution: bus structure first, then the IO
// backends that graft devices onto it.
type Phase int

const (
	// PhasePCI backends build the bus-slot and bridge substrate.
	PhasePCI Phase = iota + 1
	// PhaseIO backends attach OS devices under the bus substrate.
	PhaseIO
)

// Backend is one discovery backend. A backend inspects some part of the
// system and inserts nodes into the topology. Discovery errors that only
// reduce what a backend can see are absorbed by the backend itself;
// Discover returns an error only for misuse, never for absent hardware.
type Backend interface {
	Name() string
	Phase() Phase
	Discover(t *Topology) error
}

// Constructor builds a backend bound to a log object.
type Constructor func(log *base.LogObject) Backend

var (
	backendsMu    sync.Mutex
	knownBackends = map[string]Constructor{}
)

// RegisterBackend makes a backend constructor available under its name.
// Typically called from a backend package init, database/sql style.
func RegisterBackend(name string, ctor Constructor) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	if _, dup := knownBackends[name]; dup {
		panic(fmt.Sprintf("topology: RegisterBackend called twice for %q", name))
	}
	knownBackends[name] = ctor
}

// AvailableBackends returns the registered backend names, sorted.
func AvailableBackends() []string {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	names := make([]string, 0, len(knownBackends))
	for name := range knownBackends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetBackend instantiates one registered backend by name.
func GetBackend(name string, log *base.LogObject) (Backend, error) {
	backendsMu.Lock()
	ctor, found := knownBackends[name]
	backendsMu.Unlock()
	if !found {
		return nil, fmt.Errorf("unknown backend %q", name)
	}
	return ctor(log), nil
}

// Discover runs the given backends against the topology, ordered by phase
// and then by name so a pass is deterministic. A backend error does not
// stop the remaining backends; the joined errors are returned for the
// caller to report.
func (t *Topology) Discover(backends ...Backend) error {
	ordered := make([]Backend, len(backends))
	copy(ordered, backends)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Phase() != ordered[j].Phase() {
			return ordered[i].Phase() < ordered[j].Phase()
		}
		return ordered[i].Name() < ordered[j].Name()
	})

	var finalErr error
	for _, b := range ordered {
		t.log.Debugf("topology: running %s backend", b.Name())
		if err := b.Discover(t); err != nil {
			finalErr = errors.Join(finalErr,
				fmt.Errorf("backend %s: %w", b.Name(), err))
		}
	}
	return finalErr
}

// DiscoverAll instantiates every registered backend and runs them.
func (t *Topology) DiscoverAll() error {
	var backends []Backend
	for _, name := range AvailableBackends() {
		b, err := GetBackend(name, t.log)
		if err != nil {
			return err
		}
		backends = append(backends, b)
	}
	return t.Discover(backends...)
}
