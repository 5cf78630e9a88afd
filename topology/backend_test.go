// Copyright (c) 2026 The hwloc-go Authors.
// SPDX-License-Identifier: Apache-2.0

package topology

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeBackend struct {
	name  string
	phase Phase
	err   error
	ran   *[]string
}

func (f *fakeBackend) Name() string { return f.name }
func (f *fakeBackend) Phase() Phase { return f.phase }
func (f *fakeBackend) Discover(t *Topology) error {
	*f.ran = append(*f.ran, f.name)
	return f.err
}

func TestDiscoverPhaseOrdering(t *testing.T) {
	topo := New(testLog())
	var ran []string

	// Registered in the wrong order on purpose; phases must win.
	err := topo.Discover(
		&fakeBackend{name: "zeta", phase: PhaseIO, ran: &ran},
		&fakeBackend{name: "alpha", phase: PhaseIO, ran: &ran},
		&fakeBackend{name: "pci", phase: PhasePCI, ran: &ran},
	)
	assert.NoError(t, err)
	assert.Equal(t, []string{"pci", "alpha", "zeta"}, ran)
}

func TestDiscoverContinuesPastFailingBackend(t *testing.T) {
	topo := New(testLog())
	var ran []string
	bad := errors.New("probe exploded")

	err := topo.Discover(
		&fakeBackend{name: "bad", phase: PhasePCI, err: bad, ran: &ran},
		&fakeBackend{name: "good", phase: PhaseIO, ran: &ran},
	)
	assert.ErrorIs(t, err, bad)
	assert.Equal(t, []string{"bad", "good"}, ran)
}

func TestGetBackendUnknown(t *testing.T) {
	_, err := GetBackend("no-such-backend", testLog())
	assert.Error(t, err)
}
