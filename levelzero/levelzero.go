// Copyright (c) 2026 The hwloc-go Authors.
// SPDX-License-Identifier: Apache-2.0

// Package levelzero discovers compute accelerator devices exposed by a
// Level Zero driver stack and grafts them into a topology tree as
// OS-device nodes, under their physical PCI slot when the management
// plane can report one.
package levelzero

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dora-zhang/hwloc/base"
	"github.com/dora-zhang/hwloc/topology"
)

// BackendName is the registry name and the Backend attribute value.
const BackendName = "LevelZero"

// SysmanEnv requests management-plane (sysman) device creation from the
// driver stack. It must be set before the stack is first initialized
// anywhere in the process for extended queries to work.
const SysmanEnv = "ZES_ENABLE_SYSMAN"

// SysmanMode classifies what the environment said about sysman when
// discovery started. It feeds the one-time diagnostic emitted when the
// extended property query fails.
type SysmanMode int

const (
	// SysmanPreset : the variable was already set to a truthy value,
	// possibly by an out-of-process initializer.
	SysmanPreset SysmanMode = iota
	// SysmanNewlyEnabled : the variable was unset and we defaulted it
	// to "1"; another component may already have initialized the stack
	// without it, in which case extended queries fail.
	SysmanNewlyEnabled
	// SysmanDisabled : the variable was explicitly set to a falsy
	// value.
	SysmanDisabled
)

// resolveSysmanMode reads SysmanEnv, sets it to "1" if absent, and
// returns the three-way classification. Best effort: an out-of-process
// initializer may have raced us.
func resolveSysmanMode() SysmanMode {
	env, found := os.LookupEnv(SysmanEnv)
	if !found {
		os.Setenv(SysmanEnv, "1")
		return SysmanNewlyEnabled
	}
	if v, err := strconv.Atoi(env); err != nil || v == 0 {
		// Non-numeric values count as disabled, matching how the
		// driver stack itself parses the variable.
		return SysmanDisabled
	}
	return SysmanPreset
}

// Backend discovers Level Zero devices. One Backend instance serves one
// discovery pass context; it owns the once-per-process style diagnostic
// latches so that tests can run many passes without cross talk.
type Backend struct {
	log   *base.LogObject
	stack Stack

	sysmanMode   SysmanMode
	sysmanWarned bool
}

// New returns a backend using the given driver stack.
func New(log *base.LogObject, stack Stack) *Backend {
	return &Backend{log: log, stack: stack}
}

func init() {
	topology.RegisterBackend(BackendName, func(log *base.LogObject) topology.Backend {
		return New(log, NewSysfsStack())
	})
}

// Name implements topology.Backend.
func (b *Backend) Name() string {
	return BackendName
}

// Phase implements topology.Backend. Runs after the PCI substrate is in
// place so bus-address parent matching can succeed.
func (b *Backend) Phase() topology.Phase {
	return topology.PhaseIO
}

// Discover enumerates drivers and devices and inserts one OS-device node
// per device. It always returns nil: a missing or broken driver stack
// yields zero nodes, not a failed topology build.
func (b *Backend) Discover(topo *topology.Topology) error {
	if topo.TypeFilter(topology.ObjOSDevice) == topology.KeepNone {
		// Skip before touching the stack; initializing the driver
		// just to throw the nodes away is not free.
		return nil
	}

	b.sysmanMode = resolveSysmanMode()

	if err := b.stack.Init(b.log); err != nil {
		if !topo.HideErrors() {
			b.log.Errorf("levelzero: failed to initialize %s driver stack: %v",
				b.stack.Name(), err)
		}
		return nil
	}

	drivers, err := b.stack.Drivers()
	if err != nil || len(drivers) == 0 {
		return nil
	}

	zeIdx := 0
	for _, drv := range drivers {
		devices, err := b.stack.Devices(drv)
		if err != nil || len(devices) == 0 {
			continue
		}

		for _, dev := range devices {
			osdev := topo.AllocNode(topology.ObjOSDevice)
			osdev.Name = fmt.Sprintf("ze%d", zeIdx)
			osdev.OSDevType = topology.OSDevCoproc
			osdev.Subtype = BackendName
			osdev.AddInfo("Backend", BackendName)
			osdev.AddInfo("LevelZeroDriverIndex",
				strconv.FormatUint(uint64(drv.Index()), 10))
			osdev.AddInfo("LevelZeroDriverDeviceIndex",
				strconv.FormatUint(uint64(dev.Index()), 10))

			b.getProperties(topo, dev, osdev)
			b.getQueueGroups(dev, osdev)

			parent := b.findPCIParent(topo, dev)
			if parent == nil {
				parent = topo.Root()
			}
			topo.InsertByParent(parent, osdev)
			zeIdx++
		}
	}
	return nil
}

// findPCIParent resolves the device's bus address to an existing tree
// node. When the match is a bus-device slot and the stack reports a
// positive peak bandwidth, the slot's recorded link speed is overwritten
// with the value converted to GB/s. This is the only place this backend
// mutates a pre-existing node.
func (b *Backend) findPCIParent(topo *topology.Topology, dev DeviceHandle) *topology.Node {
	pci, err := b.stack.PCIProperties(dev)
	if err != nil {
		return nil
	}
	parent := topo.FindPCIParentByBusID(pci.Address)
	if parent != nil && parent.Kind == topology.ObjPCIDevice {
		if pci.MaxBandwidth > 0 && parent.PCI != nil {
			parent.PCI.LinkSpeed = float32(pci.MaxBandwidth) / 1000 / 1000 / 1000
		}
	}
	return parent
}
