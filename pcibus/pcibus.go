// Copyright (c) 2026 The hwloc-go Authors.
// SPDX-License-Identifier: Apache-2.0

// Package pcibus builds the bus substrate of a topology: machine root
// attributes plus one node per PCI slot and bridge, so that IO backends
// can graft their devices under the right physical parent.
package pcibus

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jaypipes/ghw"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"

	"github.com/dora-zhang/hwloc/base"
	"github.com/dora-zhang/hwloc/topology"
)

// BackendName is the registry name.
const BackendName = "pci"

const sysfsPCIDevices = "/sys/bus/pci/devices"

// PCI bridge base class code (0x06).
const bridgeBaseClass = 0x06

// Backend populates machine and PCI nodes.
type Backend struct {
	log *base.LogObject
	// sysfsRoot is only overridden by tests.
	sysfsRoot string
}

// New returns a PCI bus backend.
func New(log *base.LogObject) *Backend {
	return &Backend{log: log, sysfsRoot: sysfsPCIDevices}
}

func init() {
	topology.RegisterBackend(BackendName, func(log *base.LogObject) topology.Backend {
		return New(log)
	})
}

// Name implements topology.Backend.
func (b *Backend) Name() string {
	return BackendName
}

// Phase implements topology.Backend.
func (b *Backend) Phase() topology.Phase {
	return topology.PhasePCI
}

// Discover fills in the machine root attributes and inserts the PCI
// nodes. Each source that fails is skipped with a diagnostic; a machine
// with no readable PCI bus still gets its root attributes.
func (b *Backend) Discover(topo *topology.Topology) error {
	b.fillMachine(topo.Root())

	if topo.TypeFilter(topology.ObjPCIDevice) == topology.KeepNone {
		return nil
	}

	info, err := ghw.PCI()
	if err != nil {
		if !topo.HideErrors() {
			b.log.Errorf("pcibus: could not enumerate PCI devices: %v", err)
		}
		return nil
	}
	for _, dev := range info.Devices {
		addr, err := topology.ParsePCIAddress(dev.Address)
		if err != nil {
			b.log.Debugf("pcibus: skipping %q: %v", dev.Address, err)
			continue
		}
		var vendorName, productName string
		if dev.Vendor != nil {
			vendorName = dev.Vendor.Name
		}
		if dev.Product != nil {
			productName = dev.Product.Name
		}
		node := b.newPCINode(topo, addr, vendorName, productName)
		topo.InsertByParent(topo.Root(), node)
	}
	return nil
}

// fillMachine records host identity and capacity on the root node.
func (b *Backend) fillMachine(root *topology.Node) {
	if hostname, err := os.Hostname(); err == nil {
		root.AddInfo("Hostname", hostname)
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		root.AddInfo("MemoryTotalBytes", strconv.FormatUint(vm.Total, 10))
	} else {
		b.log.Warnf("pcibus: memory query failed: %v", err)
	}
	if info, err := cpu.Info(); err == nil && len(info) > 0 {
		root.AddInfo("NCPUs", strconv.Itoa(len(info)))
		root.AddInfo("CPUModel", info[0].ModelName)
	} else if err != nil {
		b.log.Warnf("pcibus: cpu query failed: %v", err)
	}
}

// newPCINode builds one bus-slot or bridge node. Bridge ranges come from
// sysfs when readable; without them a bridge can never match a bus
// lookup, which only costs fallback-to-root grafting.
func (b *Backend) newPCINode(topo *topology.Topology, addr topology.PCIAddress, vendorName, productName string) *topology.Node {
	classID := b.readClassID(addr)
	kind := topology.ObjPCIDevice
	attr := &topology.PCIAttr{
		Busid:      addr,
		VendorName: vendorName,
		DeviceName: productName,
		ClassID:    classID,
	}
	if classID>>8 == bridgeBaseClass {
		kind = topology.ObjBridge
		attr.SecondaryBus, attr.SubordinateBus = b.readBusRange(addr)
	}

	node := topo.AllocNode(kind)
	node.Name = addr.String()
	node.PCI = attr
	if vendorName != "" {
		node.AddInfo("PCIVendor", vendorName)
	}
	if productName != "" {
		node.AddInfo("PCIDevice", productName)
	}
	return node
}

// readClassID reads the 16-bit class/subclass code for a slot, zero when
// unreadable.
func (b *Backend) readClassID(addr topology.PCIAddress) uint16 {
	raw, err := readSysfsString(filepath.Join(b.sysfsRoot, addr.String(), "class"))
	if err != nil {
		return 0
	}
	// The file holds a 24-bit code like 0x060400; the low byte is the
	// programming interface.
	v, err := strconv.ParseUint(strings.TrimPrefix(raw, "0x"), 16, 32)
	if err != nil {
		return 0
	}
	return uint16(v >> 8)
}

// readBusRange reads a bridge's downstream bus window.
func (b *Backend) readBusRange(addr topology.PCIAddress) (secondary, subordinate uint8) {
	dir := filepath.Join(b.sysfsRoot, addr.String())
	if raw, err := readSysfsString(filepath.Join(dir, "secondary_bus_number")); err == nil {
		if v, err := strconv.ParseUint(raw, 10, 8); err == nil {
			secondary = uint8(v)
		}
	}
	if raw, err := readSysfsString(filepath.Join(dir, "subordinate_bus_number")); err == nil {
		if v, err := strconv.ParseUint(raw, 10, 8); err == nil {
			subordinate = uint8(v)
		}
	}
	return secondary, subordinate
}

func readSysfsString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
