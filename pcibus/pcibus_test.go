// Copyright (c) 2026 The hwloc-go Authors.
// SPDX-License-Identifier: Apache-2.0

package pcibus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dora-zhang/hwloc/base"
	"github.com/dora-zhang/hwloc/topology"
)

func testBackend(t *testing.T) *Backend {
	t.Helper()
	log := base.NewSourceLogObject(logrus.New(), "pcibus-test-"+t.Name(), 0)
	return &Backend{log: log, sysfsRoot: t.TempDir()}
}

func writeDeviceFile(t *testing.T, root, busid, name, content string) {
	t.Helper()
	dir := filepath.Join(root, busid)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content+"\n"), 0o644))
}

func TestFillMachine(t *testing.T) {
	b := testBackend(t)
	topo := topology.New(b.log)

	b.fillMachine(topo.Root())

	hostname, found := topo.Root().Info("Hostname")
	assert.True(t, found)
	assert.NotEmpty(t, hostname)
}

func TestReadClassID(t *testing.T) {
	b := testBackend(t)
	addr := topology.PCIAddress{Bus: 3}
	writeDeviceFile(t, b.sysfsRoot, addr.String(), "class", "0x060400")

	assert.Equal(t, uint16(0x0604), b.readClassID(addr))

	// Missing or malformed files read as zero.
	assert.Equal(t, uint16(0), b.readClassID(topology.PCIAddress{Bus: 9}))
	writeDeviceFile(t, b.sysfsRoot, "0000:0a:00.0", "class", "bogus")
	assert.Equal(t, uint16(0), b.readClassID(topology.PCIAddress{Bus: 0x0a}))
}

func TestReadBusRange(t *testing.T) {
	b := testBackend(t)
	addr := topology.PCIAddress{Device: 1}
	writeDeviceFile(t, b.sysfsRoot, addr.String(), "secondary_bus_number", "2")
	writeDeviceFile(t, b.sysfsRoot, addr.String(), "subordinate_bus_number", "4")

	secondary, subordinate := b.readBusRange(addr)
	assert.Equal(t, uint8(2), secondary)
	assert.Equal(t, uint8(4), subordinate)
}

func TestNewPCINodeEndpoint(t *testing.T) {
	b := testBackend(t)
	topo := topology.New(b.log)
	addr := topology.PCIAddress{Bus: 3}
	writeDeviceFile(t, b.sysfsRoot, addr.String(), "class", "0x030000")

	node := b.newPCINode(topo, addr, "Intel Corporation", "DG2 [Arc A770]")

	assert.Equal(t, topology.ObjPCIDevice, node.Kind)
	assert.Equal(t, "0000:03:00.0", node.Name)
	require.NotNil(t, node.PCI)
	assert.Equal(t, addr, node.PCI.Busid)
	assert.Equal(t, uint16(0x0300), node.PCI.ClassID)

	vendor, found := node.Info("PCIVendor")
	assert.True(t, found)
	assert.Equal(t, "Intel Corporation", vendor)
}

func TestNewPCINodeBridge(t *testing.T) {
	b := testBackend(t)
	topo := topology.New(b.log)
	addr := topology.PCIAddress{Device: 1}
	writeDeviceFile(t, b.sysfsRoot, addr.String(), "class", "0x060400")
	writeDeviceFile(t, b.sysfsRoot, addr.String(), "secondary_bus_number", "2")
	writeDeviceFile(t, b.sysfsRoot, addr.String(), "subordinate_bus_number", "4")

	node := b.newPCINode(topo, addr, "Intel Corporation", "PCIe Root Port")

	assert.Equal(t, topology.ObjBridge, node.Kind)
	require.NotNil(t, node.PCI)
	assert.Equal(t, uint8(2), node.PCI.SecondaryBus)
	assert.Equal(t, uint8(4), node.PCI.SubordinateBus)
}

func TestDiscoverRespectsPCIFilter(t *testing.T) {
	b := testBackend(t)
	topo := topology.New(b.log)
	topo.SetTypeFilter(topology.ObjPCIDevice, topology.KeepNone)

	assert.NoError(t, b.Discover(topo))
	// Machine attributes are still filled, but no PCI children appear.
	assert.Empty(t, topo.Root().Children)
	_, found := topo.Root().Info("Hostname")
	assert.True(t, found)
}
