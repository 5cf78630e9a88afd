// Copyright (c) 2026 The hwloc-go Authors.
// SPDX-License-Identifier: Apache-2.0

package topology

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/dora-zhang/hwloc/base"
)

func testLog() *base.LogObject {
	return base.NewSourceLogObject(logrus.New(), "topology-test", 0)
}

func TestParsePCIAddress(t *testing.T) {
	testMatrix := map[string]struct {
		in      string
		want    PCIAddress
		wantErr bool
	}{
		"Long form": {
			in:   "0000:03:00.0",
			want: PCIAddress{Domain: 0, Bus: 3, Device: 0, Function: 0},
		},
		"Nonzero domain and function": {
			in:   "0001:af:1f.7",
			want: PCIAddress{Domain: 1, Bus: 0xaf, Device: 0x1f, Function: 7},
		},
		"Short form without domain": {
			in:   "03:00.0",
			want: PCIAddress{Bus: 3},
		},
		"Garbage": {
			in:      "not-a-busid",
			wantErr: true,
		},
		"Empty": {
			in:      "",
			wantErr: true,
		},
	}
	for testname, test := range testMatrix {
		t.Logf("Running test case %s", testname)
		got, err := ParsePCIAddress(test.in)
		if test.wantErr {
			assert.Error(t, err)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, test.want, got)
	}
}

func TestPCIAddressString(t *testing.T) {
	addr := PCIAddress{Domain: 0, Bus: 0xaf, Device: 1, Function: 3}
	assert.Equal(t, "0000:af:01.3", addr.String())

	parsed, err := ParsePCIAddress(addr.String())
	assert.NoError(t, err)
	assert.Equal(t, addr, parsed)
}

func TestInsertByParent(t *testing.T) {
	topo := New(testLog())
	node := topo.AllocNode(ObjOSDevice)
	node.Name = "dev0"

	topo.InsertByParent(topo.Root(), node)
	assert.Len(t, topo.Root().Children, 1)
	assert.Equal(t, topo.Root(), node.Parent)

	// A second insertion of the same node must be ignored.
	topo.InsertByParent(topo.Root(), node)
	assert.Len(t, topo.Root().Children, 1)
}

func TestInsertNilParentFallsBackToRoot(t *testing.T) {
	topo := New(testLog())
	node := topo.AllocNode(ObjOSDevice)
	topo.InsertByParent(nil, node)
	assert.Equal(t, topo.Root(), node.Parent)
}

func TestTypeFilters(t *testing.T) {
	topo := New(testLog())
	assert.Equal(t, KeepAll, topo.TypeFilter(ObjOSDevice))

	topo.SetTypeFilter(ObjOSDevice, KeepNone)
	assert.Equal(t, KeepNone, topo.TypeFilter(ObjOSDevice))

	// The Machine root cannot be filtered out.
	topo.SetTypeFilter(ObjMachine, KeepNone)
	assert.Equal(t, KeepAll, topo.TypeFilter(ObjMachine))
}

func TestNodeAttrs(t *testing.T) {
	node := &Node{}
	node.AddInfo("Backend", "LevelZero")
	node.AddInfo("LevelZeroDeviceType", "GPU")

	value, found := node.Info("Backend")
	assert.True(t, found)
	assert.Equal(t, "LevelZero", value)

	_, found = node.Info("Missing")
	assert.False(t, found)

	// Insertion order is preserved.
	attrs := node.Attrs()
	assert.Equal(t, "Backend", attrs[0].Key)
	assert.Equal(t, "LevelZeroDeviceType", attrs[1].Key)
}

func TestWalkVisitsParentsFirst(t *testing.T) {
	topo := New(testLog())
	child := topo.AllocNode(ObjPCIDevice)
	child.Name = "slot"
	topo.InsertByParent(topo.Root(), child)
	leaf := topo.AllocNode(ObjOSDevice)
	leaf.Name = "dev"
	topo.InsertByParent(child, leaf)

	var kinds []string
	topo.Walk(func(n *Node) { kinds = append(kinds, n.Kind.String()) })
	assert.Equal(t, []string{"Machine", "PCIDev", "OSDev"}, kinds)
}
