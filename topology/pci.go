// Copyright (c) 2026 The hwloc-go Authors.
// SPDX-License-Identifier: Apache-2.0

package topology

import (
	"fmt"
)

// PCIAddress is a full domain:bus:device.function bus address, e.g.
// 0000:03:00.0. It is used to match accelerator devices to their physical
// slot; it is never stored as device identity.
type PCIAddress struct {
	Domain   uint32
	Bus      uint8
	Device   uint8
	Function uint8
}

// String returns the canonical long form, e.g. "0000:03:00.0".
func (a PCIAddress) String() string {
	return fmt.Sprintf("%04x:%02x:%02x.%x", a.Domain, a.Bus, a.Device, a.Function)
}

// ParsePCIAddress parses a long bus address like "0000:03:00.0". The
// domain may be omitted ("03:00.0") and defaults to zero.
func ParsePCIAddress(s string) (PCIAddress, error) {
	var addr PCIAddress
	var n int
	var err error
	switch countColons(s) {
	case 2:
		n, err = fmt.Sscanf(s, "%04x:%02x:%02x.%x",
			&addr.Domain, &addr.Bus, &addr.Device, &addr.Function)
		if err != nil || n != 4 {
			return addr, fmt.Errorf("not a PCI address: %q", s)
		}
	case 1:
		n, err = fmt.Sscanf(s, "%02x:%02x.%x",
			&addr.Bus, &addr.Device, &addr.Function)
		if err != nil || n != 3 {
			return addr, fmt.Errorf("not a PCI address: %q", s)
		}
	default:
		return addr, fmt.Errorf("not a PCI address: %q", s)
	}
	return addr, nil
}

func countColons(s string) int {
	count := 0
	for _, r := range s {
		if r == ':' {
			count++
		}
	}
	return count
}

// PCIAttr is the bus information carried by bus-device slots and bridges.
type PCIAttr struct {
	Busid PCIAddress
	// VendorName and DeviceName come from the pci.ids database when
	// available.
	VendorName string
	DeviceName string
	// ClassID is the 16-bit class/subclass code, e.g. 0x0302.
	ClassID uint16
	// LinkSpeed is in GB/s. Zero means not reported; accelerator
	// backends backfill it from their management plane.
	LinkSpeed float32
	// SecondaryBus and SubordinateBus delimit the downstream bus range
	// of a bridge. Both zero on endpoints.
	SecondaryBus   uint8
	SubordinateBus uint8
}

// FindPCIParentByBusID returns the tree node to graft a device with the
// given bus address under: the exact bus-device slot when present, else
// the deepest bridge whose downstream bus range covers the address, else
// nil.
func (t *Topology) FindPCIParentByBusID(addr PCIAddress) *Node {
	var exact *Node
	var bridge *Node
	bridgeDepth := -1
	depth := 0

	var walk func(n *Node)
	walk = func(n *Node) {
		if exact != nil {
			return
		}
		if n.PCI != nil {
			switch n.Kind {
			case ObjPCIDevice:
				if n.PCI.Busid == addr {
					exact = n
					return
				}
			case ObjBridge:
				if n.PCI.Busid.Domain == addr.Domain &&
					n.PCI.SecondaryBus <= addr.Bus &&
					addr.Bus <= n.PCI.SubordinateBus &&
					depth > bridgeDepth {
					bridge = n
					bridgeDepth = depth
				}
			}
		}
		depth++
		for _, c := range n.Children {
			walk(c)
		}
		depth--
	}
	walk(t.root)

	if exact != nil {
		return exact
	}
	return bridge
}
