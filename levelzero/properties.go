// Copyright (c) 2026 The hwloc-go Authors.
// SPDX-License-Identifier: Apache-2.0

package levelzero

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dora-zhang/hwloc/topology"
)

// kindLabel maps the fixed device kind enumeration to the attribute
// value. Anything outside the enumeration is "Unknown".
func kindLabel(kind DeviceKind) (string, bool) {
	switch kind {
	case KindGPU:
		return "GPU", true
	case KindCPU:
		return "CPU", true
	case KindFPGA:
		return "FPGA", true
	case KindMCA:
		return "MCA", true
	case KindVPU:
		return "VPU", true
	default:
		return "Unknown", false
	}
}

// sysmanUnknown is the sentinel old driver stacks report for absent
// string fields; recent stacks use the lowercase spelling.
func sysmanUnknown(s string) bool {
	return strings.EqualFold(s, "Unknown")
}

// getProperties records the basic and extended property attributes on
// osdev. Both queries are independent and both degrade: a failed basic
// query records nothing for that step, a failed extended query leaves
// the five identity attributes absent and emits one diagnostic per
// backend instance. Neither failure aborts the device.
func (b *Backend) getProperties(topo *topology.Topology, dev DeviceHandle, osdev *topology.Node) {
	props, err := b.stack.DeviceProperties(dev)
	if err == nil {
		label, known := kindLabel(props.Kind)
		if !known && !topo.HideErrors() {
			b.log.Errorf("levelzero: unexpected device type %d", uint32(props.Kind))
		}
		osdev.AddInfo("LevelZeroDeviceType", label)
		osdev.AddInfo("LevelZeroDeviceNumSlices",
			strconv.FormatUint(uint64(props.NumSlices), 10))
		osdev.AddInfo("LevelZeroDeviceNumSubslicesPerSlice",
			strconv.FormatUint(uint64(props.NumSubslicesPerSlice), 10))
		osdev.AddInfo("LevelZeroDeviceNumEUsPerSubslice",
			strconv.FormatUint(uint64(props.NumEUsPerSubslice), 10))
		osdev.AddInfo("LevelZeroDeviceNumThreadsPerEU",
			strconv.FormatUint(uint64(props.NumThreadsPerEU), 10))
	}

	sysman, err := b.stack.SysmanDeviceProperties(dev)
	if err != nil {
		if !b.sysmanWarned {
			if !topo.HideErrors() {
				switch b.sysmanMode {
				case SysmanNewlyEnabled:
					b.log.Errorf("levelzero: extended device query failed (%s=1 set too late?): %v",
						SysmanEnv, err)
				case SysmanDisabled:
					b.log.Errorf("levelzero: extended device query failed (%s=0): %v",
						SysmanEnv, err)
				default:
					b.log.Errorf("levelzero: extended device query failed: %v", err)
				}
			}
			b.sysmanWarned = true
		}
		// Degraded mode: no locality and no identity attributes.
		return
	}
	if !sysmanUnknown(sysman.VendorName) {
		osdev.AddInfo("LevelZeroVendor", sysman.VendorName)
	}
	if !sysmanUnknown(sysman.ModelName) {
		osdev.AddInfo("LevelZeroModel", sysman.ModelName)
	}
	if !sysmanUnknown(sysman.BrandName) {
		osdev.AddInfo("LevelZeroBrand", sysman.BrandName)
	}
	if !sysmanUnknown(sysman.SerialNumber) {
		osdev.AddInfo("LevelZeroSerialNumber", sysman.SerialNumber)
	}
	if !sysmanUnknown(sysman.BoardNumber) {
		osdev.AddInfo("LevelZeroBoardNumber", sysman.BoardNumber)
	}
}

// getQueueGroups records the command queue group attributes. Any query
// failure yields no attributes and never aborts the device.
func (b *Backend) getQueueGroups(dev DeviceHandle, osdev *topology.Node) {
	groups, err := b.stack.CommandQueueGroups(dev)
	if err != nil || len(groups) == 0 {
		return
	}
	osdev.AddInfo("LevelZeroCQGroups", strconv.Itoa(len(groups)))
	for k, group := range groups {
		osdev.AddInfo(fmt.Sprintf("LevelZeroCQGroup%d", k),
			fmt.Sprintf("%d*0x%x", group.NumQueues, group.Flags))
	}
}
