// Copyright (c) 2026 The hwloc-go Authors.
// SPDX-License-Identifier: Apache-2.0

package levelzero

import (
	"errors"

	"github.com/dora-zhang/hwloc/base"
	"github.com/dora-zhang/hwloc/topology"
)

// Errors a Stack implementation may return. Discovery treats every stack
// error as a reduction of what it can see, never as fatal.
var (
	// ErrUnsupported means the stack cannot answer this query at all,
	// e.g. a sysfs-backed stack asked for execution-unit geometry.
	ErrUnsupported = errors.New("query not supported by driver stack")
	// ErrUninitialized means Init was not called or failed.
	ErrUninitialized = errors.New("driver stack not initialized")
)

// DriverHandle is a non-owning reference to one loaded driver instance.
// The value is only meaningful to the Stack that produced it; the stack
// owns the underlying driver for the life of the process.
type DriverHandle struct {
	index uint32
}

// Index returns the driver's position in enumeration order.
func (h DriverHandle) Index() uint32 { return h.index }

// NewDriverHandle is for Stack implementations; discovery code only
// receives handles, it never mints them.
func NewDriverHandle(index uint32) DriverHandle {
	return DriverHandle{index: index}
}

// DeviceHandle is a non-owning reference to one accelerator device scoped
// to a driver instance.
type DeviceHandle struct {
	driver DriverHandle
	index  uint32
}

// Driver returns the owning driver instance.
func (h DeviceHandle) Driver() DriverHandle { return h.driver }

// Index returns the device's position within its driver.
func (h DeviceHandle) Index() uint32 { return h.index }

// NewDeviceHandle is for Stack implementations.
func NewDeviceHandle(drv DriverHandle, index uint32) DeviceHandle {
	return DeviceHandle{driver: drv, index: index}
}

// DeviceKind is the fixed device classification of the vendor API.
type DeviceKind uint32

const (
	// KindUnknown is any value outside the fixed enumeration.
	KindUnknown DeviceKind = iota
	// KindGPU is a general purpose compute device.
	KindGPU
	// KindCPU is a general CPU exposed through the accelerator API.
	KindCPU
	// KindFPGA is reconfigurable logic.
	KindFPGA
	// KindMCA is a multi-core array.
	KindMCA
	// KindVPU is a vision processing unit.
	KindVPU
)

// DeviceProperties is the basic property snapshot of a device.
type DeviceProperties struct {
	Kind                 DeviceKind
	NumSlices            uint32
	NumSubslicesPerSlice uint32
	NumEUsPerSubslice    uint32
	NumThreadsPerEU      uint32
}

// SysmanProperties is the extended, management-plane property snapshot.
// Fields holding the case-insensitive sentinel "unknown" are treated as
// absent and never recorded on a node.
type SysmanProperties struct {
	VendorName   string
	ModelName    string
	BrandName    string
	SerialNumber string
	BoardNumber  string
}

// CommandQueueGroup describes one command submission queue group.
type CommandQueueGroup struct {
	NumQueues uint32
	Flags     uint64
}

// PCIProperties is the management-plane bus information of a device.
type PCIProperties struct {
	Address topology.PCIAddress
	// MaxBandwidth is the peak link bandwidth in bytes per second.
	// Zero or negative means not reported.
	MaxBandwidth int64
}

// Stack is the fixed vendor driver-stack contract. The underlying API
// enumerates with a count-then-fill double call; implementations hide
// that behind single calls returning owned slices. All calls may block on
// the hardware driver; there is no cancellation.
//
// The stack is process wide and may have been initialized by code outside
// this package with different management-plane settings; implementations
// must tolerate that and must not assume exclusive ownership.
type Stack interface {
	// Name identifies the implementation in diagnostics.
	Name() string
	// Init initializes the driver stack. Safe to call when another
	// component already initialized it.
	Init(log *base.LogObject) error
	// Drivers enumerates driver instances in stack-defined order.
	Drivers() ([]DriverHandle, error)
	// Devices enumerates the devices of one driver instance in
	// stack-defined order.
	Devices(drv DriverHandle) ([]DeviceHandle, error)
	// DeviceProperties returns the basic property snapshot.
	DeviceProperties(dev DeviceHandle) (DeviceProperties, error)
	// SysmanDeviceProperties returns the extended snapshot; fails when
	// the management plane was not enabled early enough.
	SysmanDeviceProperties(dev DeviceHandle) (SysmanProperties, error)
	// CommandQueueGroups returns the device's queue group descriptors.
	CommandQueueGroups(dev DeviceHandle) ([]CommandQueueGroup, error)
	// PCIProperties returns the device's bus address and link bandwidth
	// through the management plane.
	PCIProperties(dev DeviceHandle) (PCIProperties, error)
}
