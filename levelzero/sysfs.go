// Copyright (c) 2026 The hwloc-go Authors.
// SPDX-License-Identifier: Apache-2.0

package levelzero

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jaypipes/pcidb"

	"github.com/dora-zhang/hwloc/base"
	"github.com/dora-zhang/hwloc/topology"
)

const sysfsPCIDevices = "/sys/bus/pci/devices"

// Intel vendor id; the sysfs stack only claims devices a Level Zero
// driver could expose.
const intelVendorID = "0x8086"

// Kernel drivers whose devices Level Zero enumerates.
var levelZeroKernelDrivers = map[string]bool{
	"i915": true,
	"xe":   true,
}

type sysfsDevice struct {
	busid topology.PCIAddress
	dir   string
	// vendorID and deviceID as sysfs reports them, e.g. "0x8086".
	vendorID string
	deviceID string
}

type sysfsDriver struct {
	name    string
	devices []sysfsDevice
}

// SysfsStack implements the Stack contract from /sys/bus/pci for Intel
// GPU devices bound to a Level Zero capable kernel driver. It can report
// bus addresses, link bandwidth and device identity, but not the
// execution-unit geometry of the basic property query; callers see that
// step degrade the same way they would with a sysman-less stack.
type SysfsStack struct {
	pciRoot string

	log         *base.LogObject
	initialized bool
	drivers     []sysfsDriver

	db       *pcidb.PCIDB
	dbLoaded bool
}

// NewSysfsStack returns a stack scanning the default sysfs location.
func NewSysfsStack() *SysfsStack {
	return &SysfsStack{pciRoot: sysfsPCIDevices}
}

// Name implements Stack.
func (s *SysfsStack) Name() string {
	return "sysfs"
}

// Init scans the PCI bus for devices this stack claims. Unreadable
// individual devices are skipped; only a missing or unreadable sysfs
// tree fails the scan. Zero matching devices is a successful scan.
func (s *SysfsStack) Init(log *base.LogObject) error {
	s.log = log
	if s.initialized {
		return nil
	}
	entries, err := os.ReadDir(s.pciRoot)
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.pciRoot, err)
	}

	byDriver := make(map[string][]sysfsDevice)
	for _, entry := range entries {
		dir := filepath.Join(s.pciRoot, entry.Name())
		dev, driver, ok := s.claimDevice(dir, entry.Name())
		if !ok {
			continue
		}
		byDriver[driver] = append(byDriver[driver], dev)
	}

	names := make([]string, 0, len(byDriver))
	for name := range byDriver {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		devices := byDriver[name]
		sort.Slice(devices, func(i, j int) bool {
			return devices[i].busid.String() < devices[j].busid.String()
		})
		s.drivers = append(s.drivers, sysfsDriver{name: name, devices: devices})
	}
	s.initialized = true
	return nil
}

// claimDevice decides whether one sysfs PCI entry belongs to this stack
// and returns its parsed form plus the owning kernel driver name.
func (s *SysfsStack) claimDevice(dir, busid string) (sysfsDevice, string, bool) {
	var dev sysfsDevice

	addr, err := topology.ParsePCIAddress(busid)
	if err != nil {
		return dev, "", false
	}
	vendor, err := readSysfsString(filepath.Join(dir, "vendor"))
	if err != nil || vendor != intelVendorID {
		return dev, "", false
	}
	class, err := readSysfsString(filepath.Join(dir, "class"))
	if err != nil || !acceleratorClass(class) {
		return dev, "", false
	}
	link, err := os.Readlink(filepath.Join(dir, "driver"))
	if err != nil {
		// Not bound to any driver; Level Zero would not see it.
		return dev, "", false
	}
	driver := filepath.Base(link)
	if !levelZeroKernelDrivers[driver] {
		return dev, "", false
	}

	dev.busid = addr
	dev.dir = dir
	dev.vendorID = vendor
	dev.deviceID, _ = readSysfsString(filepath.Join(dir, "device"))
	return dev, driver, true
}

// acceleratorClass matches display controllers and processing
// accelerators, the classes Intel compute devices enumerate under.
func acceleratorClass(class string) bool {
	return strings.HasPrefix(class, "0x03") || strings.HasPrefix(class, "0x12")
}

// Drivers implements Stack.
func (s *SysfsStack) Drivers() ([]DriverHandle, error) {
	if !s.initialized {
		return nil, ErrUninitialized
	}
	handles := make([]DriverHandle, len(s.drivers))
	for i := range s.drivers {
		handles[i] = DriverHandle{index: uint32(i)}
	}
	return handles, nil
}

// Devices implements Stack.
func (s *SysfsStack) Devices(drv DriverHandle) ([]DeviceHandle, error) {
	if !s.initialized {
		return nil, ErrUninitialized
	}
	if int(drv.index) >= len(s.drivers) {
		return nil, fmt.Errorf("no such driver instance %d", drv.index)
	}
	devices := s.drivers[drv.index].devices
	handles := make([]DeviceHandle, len(devices))
	for i := range devices {
		handles[i] = DeviceHandle{driver: drv, index: uint32(i)}
	}
	return handles, nil
}

func (s *SysfsStack) device(dev DeviceHandle) (sysfsDevice, error) {
	if !s.initialized {
		return sysfsDevice{}, ErrUninitialized
	}
	if int(dev.driver.index) >= len(s.drivers) {
		return sysfsDevice{}, fmt.Errorf("no such driver instance %d", dev.driver.index)
	}
	devices := s.drivers[dev.driver.index].devices
	if int(dev.index) >= len(devices) {
		return sysfsDevice{}, fmt.Errorf("no such device %d", dev.index)
	}
	return devices[dev.index], nil
}

// DeviceProperties implements Stack. Sysfs cannot see slice or
// execution-unit geometry, so the basic query is unsupported and the
// caller records nothing for that step.
func (s *SysfsStack) DeviceProperties(dev DeviceHandle) (DeviceProperties, error) {
	if _, err := s.device(dev); err != nil {
		return DeviceProperties{}, err
	}
	return DeviceProperties{}, ErrUnsupported
}

// SysmanDeviceProperties implements Stack using the pci.ids database for
// vendor and model names. Fields sysfs cannot provide carry the
// "unknown" sentinel, which the caller suppresses.
func (s *SysfsStack) SysmanDeviceProperties(dev DeviceHandle) (SysmanProperties, error) {
	d, err := s.device(dev)
	if err != nil {
		return SysmanProperties{}, err
	}
	props := SysmanProperties{
		VendorName:   "unknown",
		ModelName:    "unknown",
		BrandName:    "unknown",
		SerialNumber: "unknown",
		BoardNumber:  "unknown",
	}
	db := s.pcidb()
	if db == nil {
		return props, nil
	}
	vendor, found := db.Vendors[strings.TrimPrefix(d.vendorID, "0x")]
	if !found {
		return props, nil
	}
	props.VendorName = vendor.Name
	deviceID := strings.TrimPrefix(d.deviceID, "0x")
	for _, product := range vendor.Products {
		if product.ID == deviceID {
			props.ModelName = product.Name
			break
		}
	}
	return props, nil
}

func (s *SysfsStack) pcidb() *pcidb.PCIDB {
	if s.dbLoaded {
		return s.db
	}
	s.dbLoaded = true
	db, err := pcidb.New()
	if err != nil {
		if s.log != nil {
			s.log.Debugf("levelzero: no pci.ids database: %v", err)
		}
		return nil
	}
	s.db = db
	return db
}

// CommandQueueGroups implements Stack. Queue group topology is only
// visible through the vendor API, not sysfs.
func (s *SysfsStack) CommandQueueGroups(dev DeviceHandle) ([]CommandQueueGroup, error) {
	if _, err := s.device(dev); err != nil {
		return nil, err
	}
	return nil, ErrUnsupported
}

// PCIProperties implements Stack. The bus address comes from the sysfs
// directory name, the peak bandwidth from the negotiated link speed and
// width when both parse.
func (s *SysfsStack) PCIProperties(dev DeviceHandle) (PCIProperties, error) {
	d, err := s.device(dev)
	if err != nil {
		return PCIProperties{}, err
	}
	props := PCIProperties{Address: d.busid}
	speed, err1 := readSysfsString(filepath.Join(d.dir, "current_link_speed"))
	width, err2 := readSysfsString(filepath.Join(d.dir, "current_link_width"))
	if err1 == nil && err2 == nil {
		props.MaxBandwidth = linkBandwidth(speed, width)
	}
	return props, nil
}

// linkBandwidth converts a sysfs link speed string such as
// "16.0 GT/s PCIe" and a lane count into bytes per second, accounting
// for 8b/10b encoding below 8 GT/s and 128b/130b from 8 GT/s on.
// Returns 0 when either value does not parse.
func linkBandwidth(speed, width string) int64 {
	fields := strings.Fields(speed)
	if len(fields) < 2 || fields[1] != "GT/s" {
		return 0
	}
	gts, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || gts <= 0 {
		return 0
	}
	lanes, err := strconv.Atoi(strings.TrimSpace(width))
	if err != nil || lanes <= 0 {
		return 0
	}
	encoding := 128.0 / 130.0
	if gts < 8 {
		encoding = 0.8
	}
	return int64(gts * 1e9 * encoding / 8 * float64(lanes))
}

func readSysfsString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
