// Copyright (c) 2026 The hwloc-go Authors.
// SPDX-License-Identifier: Apache-2.0

// Package topology holds the system topology tree that discovery backends
// populate: a Machine root, PCI bus-slot and bridge nodes, and OS-device
// leaves for peripherals such as compute accelerators.
package topology

import (
	"os"
	"strconv"

	"github.com/dora-zhang/hwloc/base"
)

// ObjKind classifies a topology node.
type ObjKind int

const (
	// ObjMachine is the root of the tree.
	ObjMachine ObjKind = iota
	// ObjBridge is a host or PCI bridge with a downstream bus range.
	ObjBridge
	// ObjPCIDevice is a physical bus-device slot.
	ObjPCIDevice
	// ObjOSDevice is a leaf for a non-CPU/memory peripheral.
	ObjOSDevice
)

func (k ObjKind) String() string {
	switch k {
	case ObjMachine:
		return "Machine"
	case ObjBridge:
		return "Bridge"
	case ObjPCIDevice:
		return "PCIDev"
	case ObjOSDevice:
		return "OSDev"
	default:
		return "Unknown"
	}
}

// OSDevType classifies an OS-device leaf.
type OSDevType int

const (
	// OSDevNone is the zero value for nodes which are not OS devices.
	OSDevNone OSDevType = iota
	// OSDevCoproc marks a compute accelerator.
	OSDevCoproc
	// OSDevGPU marks a display device.
	OSDevGPU
	// OSDevNetwork marks a network interface.
	OSDevNetwork
)

// TypeFilter is the caller's keep policy for one node kind.
type TypeFilter int

const (
	// KeepAll keeps every node of the kind.
	KeepAll TypeFilter = iota
	// KeepNone excludes the kind entirely; backends must not even probe
	// for such nodes.
	KeepNone
	// KeepImportant keeps the kind but allows backends to drop noise.
	KeepImportant
)

// Attr is one string key/value recorded on a node. Attributes keep their
// insertion order so that rendering a tree is deterministic.
type Attr struct {
	Key   string
	Value string
}

// Node is one vertex of the topology tree. Nodes are created through
// Topology.AllocNode, filled in by a backend and then handed over to the
// tree with InsertByParent; after insertion the backend must not touch
// them again.
type Node struct {
	Kind      ObjKind
	Name      string
	Subtype   string
	OSDevType OSDevType
	// PCI is set on ObjPCIDevice and ObjBridge nodes.
	PCI      *PCIAttr
	Parent   *Node
	Children []*Node

	attrs []Attr
}

// AddInfo records an attribute on the node. Duplicate keys are allowed,
// matching how repeated discovery info is stored.
func (n *Node) AddInfo(key, value string) {
	n.attrs = append(n.attrs, Attr{Key: key, Value: value})
}

// Info returns the first attribute recorded under key.
func (n *Node) Info(key string) (string, bool) {
	for _, a := range n.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Attrs returns the attributes in insertion order.
func (n *Node) Attrs() []Attr {
	return n.attrs
}

// Topology is one system topology tree plus the policy knobs backends
// consult while populating it. It is not safe for concurrent discovery
// passes; callers serialize topology builds.
type Topology struct {
	log        *base.LogObject
	root       *Node
	filters    map[ObjKind]TypeFilter
	hideErrors bool
	inserted   map[*Node]bool
}

// HideErrorsEnv suppresses backend diagnostics when set to a non-zero
// value, mirroring the suppression knob of the original C library.
const HideErrorsEnv = "HWLOC_HIDE_ERRORS"

// New creates a topology with a bare Machine root.
func New(log *base.LogObject) *Topology {
	hide := false
	if env := os.Getenv(HideErrorsEnv); env != "" {
		if v, err := strconv.Atoi(env); err == nil && v != 0 {
			hide = true
		}
	}
	t := &Topology{
		log:        log,
		filters:    make(map[ObjKind]TypeFilter),
		hideErrors: hide,
		inserted:   make(map[*Node]bool),
	}
	t.root = &Node{Kind: ObjMachine}
	t.inserted[t.root] = true
	return t
}

// Log returns the log object the topology was created with.
func (t *Topology) Log() *base.LogObject {
	return t.log
}

// Root returns the Machine node.
func (t *Topology) Root() *Node {
	return t.root
}

// TypeFilter returns the keep policy for the given node kind.
func (t *Topology) TypeFilter(kind ObjKind) TypeFilter {
	return t.filters[kind]
}

// SetTypeFilter sets the keep policy for the given node kind. The root
// Machine node is always kept.
func (t *Topology) SetTypeFilter(kind ObjKind, filter TypeFilter) {
	if kind == ObjMachine {
		return
	}
	t.filters[kind] = filter
}

// HideErrors reports whether backend diagnostics should be suppressed.
func (t *Topology) HideErrors() bool {
	return t.hideErrors
}

// SetHideErrors overrides the environment-derived suppression flag.
func (t *Topology) SetHideErrors(hide bool) {
	t.hideErrors = hide
}

// AllocNode returns a new detached node of the given kind. The node is not
// part of the tree until InsertByParent is called.
func (t *Topology) AllocNode(kind ObjKind) *Node {
	return &Node{Kind: kind}
}

// InsertByParent attaches node under parent. Children keep insertion
// order. Inserting the same node twice is ignored with a diagnostic; the
// tree owns the node from the first insertion on.
func (t *Topology) InsertByParent(parent, node *Node) {
	if parent == nil {
		parent = t.root
	}
	if t.inserted[node] {
		if !t.hideErrors {
			t.log.Warnf("topology: ignoring second insertion of node %s", node.Name)
		}
		return
	}
	node.Parent = parent
	parent.Children = append(parent.Children, node)
	t.inserted[node] = true
}

// Walk visits every inserted node in depth-first order, parents before
// children.
func (t *Topology) Walk(visit func(*Node)) {
	var walk func(*Node)
	walk = func(n *Node) {
		visit(n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.root)
}
