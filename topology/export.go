// Copyright (c) 2026 The hwloc-go Authors.
// SPDX-License-Identifier: Apache-2.0

package topology

import (
	"fmt"
	"io"
	"strings"

	yaml "gopkg.in/yaml.v2"
)

// Render writes an indented text rendering of the tree, one node per
// line, attributes in insertion order.
func (t *Topology) Render(w io.Writer) error {
	var render func(n *Node, depth int) error
	render = func(n *Node, depth int) error {
		indent := strings.Repeat("  ", depth)
		label := n.Kind.String()
		if n.Name != "" {
			label += " " + quoteIfEmpty(n.Name)
		}
		if n.Subtype != "" {
			label += fmt.Sprintf(" (%s)", n.Subtype)
		}
		if n.PCI != nil && n.PCI.LinkSpeed > 0 {
			label += fmt.Sprintf(" [%.2f GB/s]", n.PCI.LinkSpeed)
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", indent, label); err != nil {
			return err
		}
		for _, a := range n.attrs {
			if _, err := fmt.Fprintf(w, "%s  %s=%s\n", indent, a.Key, a.Value); err != nil {
				return err
			}
		}
		for _, c := range n.Children {
			if err := render(c, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return render(t.root, 0)
}

func quoteIfEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return fmt.Sprintf("%q", s)
	}
	return s
}

// yamlNode mirrors Node for export without parent backlinks.
type yamlNode struct {
	Kind     string        `yaml:"kind"`
	Name     string        `yaml:"name,omitempty"`
	Subtype  string        `yaml:"subtype,omitempty"`
	Busid    string        `yaml:"busid,omitempty"`
	Link     float32       `yaml:"linkSpeedGBs,omitempty"`
	Attrs    yaml.MapSlice `yaml:"attributes,omitempty"`
	Children []*yamlNode   `yaml:"children,omitempty"`
}

func exportNode(n *Node) *yamlNode {
	out := &yamlNode{
		Kind:    n.Kind.String(),
		Name:    n.Name,
		Subtype: n.Subtype,
	}
	if n.PCI != nil {
		out.Busid = n.PCI.Busid.String()
		out.Link = n.PCI.LinkSpeed
	}
	for _, a := range n.attrs {
		out.Attrs = append(out.Attrs, yaml.MapItem{Key: a.Key, Value: a.Value})
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, exportNode(c))
	}
	return out
}

// ExportYAML exports the whole tree as YAML, attributes kept in
// insertion order.
func (t *Topology) ExportYAML() ([]byte, error) {
	return yaml.Marshal(exportNode(t.root))
}
