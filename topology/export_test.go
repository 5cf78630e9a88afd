// Copyright (c) 2026 The hwloc-go Authors.
// SPDX-License-Identifier: Apache-2.0

package topology

import (
	"bytes"
	"testing"

	"github.com/onsi/gomega"
	yaml "gopkg.in/yaml.v2"
)

func TestRenderText(t *testing.T) {
	g := gomega.NewGomegaWithT(t)

	topo := New(testLog())
	slot := topo.AllocNode(ObjPCIDevice)
	slot.Name = "0000:03:00.0"
	slot.PCI = &PCIAttr{Busid: mustParse(t, "0000:03:00.0"), LinkSpeed: 25}
	topo.InsertByParent(topo.Root(), slot)

	dev := topo.AllocNode(ObjOSDevice)
	dev.Name = "ze0"
	dev.Subtype = "LevelZero"
	dev.AddInfo("Backend", "LevelZero")
	dev.AddInfo("LevelZeroDeviceType", "GPU")
	topo.InsertByParent(slot, dev)

	var buf bytes.Buffer
	g.Expect(topo.Render(&buf)).To(gomega.Succeed())
	out := buf.String()

	g.Expect(out).To(gomega.ContainSubstring("Machine"))
	g.Expect(out).To(gomega.ContainSubstring("PCIDev 0000:03:00.0 [25.00 GB/s]"))
	g.Expect(out).To(gomega.ContainSubstring("OSDev ze0 (LevelZero)"))
	g.Expect(out).To(gomega.ContainSubstring("Backend=LevelZero"))
	g.Expect(out).To(gomega.ContainSubstring("LevelZeroDeviceType=GPU"))
}

func TestExportYAML(t *testing.T) {
	g := gomega.NewGomegaWithT(t)

	topo := New(testLog())
	dev := topo.AllocNode(ObjOSDevice)
	dev.Name = "ze0"
	dev.AddInfo("Backend", "LevelZero")
	topo.InsertByParent(topo.Root(), dev)

	out, err := topo.ExportYAML()
	g.Expect(err).NotTo(gomega.HaveOccurred())

	var decoded map[string]interface{}
	g.Expect(yaml.Unmarshal(out, &decoded)).To(gomega.Succeed())
	g.Expect(decoded["kind"]).To(gomega.Equal("Machine"))

	children, ok := decoded["children"].([]interface{})
	g.Expect(ok).To(gomega.BeTrue())
	g.Expect(children).To(gomega.HaveLen(1))
}
