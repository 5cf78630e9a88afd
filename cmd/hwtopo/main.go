// Copyright (c) 2026 The hwloc-go Authors.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/dora-zhang/hwloc/cmd/hwtopo/cmd"
)

func main() {
	cmd.Execute()
}
