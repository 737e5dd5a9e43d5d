// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/mkarppinen/vanpaikka/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
