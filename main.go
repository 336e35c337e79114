// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// See, a static web server with virtual hosts.

package main

import (
	"github.com/hexinfra/see/hemi/procman"

	_ "github.com/hexinfra/see/hemi/builtin" // all builtin components
)

func main() {
	procman.Main(&procman.Opts{
		ProgramName:  "see",
		ProgramTitle: "See",
		DebugLevel:   0,
		DefaultPort:  80,
	})
}
