// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Process for Windows.

package system

import (
	"os"
	"syscall"
)

var kernel32 = syscall.MustLoadDLL("kernel32.dll")

func DaemonSysAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		HideWindow: true,
	}
}
func DaemonInit() {
	kernel32.MustFindProc("FreeConsole").Call()
}

// Terminate kills process pid. Windows has no SIGTERM.
func Terminate(pid int) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return process.Kill()
}
