// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

//go:build !windows

// Process for Unix-like platforms.

package system

import (
	"syscall"
)

func DaemonSysAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setsid: true,
	}
}
func DaemonInit() {
}

// Terminate asks process pid to exit.
func Terminate(pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}
