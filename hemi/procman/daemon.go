// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Daemon and pid file.

package procman

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hexinfra/see/hemi/common/system"
)

// daemonArgs returns args without the daemon flag.
func daemonArgs(args []string) []string {
	var kept []string
	for _, arg := range args {
		switch arg {
		case "-daemon", "--daemon", "-daemon=true", "--daemon=true":
			continue
		}
		kept = append(kept, arg)
	}
	return kept
}

// startDaemon starts the daemon process with the same args and writes its pid to pidFile.
func startDaemon(program string, pidFile string) error {
	devNull, err := os.Open(os.DevNull)
	if err != nil {
		return err
	}
	defer devNull.Close()
	newFile := func(ext string) (*os.File, error) {
		return os.OpenFile(filepath.Join(baseDir, program+ext), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	}
	outFile, err := newFile(".out")
	if err != nil {
		return err
	}
	defer outFile.Close()
	errFile, err := newFile(".err")
	if err != nil {
		return err
	}
	defer errFile.Close()

	args := daemonArgs(os.Args)
	args[0] = system.ExePath
	process, err := os.StartProcess(system.ExePath, args, &os.ProcAttr{
		Dir:   baseDir,
		Env:   append(os.Environ(), "_DAEMON_=1"),
		Files: []*os.File{devNull, outFile, errFile},
		Sys:   system.DaemonSysAttr(),
	})
	if err != nil {
		return err
	}
	defer process.Release()
	return writePidFile(pidFile, process.Pid)
}

func writePidFile(pidFile string, pid int) error {
	if err := os.MkdirAll(filepath.Dir(pidFile), 0755); err != nil {
		return err
	}
	return os.WriteFile(pidFile, []byte(strconv.Itoa(pid)), 0644)
}
func readPidFile(pidFile string) (int, error) {
	text, err := os.ReadFile(pidFile)
	if err != nil {
		return 0, fmt.Errorf("open %q failed: %w", pidFile, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(text)))
	if err != nil || pid <= 0 {
		return 0, errors.New("bad pid in " + pidFile)
	}
	return pid, nil
}

// stopDaemon terminates the daemon whose pid is in pidFile, then removes pidFile.
func stopDaemon(pidFile string) error {
	pid, err := readPidFile(pidFile)
	if err != nil {
		return err
	}
	if err := system.Terminate(pid); err != nil {
		return err
	}
	return os.Remove(pidFile)
}
