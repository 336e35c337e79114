// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package procman

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDaemonArgs(t *testing.T) {
	args := daemonArgs([]string{"see", "serve", "-daemon", "-config", "a.yml", "--daemon=true", "-pidfile", "see.pid"})
	want := []string{"see", "serve", "-config", "a.yml", "-pidfile", "see.pid"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("args=%v", args)
	}
}
func TestPidFile(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "run", "see.pid")
	if err := writePidFile(pidFile, 12345); err != nil {
		t.Fatal(err)
	}
	pid, err := readPidFile(pidFile)
	if err != nil || pid != 12345 {
		t.Errorf("pid=%d err=%v", pid, err)
	}

	for _, text := range []string{"", "abc", "-1", "0"} {
		if err := os.WriteFile(pidFile, []byte(text), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := readPidFile(pidFile); err == nil {
			t.Errorf("text=%q should fail", text)
		}
	}
	if err := stopDaemon(pidFile); err == nil {
		t.Error("stopping with a bad pid must fail")
	}
	if _, err := os.Stat(pidFile); err != nil {
		t.Error("pid file must be kept on failure")
	}
	if err := stopDaemon(filepath.Join(t.TempDir(), "none.pid")); err == nil {
		t.Error("missing pid file must fail")
	}
}
func TestNewStage(t *testing.T) {
	defer func(dir string, config string, port int) {
		baseDir, configFile, listenPort = dir, config, port
	}(baseDir, configFile, listenPort)

	baseDir = t.TempDir()
	for _, port := range []int{0, -1, 65536} {
		listenPort = port
		if _, err := newStage("start"); err == nil {
			t.Errorf("port %d should fail", port)
		}
	}
	listenPort = 8080
	stage, err := newStage("start")
	if err != nil {
		t.Fatal(err)
	}
	if ports := stage.Ports(); len(ports) != 1 || ports[0] != 8080 {
		t.Errorf("ports=%v", ports)
	}

	configFile = ""
	if _, err := newStage("serve"); err == nil {
		t.Error("missing config.yml should fail")
	}
	config := "- server:\n    listen: 8081\n    root: .\n"
	if err := os.WriteFile(filepath.Join(baseDir, "config.yml"), []byte(config), 0644); err != nil {
		t.Fatal(err)
	}
	stage, err = newStage("check")
	if err != nil {
		t.Fatal(err)
	}
	if group := stage.Group(8081); group == nil {
		t.Error("group 8081 not found")
	}
	configFile = filepath.Join(baseDir, "config.yml")
	if _, err := newStage("serve"); err != nil {
		t.Errorf("absolute config: %v", err)
	}
}
