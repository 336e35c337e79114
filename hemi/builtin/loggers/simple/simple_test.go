// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package simple

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/hexinfra/see/hemi"
)

func TestSimpleLogger(t *testing.T) {
	target := filepath.Join(t.TempDir(), "access.log")
	l := newSimpleLogger(&LogConfig{Target: target, BufSize: 16})
	if l == nil {
		t.Fatal("cannot create logger")
	}
	l.Logf("%s %d %s\n", "GET", 200, "/index.html")
	l.Logf("%s %d %s\n", "HEAD", 404, "/a-very-long-path/that/exceeds/the/buffer")
	l.Logf("")
	l.Close()

	logs, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	want := "GET 200 /index.html\nHEAD 404 /a-very-long-path/that/exceeds/the/buffer\n"
	if string(logs) != want {
		t.Errorf("logs=%q", logs)
	}
}
func TestSimpleLoggerAppends(t *testing.T) {
	target := filepath.Join(t.TempDir(), "access.log")
	for i := 0; i < 2; i++ {
		l := newSimpleLogger(&LogConfig{Target: target, BufSize: 4096})
		l.Logf("GET %d /\n", 200+i)
		l.Close()
	}
	logs, _ := os.ReadFile(target)
	if lines := strings.Split(strings.TrimSpace(string(logs)), "\n"); len(lines) != 2 || lines[1] != "GET 201 /" {
		t.Errorf("logs=%q", logs)
	}
}
func TestSimpleLoggerBadTarget(t *testing.T) {
	if l := newSimpleLogger(&LogConfig{Target: filepath.Join(t.TempDir(), "none", "access.log")}); l != nil {
		t.Error("nil expected")
	}
}
