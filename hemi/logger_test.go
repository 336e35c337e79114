// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package hemi

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestLoggerRegistry(t *testing.T) {
	for _, sign := range []string{"noop", "file"} {
		if !loggerRegistered(sign) {
			t.Errorf("logger %s is not registered", sign)
		}
	}
	if _, err := createLogger("none", &LogConfig{}); err == nil {
		t.Error("unknown logger must fail")
	}
	logger, err := createLogger("noop", &LogConfig{})
	if err != nil {
		t.Fatal(err)
	}
	logger.Logf("%s %d %s\n", "GET", 200, "/")
	logger.Close()
}

var fileLogLine = regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3}\] (GET|HEAD) \d{3} /\S*$`)

func TestFileLogger(t *testing.T) {
	target := filepath.Join(t.TempDir(), "access.log")
	logger, err := createLogger("file", &LogConfig{Target: target})
	if err != nil {
		t.Fatal(err)
	}
	logger.Logf("%s %d %s\n", "GET", 200, "/index.html")
	time.Sleep(150 * time.Millisecond) // let the saver switch queues once
	logger.Logf("%s %d %s\n", "HEAD", 404, "/none")
	logger.Close()
	logger.Logf("%s %d %s\n", "GET", 200, "/dropped")

	logs, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(string(logs), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("logs=%q", logs)
	}
	for _, line := range lines {
		if !fileLogLine.MatchString(line) {
			t.Errorf("bad line %q", line)
		}
	}
	if !strings.HasSuffix(lines[0], "] GET 200 /index.html") || !strings.HasSuffix(lines[1], "] HEAD 404 /none") {
		t.Errorf("lines=%v", lines)
	}
}
func TestFileLoggerRotate(t *testing.T) {
	target := filepath.Join(t.TempDir(), "access.log")
	logger := newFileLogger(target, "day")
	logger.Logf("GET 200 /\n")
	logger.Close()
	logger.Close() // closing twice is harmless

	// the day may change between Logf and Close
	matches, _ := filepath.Glob(target + ".????-??-??")
	if len(matches) != 1 {
		t.Fatalf("matches=%v", matches)
	}
	if _, err := os.Stat(target); err == nil {
		t.Error("unrotated file must not exist")
	}
}
func TestLogQueue(t *testing.T) {
	q := newLogQueue(1)
	big := strings.Repeat("x", 40000) // needs 3 blocks
	q.log(big)
	if q.nBlocks < 3 {
		t.Errorf("nBlocks=%d", q.nBlocks)
	}
	path := filepath.Join(t.TempDir(), "q.log")
	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	q.saveTo(file)
	file.Close()
	if !q.isEmpty || q.free != q.head {
		t.Error("queue must be empty after save")
	}
	if logs, _ := os.ReadFile(path); string(logs) != big {
		t.Errorf("saved %d bytes", len(logs))
	}
}
