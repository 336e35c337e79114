// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Basic elements that exist during the whole process.

package hemi

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"
)

const Version = "0.3.0"

// ServerName is sent in the Server header of every response.
const ServerName = "see"

var _debugLevel atomic.Int32

func DebugLevel() int32         { return _debugLevel.Load() }
func SetDebugLevel(level int32) { _debugLevel.Store(level) }

func Println(v ...any) {
	fmt.Print(time.Now().Format("[2006-01-02 15:04:05] "))
	fmt.Println(v...)
}
func Printf(f string, v ...any) {
	fmt.Print(time.Now().Format("[2006-01-02 15:04:05] "))
	fmt.Printf(f, v...)
}

// StageFromText creates a stage from config text. Relative paths in config are resolved against configDir.
func StageFromText(configText string, configDir string) (*Stage, error) {
	c := configurator{baseDir: configDir}
	return c.stageFromText(configText)
}

// StageFromFile creates a stage from a config file. A relative configFile is resolved against configBase, and
// relative paths in config are resolved against the directory of configFile.
func StageFromFile(configBase string, configFile string) (*Stage, error) {
	if !filepath.IsAbs(configFile) {
		configFile = filepath.Join(configBase, configFile)
	}
	c := configurator{baseDir: filepath.Dir(configFile)}
	return c.stageFromFile(configFile)
}

// StageFromDir creates a stage that serves dir on port, with directory listing enabled.
func StageFromDir(dir string, port int32) (*Stage, error) {
	webRoot, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	vhost := new(Vhost)
	vhost.name = "start"
	vhost.port = port
	vhost.webRoot = webRoot
	vhost.methods = defaultMethods
	vhost.listing = &ListingOption{ShowTime: true, ShowSize: true}
	stage := newStage()
	if err := stage.addVhost(vhost); err != nil {
		return nil, err
	}
	return stage, nil
}

const ( // exit codes
	CodeBug = 20
	CodeUse = 21
	CodeEnv = 22
)

func BugExitln(v ...any) { _exitln(CodeBug, "[BUG] ", v...) }
func UseExitln(v ...any) { _exitln(CodeUse, "[USE] ", v...) }
func EnvExitln(v ...any) { _exitln(CodeEnv, "[ENV] ", v...) }

func _exitln(exitCode int, prefix string, v ...any) {
	fmt.Fprint(os.Stderr, prefix)
	fmt.Fprintln(os.Stderr, v...)
	os.Exit(exitCode)
}
