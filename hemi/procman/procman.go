// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Procman package implements the command line actions of the server: serving, daemonizing, and stopping.

package procman

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hexinfra/see/hemi"
	"github.com/hexinfra/see/hemi/common/system"
)

// Opts
type Opts struct {
	ProgramName  string // see
	ProgramTitle string // See
	DebugLevel   int
	DefaultPort  int // for the start action
}

var ( // flags
	debugLevel int
	configFile string
	listenPort int
	daemonMode bool
	pidFile    string
	baseDir    string
)

const usage = `
%s (%s)
================================================================================

  %s [ACTION] [OPTIONS]

ACTION
------

  serve        # serve vhosts in config file (default)
  start        # serve current directory with directory listing
  check        # check config file for syntax errors
  stop         # stop the daemon whose pid is in pid file
  help         # show this message
  version      # show version info

OPTIONS
-------

  -config  <config>  # path to config file (default: <base>/config.yml)
  -port    <port>    # port for the start action (default: %d)
  -daemon            # run as daemon (default: false)
  -pidfile <pidfile> # path to pid file (default: <base>/%s.pid)
  -base    <path>    # base directory (default: dir of executable, or working dir for start)
  -debug   <level>   # debug level (default: %d, means no debug info)

`

func Main(opts *Opts) {
	flag.Usage = func() {
		fmt.Printf(usage, opts.ProgramTitle, hemi.Version, opts.ProgramName, opts.DefaultPort, opts.ProgramName, opts.DebugLevel)
	}
	flag.IntVar(&debugLevel, "debug", opts.DebugLevel, "")
	flag.StringVar(&configFile, "config", "", "")
	flag.IntVar(&listenPort, "port", opts.DefaultPort, "")
	flag.BoolVar(&daemonMode, "daemon", false, "")
	flag.StringVar(&pidFile, "pidfile", "", "")
	flag.StringVar(&baseDir, "base", "", "")
	action := "serve"
	if len(os.Args) > 1 && os.Args[1] != "" && os.Args[1][0] != '-' {
		action = os.Args[1]
		flag.CommandLine.Parse(os.Args[2:])
	} else {
		flag.Parse()
	}

	switch action {
	case "help":
		flag.Usage()
	case "version":
		fmt.Println(hemi.Version)
	case "serve", "start", "check", "stop":
		hemi.SetDebugLevel(int32(debugLevel))
		setBaseDir(action)
		if pidFile == "" {
			pidFile = filepath.Join(baseDir, opts.ProgramName+".pid")
		} else if !filepath.IsAbs(pidFile) {
			pidFile = filepath.Join(baseDir, pidFile)
		}
		if action == "stop" {
			if err := stopDaemon(pidFile); err != nil {
				hemi.EnvExitln(err.Error())
			}
			return
		}

		stage, err := newStage(action)
		if action == "check" { // dry run
			if err != nil {
				fmt.Println(err.Error())
			} else {
				fmt.Println("PASS")
			}
			return
		}
		if err != nil {
			hemi.UseExitln(err.Error())
		}

		if _, ok := os.LookupEnv("_DAEMON_"); ok { // we are the daemon
			system.DaemonInit()
		} else if daemonMode { // start the daemon and exit
			if err := startDaemon(opts.ProgramName, pidFile); err != nil {
				hemi.EnvExitln(err.Error())
			}
			return
		}

		stage.Start()
		if action == "start" {
			fmt.Printf("Serving path   : %s\n", baseDir)
			fmt.Printf("Serving address: http://127.0.0.1:%d\n", listenPort)
		}
		waitSignal()
		stage.Quit()
	default:
		fmt.Printf("unknown action: %s\n", action)
		flag.Usage()
		os.Exit(hemi.CodeUse)
	}
}

func setBaseDir(action string) {
	if baseDir == "" {
		if action == "start" {
			dir, err := os.Getwd()
			if err != nil {
				hemi.EnvExitln(err.Error())
			}
			baseDir = dir
		} else {
			baseDir = system.ExeDir
		}
	} else { // baseDir is specified.
		dir, err := filepath.Abs(baseDir)
		if err != nil {
			hemi.UseExitln(err.Error())
		}
		baseDir = dir
	}
}

func newStage(action string) (*hemi.Stage, error) {
	if action == "start" {
		if listenPort < 1 || listenPort > 65535 {
			return nil, fmt.Errorf("unable to bind to port %d", listenPort)
		}
		return hemi.StageFromDir(baseDir, int32(listenPort))
	}
	config := configFile
	if config == "" {
		config = "config.yml"
	}
	return hemi.StageFromFile(baseDir, config)
}

func waitSignal() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	sig := <-signals
	if hemi.DebugLevel() >= 1 {
		hemi.Printf("received signal %s, quit\n", sig.String())
	}
}
