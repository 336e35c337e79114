// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Stage is the running environment of vhosts. It is built once and never changes after that.

package hemi

import (
	"fmt"
	"net"
	"sync"
)

// Stage
type Stage struct {
	// Assocs
	groups map[int32]*VhostGroup // indexed by port
	gates  []*httpGate           // one gate per group
	// States
	ports   []int32  // in config order
	loggers []Logger // owned loggers. closed on Quit()
	subs    sync.WaitGroup
	quit    sync.Once
}

func newStage() *Stage {
	s := new(Stage)
	s.groups = make(map[int32]*VhostGroup)
	return s
}

// addVhost puts vhost into the group of its port.
func (s *Stage) addVhost(vhost *Vhost) error {
	group, ok := s.groups[vhost.port]
	if !ok {
		group = newVhostGroup(vhost.port)
		s.groups[vhost.port] = group
		s.ports = append(s.ports, vhost.port)
	}
	return group.addVhost(vhost)
}
func (s *Stage) addLogger(logger Logger) { s.loggers = append(s.loggers, logger) }

func (s *Stage) Ports() []int32              { return s.ports }
func (s *Stage) Group(port int32) *VhostGroup { return s.groups[port] }

// Open opens one gate for each group. If any gate fails, gates opened are shut.
func (s *Stage) Open() error {
	for _, port := range s.ports {
		gate := new(httpGate)
		gate.init(s, s.groups[port])
		if err := gate.Open(); err != nil {
			for _, opened := range s.gates {
				opened.Shut()
			}
			s.gates = nil
			return fmt.Errorf("binding %s failed: %w", gate.address, err)
		}
		s.gates = append(s.gates, gate)
	}
	return nil
}

// Serve starts the gates opened by Open. It doesn't block.
func (s *Stage) Serve() {
	for _, gate := range s.gates {
		s.subs.Add(1)
		go gate.serveTCP()
	}
}

// Start opens and serves the stage. A gate that can't be opened is fatal.
func (s *Stage) Start() {
	if err := s.Open(); err != nil {
		EnvExitln(err.Error())
	}
	if DebugLevel() >= 1 {
		Printf("stage started with %d vhost groups\n", len(s.gates))
	}
	s.Serve()
}

// Addr returns the listening address of the gate of port. It's nil if the gate is not opened.
func (s *Stage) Addr(port int32) net.Addr {
	for _, gate := range s.gates {
		if gate.group.port == port {
			return gate.Addr()
		}
	}
	return nil
}

// Quit shuts all gates, waits for their connections to end, and closes loggers.
func (s *Stage) Quit() {
	s.quit.Do(func() {
		for _, gate := range s.gates {
			gate.Shut()
		}
		s.subs.Wait()
		for _, logger := range s.loggers {
			logger.Close()
		}
		if DebugLevel() >= 1 {
			Println("stage quit")
		}
	})
}

func (s *Stage) gateDone() { s.subs.Done() }
