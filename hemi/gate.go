// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// HTTP gates. One gate listens on the port of one vhost group.

package hemi

import (
	"context"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/hexinfra/see/hemi/common/system"
)

// httpGate
type httpGate struct {
	// Assocs
	stage *Stage
	group *VhostGroup
	// States
	address  string // ":8080"
	listener *net.TCPListener
	shut     atomic.Bool
	conns    sync.WaitGroup // active conns
}

func (g *httpGate) init(stage *Stage, group *VhostGroup) {
	g.stage = stage
	g.group = group
	g.address = ":" + strconv.Itoa(int(group.port))
}

func (g *httpGate) Open() error {
	listenConfig := new(net.ListenConfig)
	listenConfig.Control = func(network string, address string, rawConn syscall.RawConn) error {
		return system.SetDeferAccept(rawConn)
	}
	listener, err := listenConfig.Listen(context.Background(), "tcp", g.address)
	if err != nil {
		return err
	}
	g.listener = listener.(*net.TCPListener)
	if DebugLevel() >= 1 {
		Printf("httpGate address=%s opened!\n", g.listener.Addr().String())
	}
	return nil
}
func (g *httpGate) Shut() error {
	g.shut.Store(true)
	return g.listener.Close()
}
func (g *httpGate) IsShut() bool { return g.shut.Load() }

// Addr returns the address the gate is listening on.
func (g *httpGate) Addr() net.Addr { return g.listener.Addr() }

func (g *httpGate) serveTCP() { // runner
	connID := int64(0)
	for {
		tcpConn, err := g.listener.AcceptTCP()
		if err != nil {
			if g.IsShut() {
				break
			} else {
				if DebugLevel() >= 2 {
					Printf("httpGate address=%s accept error: %s\n", g.address, err.Error())
				}
				continue
			}
		}
		g.conns.Add(1)
		servConn := getServerConn(connID, g, tcpConn)
		go servConn.serve() // servConn is put to pool in serve()
		connID++
	}
	g.conns.Wait()
	if DebugLevel() >= 2 {
		Printf("httpGate address=%s done\n", g.address)
	}
	g.stage.gateDone()
}

func (g *httpGate) onConnClosed() { g.conns.Done() }
