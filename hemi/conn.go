// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Server-side connections. Each connection serves exactly one exchan and is then closed.

package hemi

import (
	"net"
	"sync"
	"time"
)

// poolServerConn is the server-side connection pool.
var poolServerConn sync.Pool

func getServerConn(id int64, gate *httpGate, tcpConn *net.TCPConn) *serverConn {
	var servConn *serverConn
	if x := poolServerConn.Get(); x == nil {
		servConn = new(serverConn)
	} else {
		servConn = x.(*serverConn)
	}
	servConn.onGet(id, gate, tcpConn)
	return servConn
}
func putServerConn(servConn *serverConn) {
	servConn.onPut()
	poolServerConn.Put(servConn)
}

// serverConn is the server-side HTTP/1.1 connection.
type serverConn struct {
	// Assocs
	request  Request
	response Response
	// Conn states (stocks)
	input [_512]byte // the only read goes here
	// Conn states (non-zeros)
	id      int64
	gate    *httpGate
	tcpConn *net.TCPConn
	// Conn states (zeros)
	truncated bool // input was filled up, so the client may still be sending
}

func (c *serverConn) onGet(id int64, gate *httpGate, tcpConn *net.TCPConn) {
	c.id = id
	c.gate = gate
	c.tcpConn = tcpConn
	c.request.onUse()
}
func (c *serverConn) onPut() {
	c.request.onEnd()
	c.response.onEnd()
	c.gate = nil
	c.tcpConn = nil
	c.truncated = false
}

func (c *serverConn) serve() { // runner
	gate := c.gate
	defer func() {
		if x := recover(); x != nil {
			if DebugLevel() >= 1 {
				Printf("conn=%d port=%d panic: %v\n", c.id, gate.group.port, x)
			}
		}
		c.closeConn()
		putServerConn(c)
		gate.onConnClosed()
	}()

	n, err := c.tcpConn.Read(c.input[:])
	if n == 0 {
		if err != nil && DebugLevel() >= 2 {
			Printf("conn=%d read error: %s\n", c.id, err.Error())
		}
		return
	}
	c.truncated = n == len(c.input)
	if err := serveExchan(gate.group, c.input[:n], &c.request, &c.response, c.tcpConn); err != nil {
		if DebugLevel() >= 2 {
			Printf("conn=%d exchan: %s\n", c.id, err.Error())
		}
	}
}

// closeConn closes the connection. If the client may still be sending, the write side is closed first and the
// remaining input is drained for a while, so the client gets the response instead of a reset.
func (c *serverConn) closeConn() {
	if c.truncated {
		if c.tcpConn.CloseWrite() == nil && c.tcpConn.SetReadDeadline(time.Now().Add(time.Second)) == nil {
			for {
				if _, err := c.tcpConn.Read(c.input[:]); err != nil {
					break
				}
			}
		}
	}
	c.tcpConn.Close()
}
