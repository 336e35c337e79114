// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// A simple logger. Logs are sent to a saver goroutine through a channel and written in batches.

package simple

import (
	"fmt"
	"os"

	. "github.com/hexinfra/see/hemi"
)

func init() {
	RegisterLogger("simple", func(logConfig *LogConfig) Logger {
		if l := newSimpleLogger(logConfig); l != nil {
			return l
		}
		return nil // a typed nil is not a nil Logger
	})
}

func newSimpleLogger(logConfig *LogConfig) *simpleLogger {
	logFile, err := os.OpenFile(logConfig.Target, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil
	}
	l := new(simpleLogger)
	l.config = logConfig
	l.file = logFile
	l.queue = make(chan string)
	l.done = make(chan struct{})
	l.buffer = make([]byte, logConfig.BufSize)
	l.size = len(l.buffer)
	l.used = 0
	go l.saver()
	return l
}

// simpleLogger implements Logger.
type simpleLogger struct {
	config *LogConfig
	file   *os.File
	queue  chan string
	done   chan struct{}
	buffer []byte
	size   int
	used   int
}

func (l *simpleLogger) Logf(f string, v ...any) {
	if s := fmt.Sprintf(f, v...); s != "" {
		l.queue <- s
	}
}

// Close flushes buffered logs and closes the file. It must be called only once, after the last Logf.
func (l *simpleLogger) Close() {
	l.queue <- ""
	<-l.done
}

func (l *simpleLogger) saver() { // runner
	defer close(l.done)
	for {
		s := <-l.queue
		if s == "" {
			goto over
		}
		l.write(s)
	more:
		for {
			select {
			case s = <-l.queue:
				if s == "" {
					goto over
				}
				l.write(s)
			default:
				l.clear()
				break more
			}
		}
	}
over:
	l.clear()
	l.file.Close()
}
func (l *simpleLogger) write(s string) {
	n := len(s)
	if n >= l.size {
		l.clear()
		l.flush([]byte(s))
		return
	}
	w := copy(l.buffer[l.used:], s)
	l.used += w
	if l.used == l.size {
		l.clear()
		if n -= w; n > 0 {
			copy(l.buffer, s[w:])
			l.used = n
		}
	}
}
func (l *simpleLogger) clear() {
	if l.used > 0 {
		l.flush(l.buffer[:l.used])
		l.used = 0
	}
}
func (l *simpleLogger) flush(logs []byte) {
	l.file.Write(logs)
}
