// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// File logger. Logs are put into one of two queues while the other one is being saved to file.

package hemi

import (
	"fmt"
	"os"
	"sync"
	"time"
)

func init() {
	RegisterLogger("file", func(config *LogConfig) Logger {
		return newFileLogger(config.Target, config.Rotate)
	})
}

const fileLoggerTimeFormat = "[2006-01-02 15:04:05.000] "

// fileLogger implements Logger.
type fileLogger struct {
	// States
	filePath string   // file prefix indeed
	rotate   string   // "", "day", "hour"
	cantOpen bool     // failed to open/create the file?
	absPath  string   // absolute file path (with suffix)
	osFile   *os.File // opened file cache for absPath
	done     chan struct{}

	mutex    sync.Mutex // protects following queues
	queueOne *logQueue
	queueTwo *logQueue
	qCurrent *logQueue // nil if closed
	final    *logQueue // the final queue on close
}

func newFileLogger(filePath string, rotate string) *fileLogger {
	l := new(fileLogger)
	l.filePath = filePath
	l.rotate = rotate
	l.done = make(chan struct{})
	l.queueOne = newLogQueue(8)
	l.queueTwo = newLogQueue(8)
	l.qCurrent = l.queueOne
	go l.saver()
	return l
}

func (l *fileLogger) Logf(f string, v ...any) {
	s := fmt.Sprintf(f, v...)
	now := time.Now().Format(fileLoggerTimeFormat)
	l.mutex.Lock()
	if l.qCurrent != nil {
		l.qCurrent.log(now)
		l.qCurrent.log(s)
	}
	l.mutex.Unlock()
}

// Close saves pending logs and closes the file. Logs after Close are dropped.
func (l *fileLogger) Close() {
	l.mutex.Lock()
	if l.qCurrent == nil { // already closed
		l.mutex.Unlock()
		return
	}
	l.final = l.qCurrent
	l.qCurrent = nil
	l.mutex.Unlock()
	<-l.done
}

func (l *fileLogger) saver() { // runner
	defer close(l.done)
	var dirty *logQueue
	for {
		time.Sleep(97 * time.Millisecond)

		// Switch current queue between queue one and queue two
		closed := false
		l.mutex.Lock()
		if l.qCurrent == l.queueOne {
			l.qCurrent = l.queueTwo
			dirty = l.queueOne
		} else if l.qCurrent == l.queueTwo {
			l.qCurrent = l.queueOne
			dirty = l.queueTwo
		} else { // closed
			closed = true
		}
		l.mutex.Unlock()

		if closed {
			l.save(l.final, true)
			return
		}
		if !dirty.isEmpty {
			l.save(dirty, false)
		}
	}
}

func (l *fileLogger) save(queue *logQueue, forceClose bool) {
	if l.cantOpen {
		return
	}

	absPath := l.filePath
	switch l.rotate {
	case "day":
		absPath += "." + time.Now().Format("2006-01-02")
	case "hour":
		absPath += "." + time.Now().Format("2006-01-02.15")
	}

	if l.absPath != absPath {
		if l.osFile != nil {
			l.osFile.Close()
			l.osFile = nil
		}
		file, err := os.OpenFile(absPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
		if err != nil {
			if DebugLevel() >= 1 {
				Printf("cannot open log file %s: %s\n", absPath, err.Error())
			}
			l.cantOpen = true
			return
		}
		l.absPath = absPath
		l.osFile = file
	}

	queue.saveTo(l.osFile)

	if forceClose {
		l.osFile.Close()
		l.osFile = nil
		l.absPath = ""
	}
}

// logQueue
type logQueue struct {
	nBlocks int
	isEmpty bool
	head    *logBlock
	tail    *logBlock
	free    *logBlock
}

func newLogQueue(nBlocks int) *logQueue {
	if nBlocks < 1 {
		nBlocks = 1
	}
	q := new(logQueue)
	q.nBlocks = nBlocks
	q.isEmpty = true
	q.head = new(logBlock)
	block := q.head
	for i := 1; i < nBlocks; i++ {
		next := new(logBlock)
		block.next = next
		block = next
	}
	q.tail = block
	q.free = q.head
	return q
}

func (q *logQueue) log(s string) {
	q.isEmpty = false
	for logged := 0; logged != len(s); {
		left := s[logged:]
		if q.free == nil {
			q.expandBlocks(len(left))
			if q.free == nil { // no free space, drop left
				return
			}
		}
		logged += q.free.write(left)
		if q.free.isFull() {
			q.free = q.free.next
		}
	}
}

func (q *logQueue) expandBlocks(size int) {
	const maxBlocks = 4096 // max 4096 * 16KiB = 64MiB per queue
	if q.nBlocks == maxBlocks {
		return
	}
	if (maxBlocks-q.nBlocks)*len(q.head.logs) < size {
		return
	}
	const threshold = maxBlocks / 8
	nMore := q.nBlocks
	if nMore > threshold {
		nMore = threshold
	}
	if q.nBlocks+nMore > maxBlocks {
		nMore = maxBlocks - q.nBlocks
	}
	head := new(logBlock)
	q.tail.next = head
	q.free = head
	block := head
	for i := 1; i < nMore; i++ {
		next := new(logBlock)
		block.next = next
		block = next
	}
	q.tail = block
	q.nBlocks += nMore
}

func (q *logQueue) saveTo(file *os.File) {
	saved := 0
	for block := q.head; block != nil && !block.isFree(); block = block.next {
		file.Write(block.take())
		saved++
	}
	q.free = q.head
	q.isEmpty = true
	if saved > 0 {
		file.Sync()
	}
}

// logBlock
type logBlock struct {
	next *logBlock
	used int
	logs [16368]byte
}

func (b *logBlock) write(s string) int {
	n := copy(b.logs[b.used:], s)
	b.used += n
	return n
}
func (b *logBlock) isFull() bool { return b.used == len(b.logs) }
func (b *logBlock) isFree() bool { return b.used == 0 }

func (b *logBlock) take() []byte {
	logs := b.logs[:b.used]
	b.used = 0
	return logs
}
