// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Common elements.

package hemi

import (
	"sync"
)

const ( // units
	K = 1 << 10
	M = 1 << 20
)

const ( // sizes
	_512  = 512    // the request buffer. heads larger than this are truncated
	_4K   = 4 * K  // mostly used by pooled buffers
	_16K  = 16 * K // mostly used by pooled buffers
	_8M   = 8 * M
)

var ( // pools
	pool4K  sync.Pool
	pool16K sync.Pool
)

// GetNK returns a pooled buffer for n bytes. Buffers are never larger than 16K.
func GetNK(n int64) []byte {
	if n <= _4K {
		return getNK(&pool4K, _4K)
	} else { // n > _4K
		return getNK(&pool16K, _16K)
	}
}
func getNK(pool *sync.Pool, size int) []byte {
	if x := pool.Get(); x != nil {
		return x.([]byte)
	}
	return make([]byte, size)
}
func PutNK(p []byte) {
	switch cap(p) {
	case _4K:
		pool4K.Put(p)
	case _16K:
		pool16K.Put(p)
	default:
		BugExitln("bad buffer")
	}
}

func byteIsBlank(b byte) bool { return b == ' ' || b == '\t' || b == '\r' || b == '\n' }

func bytesToLower(p []byte) {
	for i := 0; i < len(p); i++ {
		if b := p[i]; b >= 'A' && b <= 'Z' {
			p[i] = b + 0x20 // to lower
		}
	}
}

func stringsContain(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
