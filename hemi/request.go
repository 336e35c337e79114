// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// HTTP/1.x request parser. See RFC 9112.

// A request head is parsed from the bytes of exactly one read. Heads that don't fit in that read are truncated, and
// the truncated part is lost. Request contents are never read.

package hemi

import (
	"bytes"
	"errors"
)

var (
	errEmptyRequest   = errors.New("empty request")
	errBadRequestLine = errors.New("bad request line")
)

// Request is the server-side HTTP/1.x request head.
type Request struct {
	// States
	method   string
	path     string // raw path, without query
	query    string // raw query, without '?'
	hasQuery bool   // true if a '?' was present, even if query is empty
	version  string // not validated
	headers  map[string]string
}

func (r *Request) onUse() {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
}
func (r *Request) onEnd() {
	r.method = ""
	r.path = ""
	r.query = ""
	r.hasQuery = false
	r.version = ""
	clear(r.headers)
}

// parse parses input as a request head. Header names are lowered before stored. If a header occurs more than once,
// the last one wins. Malformed header lines are skipped, not rejected.
func (r *Request) parse(input []byte) error {
	if len(input) == 0 || input[0] == 0x00 { // aborted or empty read
		return errEmptyRequest
	}
	line, rest, found := bytes.Cut(input, bytesLF)
	if err := r._parseRequestLine(bytes.TrimSuffix(line, bytesCR)); err != nil {
		return err
	}
	for found {
		line, rest, found = bytes.Cut(rest, bytesLF)
		if !found { // truncated field line, or garbage after the head
			break
		}
		line = bytes.TrimSuffix(line, bytesCR)
		if len(line) == 0 { // end of head
			break
		}
		name, value, ok := bytes.Cut(line, bytesColonSpace)
		if !ok || len(name) == 0 {
			continue
		}
		bytesToLower(name)
		r.headers[string(name)] = string(value)
	}
	return nil
}
func (r *Request) _parseRequestLine(line []byte) error {
	fields := bytes.Split(line, bytesSpace)
	if len(fields) != 3 {
		return errBadRequestLine
	}
	method, target, version := fields[0], fields[1], fields[2]
	target = _originForm(target)
	if len(method) == 0 || len(target) == 0 || target[0] != '/' {
		return errBadRequestLine
	}
	for _, b := range method {
		if byteIsBlank(b) || b < 0x20 || b >= 0x7f {
			return errBadRequestLine
		}
	}
	r.method = string(method)
	if path, query, ok := bytes.Cut(target, bytesQuestion); ok {
		r.path, r.query, r.hasQuery = string(path), string(query), true
	} else {
		r.path = string(target)
	}
	r.version = string(version)
	return nil
}

// _originForm turns an absolute-form target like "http://host/x?y" into "/x?y". Other targets are returned as is.
func _originForm(target []byte) []byte {
	var rest []byte
	if len(target) > 7 && bytes.EqualFold(target[:7], bytesHTTP) {
		rest = target[7:]
	} else if len(target) > 8 && bytes.EqualFold(target[:8], bytesHTTPS) {
		rest = target[8:]
	} else {
		return target
	}
	if i := bytes.IndexAny(rest, "/?"); i >= 0 {
		if rest[i] == '/' {
			return rest[i:]
		}
		return append([]byte{'/'}, rest[i:]...)
	}
	return bytesSlash
}

func (r *Request) Method() string  { return r.method }
func (r *Request) Path() string    { return r.path }
func (r *Request) Query() string   { return r.query }
func (r *Request) HasQuery() bool  { return r.hasQuery }
func (r *Request) Version() string { return r.version }
func (r *Request) IsHEAD() bool    { return r.method == "HEAD" }

// Header returns the value of a header. name must be in lower case.
func (r *Request) Header(name string) (value string, ok bool) {
	value, ok = r.headers[name]
	return
}

var ( // byte slices used by the parser
	bytesCR         = []byte("\r")
	bytesLF         = []byte("\n")
	bytesSpace      = []byte(" ")
	bytesQuestion   = []byte("?")
	bytesColonSpace = []byte(": ")
	bytesSlash      = []byte("/")
	bytesHTTP       = []byte("http://")
	bytesHTTPS      = []byte("https://")
)
