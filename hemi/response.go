// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// HTTP/1.1 response builder.

// A response is built in a fixed order: status, headers, content type, gzip flag, then content. The head is framed
// exactly once, in finish(), which also decides the final Content-Length.

package hemi

import (
	"bytes"
	"errors"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
)

const (
	StatusOK                  = 200
	StatusMovedPermanently    = 301
	StatusFound               = 302
	StatusBadRequest          = 400
	StatusUnauthorized        = 401
	StatusNotFound            = 404
	StatusMethodNotAllowed    = 405
	StatusInternalServerError = 500
)

// maxGzipFileSize is the largest file that is compressed before sending. Larger gzip-eligible files are streamed
// as they are, without Content-Encoding.
const maxGzipFileSize = _8M

var errShortFile = errors.New("file is shorter than its size")

// Response is the server-side HTTP/1.1 response.
type Response struct {
	// States
	status     int16
	headers    []responseHeader // in sending order. names are unique case-insensitively
	gzip       bool             // compress the content?
	forbidBody bool             // true for HEAD requests
	body       []byte           // buffered content
	file       *os.File         // streamed content. closed in onEnd()
	fileSize   int64
}

type responseHeader struct {
	name  string
	value string
}

func (r *Response) onUse(vhost *Vhost, forbidBody bool) {
	r.status = StatusOK
	r.forbidBody = forbidBody
	r.SetHeader("Server", ServerName)
	if vhost != nil {
		for _, header := range vhost.headers {
			r.SetHeader(header.name, header.value)
		}
	}
}
func (r *Response) onEnd() {
	r.status = 0
	r.headers = r.headers[:0]
	r.gzip = false
	r.forbidBody = false
	r.body = nil
	if r.file != nil {
		r.file.Close()
		r.file = nil
	}
	r.fileSize = 0
}

func (r *Response) Status() int16          { return r.status }
func (r *Response) SetStatus(status int16) { r.status = status }

// SetHeader sets a header, replacing the header that has the same name in any case.
func (r *Response) SetHeader(name string, value string) {
	for i := range r.headers {
		if strings.EqualFold(r.headers[i].name, name) {
			r.headers[i].value = value
			return
		}
	}
	r.headers = append(r.headers, responseHeader{name, value})
}
func (r *Response) delHeader(name string) {
	for i := range r.headers {
		if strings.EqualFold(r.headers[i].name, name) {
			r.headers = append(r.headers[:i], r.headers[i+1:]...)
			return
		}
	}
}
func (r *Response) Header(name string) (value string, ok bool) {
	for _, header := range r.headers {
		if strings.EqualFold(header.name, name) {
			return header.value, true
		}
	}
	return "", false
}

// SetContentType sets Content-Type according to a file extension.
func (r *Response) SetContentType(ext string) { r.SetHeader("Content-Type", MimeType(ext)) }
func (r *Response) SetGzip(gzip bool)         { r.gzip = gzip }

func (r *Response) SetBody(body []byte) {
	r.body = body
	if r.file != nil {
		r.file.Close()
		r.file = nil
	}
}
func (r *Response) SetText(text string) {
	r.SetHeader("Content-Type", "text/plain")
	r.SetBody([]byte(text))
}

// SetFile makes file the streamed content. file is owned by the response since now.
func (r *Response) SetFile(file *os.File, size int64) {
	r.body = nil
	r.file = file
	r.fileSize = size
}

func (r *Response) isStreamed() bool { return r.file != nil }

// finish frames the response and writes it to w.
func (r *Response) finish(w io.Writer) error {
	// Framing headers are always ours.
	r.delHeader("Content-Encoding")
	r.delHeader("Transfer-Encoding")
	if r.file != nil && r.gzip {
		if r.fileSize <= maxGzipFileSize {
			if err := r.loadFile(); err != nil {
				return err
			}
		} else {
			r.gzip = false
		}
	}
	if r.file == nil { // buffered
		if r.gzip {
			if compressed, err := gzipBytes(r.body); err == nil {
				r.SetHeader("Content-Encoding", "gzip")
				r.body = compressed
			}
		}
		r.SetHeader("Content-Length", strconv.Itoa(len(r.body)))
	} else {
		r.SetHeader("Content-Length", strconv.FormatInt(r.fileSize, 10))
	}
	r.SetHeader("Connection", "close")

	head := r.appendHead(make([]byte, 0, 256))
	if r.file == nil {
		vector := net.Buffers{head}
		if !r.forbidBody && len(r.body) > 0 {
			vector = append(vector, r.body)
		}
		_, err := vector.WriteTo(w)
		return err
	}
	if _, err := w.Write(head); err != nil {
		return err
	}
	if r.forbidBody {
		return nil
	}
	return r._streamFile(w)
}
// loadFile reads the streamed content into the buffered content.
func (r *Response) loadFile() error {
	body := make([]byte, r.fileSize)
	if _, err := io.ReadFull(r.file, body); err != nil {
		return err
	}
	r.file.Close()
	r.file = nil
	r.body = body
	return nil
}
func (r *Response) _streamFile(w io.Writer) error {
	buffer := GetNK(r.fileSize)
	defer PutNK(buffer)
	for sent := int64(0); sent < r.fileSize; {
		size := int64(len(buffer))
		if left := r.fileSize - sent; left < size {
			size = left
		}
		n, err := r.file.Read(buffer[:size])
		if n > 0 {
			if _, werr := w.Write(buffer[:n]); werr != nil {
				return werr
			}
			sent += int64(n)
		}
		if err == io.EOF && sent < r.fileSize {
			return errShortFile
		}
		if err != nil && err != io.EOF {
			return err
		}
	}
	return nil
}

// appendHead appends the status line, the header lines, and the empty line to p.
func (r *Response) appendHead(p []byte) []byte {
	p = append(p, "HTTP/1.1 "...)
	p = strconv.AppendInt(p, int64(r.status), 10)
	p = append(p, "\r\n"...)
	for _, header := range r.headers {
		p = append(p, header.name...)
		p = append(p, ": "...)
		p = append(p, header.value...)
		p = append(p, "\r\n"...)
	}
	return append(p, "\r\n"...)
}

var gzipWriters = sync.Pool{
	New: func() any { return gzip.NewWriter(nil) },
}

func gzipBytes(p []byte) ([]byte, error) {
	var buffer bytes.Buffer
	gzipWriter := gzipWriters.Get().(*gzip.Writer)
	defer gzipWriters.Put(gzipWriter)
	gzipWriter.Reset(&buffer)
	if _, err := gzipWriter.Write(p); err != nil {
		return nil, err
	}
	if err := gzipWriter.Close(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
