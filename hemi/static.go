// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Static files, directories, and error pages.

package hemi

import (
	"os"
	"path/filepath"
	"strings"
)

// serveStatic maps the decoded path to a file under the web root of vhost and responds with it.
func serveStatic(vhost *Vhost, req *Request, resp *Response, path string) {
	fullPath := filepath.Join(vhost.webRoot, "."+path)
	info, err := os.Stat(fullPath)
	if err != nil {
		serveFallback(vhost, req, resp, fullPath, path)
		return
	}

	if info.IsDir() {
		if !strings.HasSuffix(req.path, "/") {
			location := req.path + "/"
			if req.hasQuery {
				location += "?" + req.query
			}
			vhost.logSuccess(req, StatusMovedPermanently)
			sendRedirect(resp, StatusMovedPermanently, location)
			return
		}
		if vhost.indexFile != "" {
			if file, size, ok := openRegular(filepath.Join(fullPath, vhost.indexFile)); ok {
				ext, _ := extensionOf(vhost.indexFile)
				sendFile(vhost, req, resp, file, size, ext)
				return
			}
		}
		if vhost.listing != nil {
			page, err := renderListing(fullPath, path, vhost.listing)
			if err != nil {
				if DebugLevel() >= 1 {
					Printf("%s: cannot list %s: %s\n", vhost.name, fullPath, err.Error())
				}
				vhost.logError(req, StatusInternalServerError)
				sendErrorPage(vhost, resp, StatusInternalServerError)
				return
			}
			vhost.logSuccess(req, StatusOK)
			resp.SetContentType("html")
			resp.SetGzip(vhost.gzipAllowed("html", acceptEncodingOf(req)))
			resp.SetBody(page)
			return
		}
		vhost.logError(req, StatusNotFound)
		sendErrorPage(vhost, resp, StatusNotFound)
		return
	}

	if strings.HasSuffix(path, "/") { // "/file.txt/"
		vhost.logError(req, StatusNotFound)
		sendErrorPage(vhost, resp, StatusNotFound)
		return
	}
	file, err := os.Open(fullPath)
	if err != nil {
		vhost.logError(req, StatusInternalServerError)
		sendErrorPage(vhost, resp, StatusInternalServerError)
		return
	}
	ext, _ := extensionOf(path)
	sendFile(vhost, req, resp, file, info.Size(), ext)
}

// serveFallback tries the fallback extensions of vhost for a missing path. Paths that have an extension, or that
// end with '/', never fall back.
func serveFallback(vhost *Vhost, req *Request, resp *Response, fullPath string, path string) {
	if _, hasExt := extensionOf(path); !hasExt && !strings.HasSuffix(path, "/") {
		for _, ext := range vhost.extensions {
			if file, size, ok := openRegular(fullPath + "." + ext); ok {
				sendFile(vhost, req, resp, file, size, ext)
				return
			}
		}
	}
	vhost.logError(req, StatusNotFound)
	sendErrorPage(vhost, resp, StatusNotFound)
}

// openRegular opens a regular file. Directories and unopenable files are not ok.
func openRegular(path string) (file *os.File, size int64, ok bool) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, false
	}
	info, err := file.Stat()
	if err != nil || !info.Mode().IsRegular() {
		file.Close()
		return nil, 0, false
	}
	return file, info.Size(), true
}

// sendFile responds with file. Files to be compressed are loaded before the response is logged.
func sendFile(vhost *Vhost, req *Request, resp *Response, file *os.File, size int64, ext string) {
	resp.SetStatus(StatusOK)
	resp.SetContentType(ext)
	resp.SetFile(file, size)
	if vhost.gzipAllowed(ext, acceptEncodingOf(req)) {
		resp.SetGzip(true)
		if size <= maxGzipFileSize {
			if err := resp.loadFile(); err != nil {
				if DebugLevel() >= 1 {
					Printf("%s: cannot read %s: %s\n", vhost.name, file.Name(), err.Error())
				}
				vhost.logError(req, StatusInternalServerError)
				resp.SetGzip(false)
				sendErrorPage(vhost, resp, StatusInternalServerError)
				return
			}
		}
	}
	vhost.logSuccess(req, StatusOK)
}

// sendErrorPage responds with the custom page of status if vhost has one and it is readable, or with plain text.
func sendErrorPage(vhost *Vhost, resp *Response, status int16) {
	var page string
	switch status {
	case StatusNotFound:
		page = vhost.page404
	case StatusInternalServerError:
		page = vhost.page500
	}
	if page != "" {
		if content, err := os.ReadFile(page); err == nil {
			ext, _ := extensionOf(page)
			resp.SetStatus(status)
			resp.SetContentType(ext)
			resp.SetBody(content)
			return
		}
	}
	sendStatus(resp, status)
}

func acceptEncodingOf(req *Request) string {
	acceptEncoding, _ := req.Header("accept-encoding")
	return acceptEncoding
}
