// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Exchans. An exchan is one request/response exchange on a connection.

package hemi

import (
	"io"
	"net/url"
	"strings"
)

const authChallenge = `Basic realm="User Visible Realm"`

// serveExchan parses input, selects the vhost in group, and writes the response to w. If input is not a request or
// no vhost applies, nothing is written and an error is returned.
func serveExchan(group *VhostGroup, input []byte, req *Request, resp *Response, w io.Writer) error {
	if err := req.parse(input); err != nil {
		return err
	}
	host, hasHost := req.Header("host")
	vhost := group.findVhost(host, hasHost)
	if vhost == nil {
		return errNoVhost
	}
	resp.onUse(vhost, req.IsHEAD())
	dispatch(vhost, req, resp)
	return resp.finish(w)
}

// dispatch runs the checks of vhost in order. The first failed check decides the response.
func dispatch(vhost *Vhost, req *Request, resp *Response) {
	if !vhost.methodAllowed(req.method) {
		vhost.logError(req, StatusMethodNotAllowed)
		sendStatus(resp, StatusMethodNotAllowed)
		return
	}
	if _, ok := req.Header("host"); !ok {
		vhost.logError(req, StatusBadRequest)
		sendStatus(resp, StatusBadRequest)
		return
	}
	if vhost.auth != "" {
		if authorization, ok := req.Header("authorization"); !ok || authorization != vhost.auth {
			vhost.logError(req, StatusUnauthorized)
			resp.SetHeader("WWW-Authenticate", authChallenge)
			sendStatus(resp, StatusUnauthorized)
			return
		}
	}
	if rule, ok := vhost.rewrites[req.path]; ok {
		switch rule.Kind {
		case RewriteRedirect301:
			vhost.logSuccess(req, StatusMovedPermanently)
			sendRedirect(resp, StatusMovedPermanently, rule.Target)
			return
		case RewriteRedirect302:
			vhost.logSuccess(req, StatusFound)
			sendRedirect(resp, StatusFound, rule.Target)
			return
		case RewritePath:
			if DebugLevel() >= 1 {
				Printf("%s: path rewrite %s -> %s is not supported, ignored\n", vhost.name, req.path, rule.Target)
			}
		}
	}
	path, ok := cleanUserPath(req.path)
	if !ok {
		vhost.logError(req, StatusBadRequest)
		sendStatus(resp, StatusBadRequest)
		return
	}
	serveStatic(vhost, req, resp, path)
}

// cleanUserPath decodes the percent-encoded request path. ok is false if the path is not well encoded or if any of
// its segments is "..".
func cleanUserPath(rawPath string) (path string, ok bool) {
	path, err := url.PathUnescape(rawPath)
	if err != nil || path == "" || path[0] != '/' || strings.IndexByte(path, 0x00) >= 0 {
		return "", false
	}
	for _, segment := range strings.Split(path, "/") {
		if segment == ".." {
			return "", false
		}
	}
	return path, true
}

func sendStatus(resp *Response, status int16) {
	resp.SetStatus(status)
	resp.SetText(statusText(status))
}
func sendRedirect(resp *Response, status int16, location string) {
	resp.SetStatus(status)
	resp.SetHeader("Location", location)
	resp.SetBody(nil)
}

func statusText(status int16) string {
	switch status {
	case StatusBadRequest:
		return "400"
	case StatusUnauthorized:
		return "401"
	case StatusNotFound:
		return "404"
	case StatusMethodNotAllowed:
		return "405"
	case StatusInternalServerError:
		return "500"
	default:
		return ""
	}
}
