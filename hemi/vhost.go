// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Virtual hosts and their port groups.

package hemi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Vhost is a virtual host. It is immutable after the stage is built.
type Vhost struct {
	// States
	name       string   // "server#0", ... used in errors and debug prints
	hostnames  []string // nil means the default vhost of its group
	port       int32
	webRoot    string // absolute dir without trailing '/'
	methods    []string
	headers    []vhostHeader // injected into every response
	indexFile  string        // empty means no index file
	listing    *ListingOption
	auth       string // expected Authorization value. empty means no auth
	rewrites   map[string]*RewriteRule
	extensions []string // fallback extensions, tried in order
	page404    string
	page500    string
	gzipExts   []string // nil means never gzip
	successLog Logger
	errorLog   Logger
}

type vhostHeader struct {
	name  string
	value string
}

func (v *Vhost) Name() string        { return v.name }
func (v *Vhost) Hostnames() []string { return v.hostnames }
func (v *Vhost) Port() int32         { return v.port }
func (v *Vhost) WebRoot() string     { return v.webRoot }
func (v *Vhost) IsDefault() bool     { return v.hostnames == nil }

func (v *Vhost) methodAllowed(method string) bool { return stringsContain(v.methods, method) }

// gzipAllowed reports whether content with extension ext may be compressed for a client that sent acceptEncoding.
func (v *Vhost) gzipAllowed(ext string, acceptEncoding string) bool {
	if !stringsContain(v.gzipExts, ext) {
		return false
	}
	for _, coding := range strings.Split(acceptEncoding, ", ") {
		if coding == "gzip" {
			return true
		}
	}
	return false
}

func (v *Vhost) logSuccess(req *Request, status int16) {
	if v.successLog != nil {
		v.successLog.Logf("%s %d %s\n", req.method, status, req.path)
	}
}
func (v *Vhost) logError(req *Request, status int16) {
	if v.errorLog != nil {
		v.errorLog.Logf("%s %d %s\n", req.method, status, req.path)
	}
}

// RewriteKind
type RewriteKind int8

const (
	RewriteRedirect301 RewriteKind = iota // answer 301 with Location
	RewriteRedirect302                    // answer 302 with Location
	RewritePath                           // not implemented. matching rules have no effect
)

func (k RewriteKind) String() string {
	switch k {
	case RewriteRedirect301:
		return "301"
	case RewriteRedirect302:
		return "302"
	case RewritePath:
		return "path"
	default:
		return "unknown"
	}
}

// RewriteRule
type RewriteRule struct {
	Kind   RewriteKind
	Target string
}

// VhostGroup holds all vhosts listening on the same port.
type VhostGroup struct {
	// States
	port         int32
	colonPort    string   // ":8080"
	vhosts       []*Vhost // in config order
	defaultVhost *Vhost   // may be nil
}

func newVhostGroup(port int32) *VhostGroup {
	g := new(VhostGroup)
	g.port = port
	g.colonPort = ":" + strconv.Itoa(int(port))
	return g
}

func (g *VhostGroup) Port() int32      { return g.port }
func (g *VhostGroup) Vhosts() []*Vhost { return g.vhosts }

var errNoVhost = errors.New("no vhost")

// addVhost adds a vhost to the group, keeping the group invariants: at most one default vhost, and hostnames are
// unique in the group.
func (g *VhostGroup) addVhost(vhost *Vhost) error {
	if vhost.hostnames == nil {
		if g.defaultVhost != nil {
			return fmt.Errorf("%s: port %d already has a default vhost (%s)", vhost.name, g.port, g.defaultVhost.name)
		}
		g.defaultVhost = vhost
	} else {
		for _, hostname := range vhost.hostnames {
			if other := g.findExact(hostname); other != nil {
				return fmt.Errorf("%s: host %q on port %d is already used by %s", vhost.name, hostname, g.port, other.name)
			}
		}
	}
	g.vhosts = append(g.vhosts, vhost)
	return nil
}

func (g *VhostGroup) findExact(hostname string) *Vhost {
	for _, vhost := range g.vhosts {
		if stringsContain(vhost.hostnames, hostname) {
			return vhost
		}
	}
	return nil
}

// findVhost selects the vhost for a Host header value. A ":port" suffix is trimmed only if it is the group's own
// port. Unmatched hosts go to the default vhost, which may be nil.
func (g *VhostGroup) findVhost(host string, hasHost bool) *Vhost {
	if hasHost {
		if vhost := g.findExact(strings.TrimSuffix(host, g.colonPort)); vhost != nil {
			return vhost
		}
	}
	return g.defaultVhost
}
