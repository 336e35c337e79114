// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package hemi

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testConfig = `
- server:
    listen: 8080
    host: [example.com, www.example.com]
    root: ./www
    index: index.html
    directory: { time: true, size: false }
    headers: ["Access-Control-Allow-Origin *", "X-Powered-By see server"]
    auth: { user: admin, password: secret }
    rewrite:
      /old: 301 /new
      /tmp: 302 https://example.org/
      /a: path /b
    extensions: [html, htm]
    error: { 404: ./404.html, 500: /var/empty/500.html }
    gzip: [html, css]
    log: { success: ./logs/ok.log, error: ./logs/ok.log, rotate: day }
- server:
    listen: 8080
    root: www
    methods: [GET, HEAD, OPTIONS]
    directory: true
    gzip: true
    auth: "guest:"
- server:
    listen: 9090
    host: static.example.com
    root: www
`

func TestStageFromText(t *testing.T) {
	dir := t.TempDir()
	makeTree(t, dir, map[string]string{"www/": ""})
	stage, err := StageFromText(testConfig, dir)
	if err != nil {
		t.Fatal(err)
	}
	defer stage.Quit()

	if ports := stage.Ports(); len(ports) != 2 || ports[0] != 8080 || ports[1] != 9090 {
		t.Fatalf("ports=%v", ports)
	}
	group := stage.Group(8080)
	if len(group.Vhosts()) != 2 || group.defaultVhost != group.Vhosts()[1] {
		t.Fatal("bad group 8080")
	}

	vhost := group.Vhosts()[0]
	if strings.Join(vhost.Hostnames(), ",") != "example.com,www.example.com" {
		t.Errorf("hostnames=%v", vhost.Hostnames())
	}
	if vhost.WebRoot() != filepath.Join(dir, "www") {
		t.Errorf("webRoot=%s", vhost.WebRoot())
	}
	if strings.Join(vhost.methods, ",") != "GET,HEAD" {
		t.Errorf("methods=%v", vhost.methods)
	}
	if vhost.indexFile != "index.html" {
		t.Errorf("indexFile=%s", vhost.indexFile)
	}
	if vhost.listing == nil || !vhost.listing.ShowTime || vhost.listing.ShowSize {
		t.Errorf("listing=%v", vhost.listing)
	}
	if len(vhost.headers) != 2 || vhost.headers[1] != (vhostHeader{"X-Powered-By", "see server"}) {
		t.Errorf("headers=%v", vhost.headers)
	}
	if vhost.auth != "Basic YWRtaW46c2VjcmV0" {
		t.Errorf("auth=%s", vhost.auth)
	}
	if rule := vhost.rewrites["/old"]; rule == nil || rule.Kind != RewriteRedirect301 || rule.Target != "/new" {
		t.Errorf("rewrite /old=%v", rule)
	}
	if rule := vhost.rewrites["/tmp"]; rule == nil || rule.Kind != RewriteRedirect302 || rule.Target != "https://example.org/" {
		t.Errorf("rewrite /tmp=%v", rule)
	}
	if rule := vhost.rewrites["/a"]; rule == nil || rule.Kind != RewritePath {
		t.Errorf("rewrite /a=%v", rule)
	}
	if strings.Join(vhost.extensions, ",") != "html,htm" {
		t.Errorf("extensions=%v", vhost.extensions)
	}
	if vhost.page404 != filepath.Join(dir, "404.html") || vhost.page500 != "/var/empty/500.html" {
		t.Errorf("page404=%s page500=%s", vhost.page404, vhost.page500)
	}
	if strings.Join(vhost.gzipExts, ",") != "html,css" {
		t.Errorf("gzipExts=%v", vhost.gzipExts)
	}
	if vhost.successLog == nil || vhost.successLog != vhost.errorLog {
		t.Error("loggers with the same target must be shared")
	}
	if _, err := os.Stat(filepath.Join(dir, "logs")); err != nil {
		t.Error("logs dir must be created")
	}

	other := group.Vhosts()[1]
	if !other.IsDefault() || strings.Join(other.methods, ",") != "GET,HEAD,OPTIONS" {
		t.Errorf("methods=%v", other.methods)
	}
	if other.listing == nil || other.listing.ShowTime || other.listing.ShowSize {
		t.Errorf("listing=%v", other.listing)
	}
	if !stringsContain(other.gzipExts, "html") || !stringsContain(other.gzipExts, "css") {
		t.Errorf("gzipExts=%v", other.gzipExts)
	}
	if other.auth != "Basic Z3Vlc3Q6" {
		t.Errorf("auth=%s", other.auth)
	}
	if other.successLog != nil || other.errorLog != nil {
		t.Error("no loggers expected")
	}

	static := stage.Group(9090).Vhosts()[0]
	if strings.Join(static.Hostnames(), ",") != "static.example.com" || static.listing != nil || static.gzipExts != nil {
		t.Error("bad vhost on 9090")
	}
}

func TestStageFromFile(t *testing.T) {
	dir := t.TempDir()
	makeTree(t, dir, map[string]string{
		"conf/see.yml": "- server:\n    listen: 80\n    root: ../www\n",
		"www/":         "",
	})
	stage, err := StageFromFile(dir, "conf/see.yml")
	if err != nil {
		t.Fatal(err)
	}
	if webRoot := stage.Group(80).Vhosts()[0].WebRoot(); webRoot != filepath.Join(dir, "www") {
		t.Errorf("paths must be relative to the config file, webRoot=%s", webRoot)
	}
	if _, err := StageFromFile(dir, "none.yml"); err == nil {
		t.Error("missing file must fail")
	}
}

func TestStageFromTextErrors(t *testing.T) {
	dir := t.TempDir()
	makeTree(t, dir, map[string]string{"www/": "", "file": "x"})
	tests := []struct {
		config string
		errHas string
	}{
		{"", "empty"},
		{"[]", "no servers"},
		{"server: {}", "bad config"},
		{"- server:\n    root: www\n", "server#0: listen is required"},
		{"- server:\n    listen: 70000\n    root: www\n", "out of range"},
		{"- server:\n    listen: 80\n", "root is required"},
		{"- server:\n    listen: 80\n    root: none\n", "not a directory"},
		{"- server:\n    listen: 80\n    root: file\n", "not a directory"},
		{"- server:\n    listen: 80\n    root: www\n    unknown: 1\n", "unknown"},
		{"- server:\n    listen: 80\n    root: www\n    host: []\n", "list is empty"},
		{"- server:\n    listen: 80\n    root: www\n    headers: [NoValue]\n", "headers"},
		{"- server:\n    listen: 80\n    root: www\n    auth: nocolon\n", "user:password"},
		{"- server:\n    listen: 80\n    root: www\n    rewrite: { /a: 303 /b }\n", "unknown rewrite kind"},
		{"- server:\n    listen: 80\n    root: www\n    rewrite: { /a: 301 }\n", "rewrite /a"},
		{"- server:\n    listen: 80\n    root: www\n    error: { 403: x.html }\n", "403"},
		{"- server:\n    listen: 80\n    root: www\n    extensions: [.html]\n", "extensions"},
		{"- server:\n    listen: 80\n    root: www\n    index: a/index.html\n", "index"},
		{"- server:\n    listen: 80\n    root: www\n    log: { success: ok.log, logger: nope }\n", "unknown logger"},
		{"- server:\n    listen: 80\n    root: www\n    log: { success: ok.log, rotate: week }\n", "rotate"},
		{"- server:\n    listen: 80\n    root: www\n    directory: [1]\n", "directory"},
		{"- server:\n    listen: 80\n    root: www\n- server:\n    listen: 80\n    root: www\n", "default vhost"},
		{"- server:\n    listen: 80\n    root: www\n    host: a.com\n- server:\n    listen: 80\n    root: www\n    host: [b.com, a.com]\n", "server#1: host \"a.com\""},
	}
	for _, test := range tests {
		_, err := StageFromText(test.config, dir)
		if err == nil {
			t.Errorf("config=%q should fail", test.config)
			continue
		}
		if !strings.Contains(err.Error(), test.errHas) {
			t.Errorf("config=%q err=%q want=%q", test.config, err.Error(), test.errHas)
		}
	}
}

func TestStageFromDir(t *testing.T) {
	stage, err := StageFromDir(".", 8000)
	if err != nil {
		t.Fatal(err)
	}
	vhost := stage.Group(8000).Vhosts()[0]
	if !vhost.IsDefault() || vhost.listing == nil || !vhost.listing.ShowTime || !vhost.listing.ShowSize {
		t.Error("start vhost must be a default vhost with full listing")
	}
	if !filepath.IsAbs(vhost.WebRoot()) {
		t.Errorf("webRoot=%s", vhost.WebRoot())
	}
}

func TestParseRewriteRule(t *testing.T) {
	rule, err := parseRewriteRule("  302   /x y ")
	if err != nil {
		t.Fatal(err)
	}
	if rule.Kind != RewriteRedirect302 || rule.Target != "/x y" {
		t.Errorf("rule=%+v", rule)
	}
}
