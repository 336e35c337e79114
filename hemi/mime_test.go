// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package hemi

import (
	"testing"
)

func TestMimeType(t *testing.T) {
	tests := []struct {
		ext      string
		mimeType string
	}{
		{"html", "text/html"},
		{"htm", "text/html"},
		{"css", "text/css"},
		{"js", "text/javascript"},
		{"mjs", "text/javascript"},
		{"json", "application/json"},
		{"png", "image/png"},
		{"jpg", "image/jpeg"},
		{"svg", "image/svg+xml"},
		{"txt", "text/plain"},
		{"xml", "text/xml"},
		{"woff2", "font/woff2"},
		{"7z", "application/x-7z-compressed"},
		{"3gp", "video/3gpp"},
		{"docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"", "application/octet-stream"},
		{"HTML", "application/octet-stream"},
		{"unknown", "application/octet-stream"},
	}
	for _, test := range tests {
		if mimeType := MimeType(test.ext); mimeType != test.mimeType {
			t.Errorf("ext=%s mimeType=%s want=%s", test.ext, mimeType, test.mimeType)
		}
	}
	if n := len(staticMimeTypes); n < 65 {
		t.Errorf("only %d mime types", n)
	}
}

func TestExtensionOf(t *testing.T) {
	tests := []struct {
		path string
		ext  string
		ok   bool
	}{
		{"index.html", "html", true},
		{"/index/index.rs", "rs", true},
		{"/a/b.tar.gz", "gz", true},
		{"", "", false},
		{"index", "", false},
		{"/about", "", false},
		{"/a.b/about", "", false},
		{"/.profile", "", false},
		{"/dir/", "", false},
		{"/file.", "", true},
	}
	for _, test := range tests {
		if ext, ok := extensionOf(test.path); ext != test.ext || ok != test.ok {
			t.Errorf("path=%s ext=%s ok=%v", test.path, ext, ok)
		}
	}
}
