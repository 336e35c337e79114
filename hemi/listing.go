// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Directory listings.

package hemi

import (
	"fmt"
	"html"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// ListingOption controls the optional columns of a directory listing.
type ListingOption struct {
	ShowTime bool
	ShowSize bool
}

// layout returns the grid template of the listing and the grid column of its first cell.
func (o *ListingOption) layout() (columns string, first string) {
	switch {
	case o.ShowTime && o.ShowSize:
		return "auto auto 1fr", "1 / 4"
	case o.ShowTime || o.ShowSize:
		return "auto 1fr", "1 / 3"
	default:
		return "auto", "1 / 2"
	}
}

type listingEntry struct {
	name  string
	isDir bool
	info  os.FileInfo
}

// renderListing renders the HTML listing of directory dirPath, titled with title.
func renderListing(dirPath string, title string, option *ListingOption) ([]byte, error) {
	dirEntries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}
	entries := make([]listingEntry, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		info, err := os.Stat(filepath.Join(dirPath, dirEntry.Name())) // follows symlinks
		if err != nil {
			continue
		}
		entries = append(entries, listingEntry{dirEntry.Name(), info.IsDir(), info})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	var files strings.Builder
	for _, entry := range entries {
		name, href := entry.name, url.PathEscape(entry.name)
		if entry.isDir {
			name += "/"
			href += "/"
		}
		files.WriteString(`<a href="` + html.EscapeString(href) + `">` + html.EscapeString(name) + `</a>`)
		if option.ShowTime {
			files.WriteString("<time>" + entry.info.ModTime().Local().Format("2006-01-02 15:04") + "</time>")
		}
		if option.ShowSize {
			if entry.isDir {
				files.WriteString("<span></span>")
			} else {
				size := entry.info.Size()
				files.WriteString(`<span title="` + humanize.Comma(size) + ` bytes">` + bytesToHumanSize(float64(size)) + "</span>")
			}
		}
	}

	columns, first := option.layout()
	page := strings.NewReplacer(
		"{title}", html.EscapeString(title),
		"{columns}", columns,
		"{first}", first,
		"{files}", files.String(),
	).Replace(listingTemplate)
	return []byte(page), nil
}

var sizeUnits = [...]string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// bytesToHumanSize formats a byte count with two decimals and a binary unit, like "120.56 KB".
func bytesToHumanSize(bytes float64) string {
	if bytes <= 1 {
		return strconv.FormatFloat(bytes, 'f', 2, 64) + " B"
	}
	i := int(math.Log(bytes) / math.Log(1024))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}
	return fmt.Sprintf("%.2f %s", bytes/math.Pow(1024, float64(i)), sizeUnits[i])
}

const listingTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Index of {title}</title>
<style>
body { margin: 0; padding: 20px 30px; font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; font-size: 14px; color: #333; }
h1 { margin: 0 0 20px; font-size: 20px; font-weight: normal; }
main { display: grid; grid-template-columns: {columns}; grid-column-gap: 40px; grid-row-gap: 6px; }
main > a:first-child { grid-column: {first}; }
a { color: #0366d6; text-decoration: none; }
a:hover { text-decoration: underline; }
time, span { color: #666; white-space: nowrap; }
span { text-align: right; }
</style>
</head>
<body>
<h1>Index of {title}</h1>
<main><a href="../">../</a>{files}</main>
</body>
</html>
`
