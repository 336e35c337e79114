// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// MIME types of file extensions.

package hemi

const defaultMimeType = "application/octet-stream"

// MimeType returns the MIME type for a file extension without the leading dot.
func MimeType(ext string) string {
	if mimeType, ok := staticMimeTypes[ext]; ok {
		return mimeType
	}
	return defaultMimeType
}

// extensionOf returns the extension of the last element of path. ok is false if that element has no '.' after its
// first byte, so "index" and ".profile" have no extension while "file." has an empty one.
func extensionOf(path string) (ext string, ok bool) {
	for i := len(path) - 1; i > 0; i-- {
		switch path[i] {
		case '/':
			return "", false
		case '.':
			if path[i-1] == '/' { // dot file
				return "", false
			}
			return path[i+1:], true
		}
	}
	return "", false
}

var staticMimeTypes = map[string]string{
	"aac":   "audio/aac",
	"abw":   "application/x-abiword",
	"arc":   "application/x-freearc",
	"avi":   "video/x-msvideo",
	"azw":   "application/vnd.amazon.ebook",
	"bin":   "application/octet-stream",
	"bmp":   "image/bmp",
	"bz":    "application/x-bzip",
	"bz2":   "application/x-bzip2",
	"csh":   "application/x-csh",
	"css":   "text/css",
	"csv":   "text/csv",
	"doc":   "application/msword",
	"docx":  "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"eot":   "application/vnd.ms-fontobject",
	"epub":  "application/epub+zip",
	"gif":   "image/gif",
	"htm":   "text/html",
	"html":  "text/html",
	"ico":   "image/vnd.microsoft.icon",
	"ics":   "text/calendar",
	"jar":   "application/java-archive",
	"jpeg":  "image/jpeg",
	"jpg":   "image/jpeg",
	"js":    "text/javascript",
	"json":  "application/json",
	"mjs":   "text/javascript",
	"mp3":   "audio/mpeg",
	"mpeg":  "video/mpeg",
	"mpkg":  "application/vnd.apple.installer+xml",
	"odp":   "application/vnd.oasis.opendocument.presentation",
	"ods":   "application/vnd.oasis.opendocument.spreadsheet",
	"odt":   "application/vnd.oasis.opendocument.text",
	"oga":   "audio/ogg",
	"ogv":   "video/ogg",
	"ogx":   "application/ogg",
	"otf":   "font/otf",
	"png":   "image/png",
	"pdf":   "application/pdf",
	"ppt":   "application/vnd.ms-powerpoint",
	"pptx":  "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"rar":   "application/x-rar-compressed",
	"rtf":   "application/rtf",
	"sh":    "application/x-sh",
	"svg":   "image/svg+xml",
	"swf":   "application/x-shockwave-flash",
	"tar":   "application/x-tar",
	"tif":   "image/tiff",
	"tiff":  "image/tiff",
	"ttf":   "font/ttf",
	"txt":   "text/plain",
	"vsd":   "application/vnd.visio",
	"wav":   "audio/wav",
	"weba":  "audio/webm",
	"webm":  "video/webm",
	"webp":  "image/webp",
	"woff":  "font/woff",
	"woff2": "font/woff2",
	"xhtml": "application/xhtml+xml",
	"xls":   "application/vnd.ms-excel",
	"xlsx":  "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"xml":   "text/xml",
	"xul":   "application/vnd.mozilla.xul+xml",
	"zip":   "application/zip",
	"3gp":   "video/3gpp",
	"3g2":   "video/3gpp2",
	"7z":    "application/x-7z-compressed",
}
