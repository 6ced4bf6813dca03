// Package naming maps MIME types, export formats and filenames for delivered
// payloads. All tables are read-only configuration fixed at init.
package naming

import (
	"path"
	"strings"
)

const (
	// GenericContentType is used when no better declared type survives.
	GenericContentType = "application/octet-stream"
	// genericExtension is appended when a content type has no table entry.
	genericExtension = "bin"

	nativePrefix = "application/vnd.google-apps."
)

// extByMIME maps resolved content types to their standard file extension.
// Native editor documents map to their interchange format.
var extByMIME = map[string]string{
	// documents
	"application/pdf":    "pdf",
	"text/plain":         "txt",
	"text/csv":           "csv",
	"text/html":          "html",
	"application/rtf":    "rtf",
	"application/msword": "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"application/vnd.oasis.opendocument.text":                                 "odt",
	// spreadsheets
	"application/vnd.ms-excel": "xls",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": "xlsx",
	"application/vnd.oasis.opendocument.spreadsheet":                    "ods",
	// presentations
	"application/vnd.ms-powerpoint": "ppt",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": "pptx",
	"application/vnd.oasis.opendocument.presentation":                           "odp",
	// images
	"image/png":     "png",
	"image/jpeg":    "jpg",
	"image/gif":     "gif",
	"image/svg+xml": "svg",
	"image/webp":    "webp",
	// audio
	"audio/mpeg": "mp3",
	"audio/ogg":  "ogg",
	"audio/wav":  "wav",
	"audio/mp4":  "m4a",
	// video
	"video/mp4":       "mp4",
	"video/webm":      "webm",
	"video/quicktime": "mov",
	"video/x-matroska": "mkv",
	// archives
	"application/zip":              "zip",
	"application/x-tar":            "tar",
	"application/gzip":             "gz",
	"application/x-7z-compressed":  "7z",
	"application/x-rar-compressed": "rar",
	// misc
	"application/json": "json",
	"application/xml":  "xml",
	// native apps documents delivered via export
	nativePrefix + "document":     "docx",
	nativePrefix + "spreadsheet":  "xlsx",
	nativePrefix + "presentation": "pptx",
	nativePrefix + "drawing":      "png",
	nativePrefix + "form":         "html",
	nativePrefix + "script":       "json",
}

// mimeByFormat maps requested export format tokens to the content type the
// export endpoint produces. The endpoint's own declared header is not trusted.
var mimeByFormat = map[string]string{
	"pdf":  "application/pdf",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"odt":  "application/vnd.oasis.opendocument.text",
	"rtf":  "application/rtf",
	"txt":  "text/plain",
	"html": "text/html",
	"epub": "application/epub+zip",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"ods":  "application/vnd.oasis.opendocument.spreadsheet",
	"csv":  "text/csv",
	"tsv":  "text/tab-separated-values",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"odp":  "application/vnd.oasis.opendocument.presentation",
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"svg":  "image/svg+xml",
	"json": "application/json",
	"zip":  "application/zip",
}

// defaultExportFormat is the per-type effective format when no explicit
// format was requested.
var defaultExportFormat = map[string]string{
	nativePrefix + "document":     "pdf",
	nativePrefix + "spreadsheet":  "xlsx",
	nativePrefix + "presentation": "pptx",
}

// exportOptionsByMIME lists the export formats offered per native type,
// ordered by preference. Non-native types have no export options.
var exportOptionsByMIME = map[string][]string{
	nativePrefix + "document":     {"docx", "pdf", "odt", "rtf", "txt", "html", "epub"},
	nativePrefix + "spreadsheet":  {"xlsx", "pdf", "ods", "csv", "tsv"},
	nativePrefix + "presentation": {"pptx", "pdf", "odp", "txt"},
	nativePrefix + "drawing":      {"png", "pdf", "svg", "jpeg"},
	nativePrefix + "form":         {"html"},
	nativePrefix + "script":       {"json"},
}

// editorPath maps native editor types to their docs.google.com path segment.
var editorPath = map[string]string{
	nativePrefix + "document":     "document",
	nativePrefix + "spreadsheet":  "spreadsheets",
	nativePrefix + "presentation": "presentation",
}

// IsNativeApp reports whether mimeType denotes an editor-only document with
// no native byte format.
func IsNativeApp(mimeType string) bool {
	return strings.HasPrefix(mimeType, nativePrefix)
}

// ExportOptions returns the ordered lowercase export format tokens for a
// native type, or nil for any other type.
func ExportOptions(mimeType string) []string {
	return exportOptionsByMIME[mimeType]
}

// DefaultExportFormat returns the effective export format for a native type
// when the caller requested none.
func DefaultExportFormat(mimeType string) string {
	if format, ok := defaultExportFormat[mimeType]; ok {
		return format
	}
	return "pdf"
}

// EditorPath returns the docs editor path segment for a native type, or ""
// when the type has no editor endpoint.
func EditorPath(mimeType string) string {
	return editorPath[mimeType]
}

// MIMEForFormat returns the content type produced by exporting to format.
func MIMEForFormat(format string) string {
	if mimeType, ok := mimeByFormat[strings.ToLower(format)]; ok {
		return mimeType
	}
	return GenericContentType
}

// FileName resolves the final delivered filename from the base name, the
// resolved content type and an optional requested format.
//
// An explicit requested format always wins: any existing extension is
// replaced. Otherwise a known content type corrects a mismatched extension
// and supplies one when missing; unknown types leave an existing extension
// untouched and fall back to a generic one when there is none.
func FileName(base, contentType, requestedFormat string) string {
	if base == "" {
		base = "file"
	}

	if requestedFormat != "" {
		return stripExtension(base) + "." + strings.ToLower(requestedFormat)
	}

	expected := extByMIME[normalizeContentType(contentType)]
	current := strings.TrimPrefix(path.Ext(base), ".")

	if current != "" {
		if expected == "" || strings.EqualFold(current, expected) {
			return base
		}
		return stripExtension(base) + "." + expected
	}

	if expected == "" {
		expected = genericExtension
	}
	return base + "." + expected
}

func stripExtension(name string) string {
	if ext := path.Ext(name); ext != "" && ext != name {
		return strings.TrimSuffix(name, ext)
	}
	return name
}

func normalizeContentType(contentType string) string {
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
