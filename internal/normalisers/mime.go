package normalisers

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// extensionTypes overrides the platform MIME table for formats it gets
// wrong or does not know.
var extensionTypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".text":     "text/plain",
	".go":       "text/x-go",
	".py":       "text/x-python",
	".rs":       "text/x-rust",
	".java":     "text/x-java",
	".c":        "text/x-c",
	".h":        "text/x-c",
	".cpp":      "text/x-c++",
	".rb":       "text/x-ruby",
	".sh":       "text/x-shellscript",
	".sql":      "text/x-sql",
	".csv":      "text/csv",
	".yaml":     "text/yaml",
	".yml":      "text/yaml",
	".toml":     "text/toml",
	".js":       "text/javascript",
	".ts":       "text/typescript",
	".json":     "application/json",
	".xml":      "application/xml",
	".html":     "text/html",
	".htm":      "text/html",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// DetectMIMEType maps a file name to a MIME type by extension, falling back
// to content sniffing. Parameters such as charset are stripped.
func DetectMIMEType(name string, content []byte) string {
	ext := strings.ToLower(filepath.Ext(name))
	if mt, ok := extensionTypes[ext]; ok {
		return mt
	}
	if ext != "" {
		if mt := mime.TypeByExtension(ext); mt != "" {
			return stripParams(mt)
		}
	}
	if len(content) == 0 {
		return "text/plain"
	}
	return stripParams(mimetype.Detect(content).String())
}

func stripParams(mt string) string {
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.TrimSpace(mt)
}
