package pytree

import "path/filepath"

// LanguageDetector maps filenames/extensions to languages so hosts can gate
// annotation to buffers a parser exists for.
type LanguageDetector struct {
	extensionMap map[string]string
	filenameMap  map[string]string
}

// NewLanguageDetector seeds the extensions bracepy cares about plus a few
// common neighbors so callers get stable identifiers for non-Python buffers.
func NewLanguageDetector() *LanguageDetector {
	ld := &LanguageDetector{
		extensionMap: make(map[string]string),
		filenameMap:  make(map[string]string),
	}
	ld.extensionMap[".py"] = "python"
	ld.extensionMap[".pyi"] = "python"
	ld.extensionMap[".pyw"] = "python"
	ld.extensionMap[".go"] = "go"
	ld.extensionMap[".js"] = "javascript"
	ld.extensionMap[".ts"] = "typescript"
	ld.extensionMap[".md"] = "markdown"
	ld.extensionMap[".txt"] = "plaintext"
	ld.extensionMap[".yaml"] = "yaml"
	ld.extensionMap[".yml"] = "yaml"
	ld.extensionMap[".json"] = "json"
	ld.extensionMap[".toml"] = "toml"
	ld.filenameMap["SConstruct"] = "python"
	ld.filenameMap["SConscript"] = "python"
	return ld
}

// Detect returns the best-effort language identifier for a path.
func (ld *LanguageDetector) Detect(path string) string {
	if path == "" {
		return "unknown"
	}
	base := filepath.Base(path)
	if lang, ok := ld.filenameMap[base]; ok {
		return lang
	}
	if lang, ok := ld.extensionMap[filepath.Ext(base)]; ok {
		return lang
	}
	return "unknown"
}

// IsPython reports whether the path looks like a Python source file.
func (ld *LanguageDetector) IsPython(path string) bool {
	return ld.Detect(path) == "python"
}
