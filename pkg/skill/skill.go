// Package skill loads and discovers skill packages: directories containing
// a SKILL.md manifest with YAML frontmatter and an optional scripts/ subtree
// of source files. The evaluator treats skill directories as read-only
// input.
package skill

import (
	"path/filepath"
	"strings"
)

// ManifestFileName is the manifest every skill directory must carry
const ManifestFileName = "SKILL.md"

// ScriptsDirName is the conventional subtree for a skill's source files
const ScriptsDirName = "scripts"

// LangUnknown marks scripts whose extension maps to no supported language
const LangUnknown = "unknown"

// ScriptFile is one source file discovered under a skill's scripts/ subtree
type ScriptFile struct {
	Path     string // absolute path
	RelPath  string // path relative to the skill directory
	Language string // canonical language name, or LangUnknown
}

// Skill is one loaded skill package
type Skill struct {
	Name         string
	Description  string
	Directory    string
	ManifestPath string
	Manifest     string       // SKILL.md body, frontmatter stripped
	ProseFiles   []string     // absolute paths of all markdown documents
	Scripts      []ScriptFile // source files under scripts/, sorted by path
}

// Metadata is the YAML frontmatter shape of a SKILL.md manifest
type Metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// scriptLanguages maps file extensions to canonical scanner languages
var scriptLanguages = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".mjs":  "javascript",
	".cjs":  "javascript",
	".sh":   "bash",
	".bash": "bash",
}

// DetectLanguage returns the canonical language for a script path based on
// its extension, or LangUnknown.
func DetectLanguage(path string) string {
	if lang, ok := scriptLanguages[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return LangUnknown
}

// SupportedLanguages returns the set of languages script detection can
// produce, used to validate rule sets at startup.
func SupportedLanguages() map[string]bool {
	out := make(map[string]bool, len(scriptLanguages))
	for _, lang := range scriptLanguages {
		out[lang] = true
	}
	return out
}
