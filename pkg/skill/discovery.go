package skill

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// Discovery finds skill packages under configured catalog directories
type Discovery struct {
	catalogDirs  []string
	excludeGlobs []string
}

// Option configures a Discovery
type Option func(*Discovery) error

// WithCatalogDirs sets the catalog directories to search
func WithCatalogDirs(dirs ...string) Option {
	return func(d *Discovery) error {
		if len(dirs) == 0 {
			return errors.New("at least one catalog directory must be specified")
		}
		d.catalogDirs = dirs
		return nil
	}
}

// WithExcludeGlobs sets doublestar patterns that filter script discovery,
// matched against each script's path relative to its skill directory.
func WithExcludeGlobs(globs ...string) Option {
	return func(d *Discovery) error {
		for _, g := range globs {
			if !doublestar.ValidatePattern(g) {
				return errors.Errorf("invalid exclude pattern %q", g)
			}
		}
		d.excludeGlobs = globs
		return nil
	}
}

// NewDiscovery creates a skill discovery instance
func NewDiscovery(opts ...Option) (*Discovery, error) {
	d := &Discovery{}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	if len(d.catalogDirs) == 0 {
		d.catalogDirs = []string{"."}
	}
	return d, nil
}

// DiscoverSkills loads every skill directly under the catalog directories.
// Directories without a loadable SKILL.md are skipped silently; a catalog
// directory that cannot be read at all is an input error.
func (d *Discovery) DiscoverSkills() ([]*Skill, error) {
	var skills []*Skill
	for _, dir := range d.catalogDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read catalog directory %s", dir)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			sk, err := d.Load(filepath.Join(dir, entry.Name()))
			if err != nil {
				continue
			}
			skills = append(skills, sk)
		}
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i].Directory < skills[j].Directory })
	return skills, nil
}

// Load loads a single skill from its directory: manifest frontmatter and
// body, all prose documents, and the scripts/ subtree.
func (d *Discovery) Load(dir string) (*Skill, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "skill directory %s not accessible", dir)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%s is not a directory", dir)
	}

	manifestPath := filepath.Join(dir, ManifestFileName)
	content, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", manifestPath)
	}

	name, description, err := parseFrontmatter(content)
	if err != nil {
		return nil, err
	}

	sk := &Skill{
		Name:         name,
		Description:  description,
		Directory:    dir,
		ManifestPath: manifestPath,
		Manifest:     stripFrontmatter(string(content)),
	}

	if err := d.collectFiles(sk); err != nil {
		return nil, err
	}
	return sk, nil
}

// parseFrontmatter extracts and validates the required manifest metadata
func parseFrontmatter(content []byte) (name, description string, err error) {
	md := goldmark.New(goldmark.WithExtensions(meta.Meta))

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return "", "", errors.Wrap(err, "failed to parse manifest markdown")
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return "", "", errors.New("manifest has no frontmatter")
	}

	name, _ = metaData["name"].(string)
	description, _ = metaData["description"].(string)
	if name == "" {
		return "", "", errors.New("skill name is required in frontmatter")
	}
	if description == "" {
		return "", "", errors.New("skill description is required in frontmatter")
	}
	return name, description, nil
}

// stripFrontmatter removes the YAML frontmatter block and returns the body
func stripFrontmatter(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end == -1 {
		return content
	}
	return strings.TrimLeft(strings.Join(lines[end+1:], "\n"), "\n")
}

// collectFiles fills in the skill's prose documents and scripts
func (d *Discovery) collectFiles(sk *Skill) error {
	entries, err := os.ReadDir(sk.Directory)
	if err != nil {
		return errors.Wrapf(err, "failed to list %s", sk.Directory)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".md") {
			sk.ProseFiles = append(sk.ProseFiles, filepath.Join(sk.Directory, entry.Name()))
		}
	}
	sort.Strings(sk.ProseFiles)

	scriptsDir := filepath.Join(sk.Directory, ScriptsDirName)
	if _, err := os.Stat(scriptsDir); err != nil {
		return nil // no scripts subtree is fine
	}

	err = filepath.WalkDir(scriptsDir, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(sk.Directory, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		for _, glob := range d.excludeGlobs {
			if ok, _ := doublestar.Match(glob, rel); ok {
				return nil
			}
		}
		sk.Scripts = append(sk.Scripts, ScriptFile{
			Path:     path,
			RelPath:  rel,
			Language: DetectLanguage(path),
		})
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "failed to walk %s", scriptsDir)
	}

	sort.Slice(sk.Scripts, func(i, j int) bool { return sk.Scripts[i].RelPath < sk.Scripts[j].RelPath })
	return nil
}
