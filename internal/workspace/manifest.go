package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// ManifestName is the file name of a project manifest.
const ManifestName = "remedy.toml"

// Manifest is the decoded form of remedy.toml.
type Manifest struct {
	Path      string           `toml:"-"`
	Root      string           `toml:"-"`
	Project   ProjectConfig    `toml:"project" validate:"required"`
	Analyzers []AnalyzerConfig `toml:"analyzers" validate:"dive"`
}

type ProjectConfig struct {
	Name       string   `toml:"name" validate:"required"`
	Language   string   `toml:"language" validate:"required,lowercase"`
	Extensions []string `toml:"extensions" validate:"dive,startswith=."`
	Exclude    []string `toml:"exclude" validate:"dive,required"`
}

type AnalyzerConfig struct {
	Origin string `toml:"origin" validate:"required"`
}

var defaultExtensions = map[string][]string{
	"go":       {".go"},
	"text":     {".txt"},
	"markdown": {".md", ".markdown"},
	"yaml":     {".yaml", ".yml"},
	"toml":     {".toml"},
}

var manifestValidator = validator.New(validator.WithRequiredStructEnabled())

// FindManifest resolves path to a manifest file. A directory is searched
// upwards for remedy.toml.
func FindManifest(path string) (string, error) {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return abs, nil
	}
	for dir := abs; ; {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("%s: %w", path, ErrNoManifest)
}

// LoadManifest decodes and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("project") {
		return nil, fmt.Errorf("%s: missing [project]", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	m.Project.Name = strings.TrimSpace(m.Project.Name)
	m.Project.Language = strings.TrimSpace(m.Project.Language)
	if err := manifestValidator.Struct(&m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, describeValidation(err))
	}
	m.Path = path
	m.Root = filepath.Dir(path)
	return &m, nil
}

// FileExtensions returns the configured extensions or the language defaults.
func (m *Manifest) FileExtensions() []string {
	if len(m.Project.Extensions) > 0 {
		return m.Project.Extensions
	}
	return defaultExtensions[m.Project.Language]
}

// RuleRefs returns the analyzer references in manifest order.
func (m *Manifest) RuleRefs() []RuleRef {
	out := make([]RuleRef, 0, len(m.Analyzers))
	for _, a := range m.Analyzers {
		out = append(out, RuleRef{Origin: a.Origin})
	}
	return out
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", manifestKey(fe.Namespace()), fe.Tag()))
	}
	return fmt.Errorf("invalid manifest: %s", strings.Join(parts, ", "))
}

// manifestKey turns "Manifest.Project.Name" into "project.name".
func manifestKey(ns string) string {
	ns = strings.TrimPrefix(ns, "Manifest.")
	return strings.ToLower(ns)
}
