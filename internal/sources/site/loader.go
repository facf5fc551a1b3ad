package site

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/navkit/internal/utils"
)

// placeholderRe matches ${VAR} placeholders in the declaration.
var placeholderRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Loader handles loading and parsing of site.yaml
type Loader struct {
	fs       afero.Fs
	filePath string
}

// NewLoader creates a new site loader reading from fs.
func NewLoader(fs afero.Fs, filePath string) *Loader {
	return &Loader{
		fs:       fs,
		filePath: filePath,
	}
}

// Path returns the declaration path.
func (l *Loader) Path() string { return l.filePath }

// Load reads and parses the site declaration.
func (l *Loader) Load() (*Document, error) {
	f, err := l.fs.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open site file: %w", err)
	}
	defer utils.Close(f)

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read site file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a declaration held in memory (used for Redis snapshots).
// Raw keeps the bytes as written, placeholders unexpanded; the checksum covers
// the expanded form so a changed variable counts as a change.
func Parse(raw []byte) (*Document, error) {
	data := expandPlaceholders(raw)

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse site yaml: %w", err)
	}

	sum := sha256.Sum256(data)
	doc.Checksum = hex.EncodeToString(sum[:])
	doc.Raw = raw
	return &doc, nil
}

// expandPlaceholders replaces ${VAR} with the environment value (empty if unset).
// Example: password: ${DEMO_PASSWORD}
func expandPlaceholders(data []byte) []byte {
	return placeholderRe.ReplaceAllFunc(data, func(m []byte) []byte {
		name := placeholderRe.FindSubmatch(m)[1]
		return []byte(os.Getenv(string(name)))
	})
}
