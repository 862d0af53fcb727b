// Package loader reads tedit configuration sources into generic maps.
//
// Files are decoded according to their extension (TOML or YAML). The
// environment loader maps TEDIT_ variables onto the same dotted paths, so
// every source can be merged with DeepMerge before the typed configuration
// is read.
package loader

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Loader is implemented by every configuration source.
type Loader interface {
	// Load returns nil, nil when the source does not exist.
	Load() (map[string]any, error)
}

// FileSystem is the file access used by file loaders.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem with the os package.
type OSFS struct{}

func (OSFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func (OSFS) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

// DefaultFS returns the OS file system.
func DefaultFS() FileSystem {
	return OSFS{}
}

// Format is a configuration file syntax.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatTOML
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// ErrUnsupportedFormat is returned for files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// DetectFormat picks a format from the file extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatUnknown
	}
}
