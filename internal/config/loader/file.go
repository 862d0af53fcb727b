package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"regexp"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileLoader decodes one TOML or YAML file.
type FileLoader struct {
	fs     FileSystem
	path   string
	format Format
}

// NewFileLoader returns a loader for path. The format comes from the
// extension.
func NewFileLoader(path string) (*FileLoader, error) {
	return NewFileLoaderWithFS(DefaultFS(), path)
}

// NewFileLoaderWithFS is like NewFileLoader with a custom file system.
func NewFileLoaderWithFS(fsys FileSystem, path string) (*FileLoader, error) {
	format := DetectFormat(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return &FileLoader{fs: fsys, path: path, format: format}, nil
}

// Path returns the file the loader reads.
func (l *FileLoader) Path() string {
	return l.path
}

// Format returns the decoding format.
func (l *FileLoader) Format() Format {
	return l.format
}

// Load reads and decodes the file. A missing file is not an error.
func (l *FileLoader) Load() (map[string]any, error) {
	data, err := l.fs.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", l.path, err)
	}
	return Decode(l.format, l.path, data)
}

// LoadFromReader decodes the reader's content.
func (l *FileLoader) LoadFromReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Decode(l.format, "<reader>", data)
}

// Decode parses data in the given format. source names the data in
// errors.
func Decode(format Format, source string, data []byte) (map[string]any, error) {
	var out map[string]any
	if err := Unmarshal(format, source, data, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = make(map[string]any)
	}
	return out, nil
}

// Unmarshal decodes data into v, which may be a map or a tagged struct.
// Syntax errors are returned as *ParseError.
func Unmarshal(format Format, source string, data []byte, v any) error {
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, v)
	case FormatYAML:
		err = yaml.Unmarshal(data, v)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, source)
	}
	if err != nil {
		return newParseError(source, err)
	}
	return nil
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

func newParseError(source string, err error) *ParseError {
	pe := &ParseError{Path: source, Message: err.Error(), Err: err}

	var de *toml.DecodeError
	if errors.As(err, &de) {
		pe.Line, pe.Column = de.Position()
		return pe
	}
	if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
		pe.Line, _ = strconv.Atoi(m[1])
	}
	return pe
}

// ParseError reports a malformed configuration file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
