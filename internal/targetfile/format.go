package targetfile

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/starford/chaser/internal/apperr"
)

// Format is the structural family of a target file.
type Format int

const (
	// List is a JSON document.
	List Format = iota + 1
	// Mapping is a YAML document.
	Mapping
	// Table is a TOML document.
	Table
	// Rows is a CSV file with a header line.
	Rows
)

func (f Format) String() string {
	switch f {
	case List:
		return "json"
	case Mapping:
		return "yaml"
	case Table:
		return "toml"
	case Rows:
		return "csv"
	default:
		return "unknown"
	}
}

// Skeleton returns the smallest valid document of the format.
func (f Format) Skeleton() []byte {
	switch f {
	case List:
		return []byte("[]")
	case Mapping:
		return []byte("paths: []")
	case Table:
		return []byte("paths = []")
	case Rows:
		return []byte("path,type\n")
	default:
		return nil
	}
}

// FormatFromPath detects the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.TrimPrefix(filepath.Ext(path), ".") {
	case "json":
		return List, nil
	case "yaml", "yml":
		return Mapping, nil
	case "toml":
		return Table, nil
	case "csv":
		return Rows, nil
	default:
		return 0, fmt.Errorf("targetfile: %s: %w", path, apperr.ErrUnsupportedFormat)
	}
}

// Supported reports whether path has a recognised extension.
func Supported(path string) bool {
	_, err := FormatFromPath(path)
	return err == nil
}
