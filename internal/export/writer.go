package export

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

var ErrInvalidFileName = errors.New("export: invalid file name")

// maxFileNameBytes is the common NAME_MAX of Linux and macOS filesystems.
const maxFileNameBytes = 255

// Writer renders documents into files under Dir.
type Writer struct {
	Dir      string
	Renderer *Renderer
}

// Write renders doc to <Dir>/<doc.FileName>.html and returns the path. The
// file is written to a temporary name first and renamed into place.
func (w *Writer) Write(doc Document) (string, error) {
	name := strings.TrimSpace(doc.FileName)
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, doc.FileName)
	}
	if len(name)+len(".html") > maxFileNameBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrInvalidFileName, len(name)+len(".html"), maxFileNameBytes)
	}
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return "", fmt.Errorf("%w: %q contains control characters", ErrInvalidFileName, doc.FileName)
	}

	var buf bytes.Buffer
	if err := w.Renderer.Render(&buf, doc); err != nil {
		return "", err
	}

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	tmp, err := os.CreateTemp(w.Dir, ".slip-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close export: %w", err)
	}

	path := filepath.Join(w.Dir, name+".html")
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("move export into place: %w", err)
	}
	return path, nil
}
