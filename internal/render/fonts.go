package render

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-pdf/fpdf"
)

// CoreFont is drawn when a configured TrueType font is not installed.
const CoreFont = "Helvetica"

// FontRegistry loads TrueType fonts from a directory and keeps their bytes
// for the life of the process. It is safe for concurrent use.
type FontRegistry struct {
	dir string

	mu    sync.Mutex
	fonts map[string][]byte // nil value: looked up, not installed
}

func NewFontRegistry(dir string) *FontRegistry {
	return &FontRegistry{
		dir:   dir,
		fonts: make(map[string][]byte),
	}
}

// Path returns where the font called name is expected on disk.
func (r *FontRegistry) Path(name string) string {
	return filepath.Join(r.dir, strings.TrimSuffix(name, ".ttf")+".ttf")
}

// Load returns the bytes of <dir>/<name>.ttf, or nil when no such file exists.
func (r *FontRegistry) Load(name string) ([]byte, error) {
	if name == "" || filepath.Base(name) != name {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.fonts[name]; ok {
		return b, nil
	}
	b, err := os.ReadFile(r.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Font not installed, using core font", "font", name, "path", r.Path(name), "fallback", CoreFont)
		r.fonts[name] = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", name, err)
	}
	r.fonts[name] = b
	return b, nil
}

// Face is the font family selected for one document.
type Face struct {
	Family string
	UTF8   bool
	// Translate converts UTF-8 text for core fonts; identity for TrueType fonts.
	Translate func(string) string
}

// Apply registers the font called name on pdf in regular and bold style.
// When the font is not installed the core font is used with cp1252 translation.
func (r *FontRegistry) Apply(pdf *fpdf.Fpdf, name string) (Face, error) {
	var b []byte
	if r != nil {
		var err error
		if b, err = r.Load(name); err != nil {
			return Face{}, err
		}
	}
	if b == nil {
		return Face{
			Family:    CoreFont,
			Translate: pdf.UnicodeTranslatorFromDescriptor(""),
		}, nil
	}

	pdf.AddUTF8FontFromBytes(name, "", b)
	pdf.AddUTF8FontFromBytes(name, "B", b)
	if err := pdf.Error(); err != nil {
		return Face{}, fmt.Errorf("register font %s: %w", name, err)
	}
	return Face{
		Family:    name,
		UTF8:      true,
		Translate: func(s string) string { return s },
	}, nil
}
