// Package fonts downloads the TrueType fonts used for PDF exports.
package fonts

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultName = "DejaVuSans.ttf"
	DefaultURL  = "https://github.com/dejavu-fonts/dejavu-fonts/releases/download/version_2_37/dejavu-fonts-ttf-2.37.zip"
)

var ErrNoTTF = errors.New("no TTF files found in the zip archive")

// Font is a font file to install under Name.
type Font struct {
	Name string
	URL  string
}

// Custom returns the font for a user supplied URL. Without a name the URL's
// base name is used; ".ttf" is appended when missing.
func Custom(url, name string) Font {
	if name == "" {
		name = path.Base(strings.SplitN(url, "?", 2)[0])
	}
	if !strings.HasSuffix(name, ".ttf") {
		name += ".ttf"
	}
	return Font{Name: name, URL: url}
}

type Status string

const (
	StatusInstalled Status = "installed"
	StatusExists    Status = "exists"
	StatusFailed    Status = "failed"
)

type Result struct {
	Font   Font
	Path   string
	Status Status
	Err    error
}

type Installer struct {
	Dir    string
	Client *http.Client
	// Concurrency bounds parallel downloads. Zero means one at a time.
	Concurrency int
}

func (i *Installer) client() *http.Client {
	if i.Client != nil {
		return i.Client
	}
	return http.DefaultClient
}

// Install installs every font, skipping files that already exist. A failing
// font does not stop the others; results are returned in input order.
func (i *Installer) Install(ctx context.Context, fonts []Font) ([]Result, error) {
	if err := os.MkdirAll(i.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create fonts dir: %w", err)
	}

	results := make([]Result, len(fonts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(i.Concurrency, 1))
	for idx, f := range fonts {
		g.Go(func() error {
			results[idx] = i.installOne(ctx, f)
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

func (i *Installer) installOne(ctx context.Context, f Font) Result {
	res := Result{Font: f, Path: filepath.Join(i.Dir, filepath.Base(f.Name))}
	if f.Name == "" || filepath.Base(f.Name) != f.Name {
		res.Status, res.Err = StatusFailed, fmt.Errorf("invalid font name %q", f.Name)
		return res
	}

	if _, err := os.Stat(res.Path); err == nil {
		res.Status = StatusExists
		slog.Info("Font already exists", "font", f.Name, "path", res.Path)
		return res
	}

	slog.Info("Downloading font", "font", f.Name, "url", f.URL)
	if err := i.fetch(ctx, f, res.Path); err != nil {
		res.Status, res.Err = StatusFailed, err
		slog.Error("Font install failed", "font", f.Name, "error", err,
			"hint", "download "+f.URL+" manually into "+i.Dir)
		return res
	}
	res.Status = StatusInstalled
	slog.Info("Font installed", "font", f.Name, "path", res.Path)
	return res
}

func (i *Installer) fetch(ctx context.Context, f Font, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return err
	}
	resp, err := i.client().Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(i.Dir, ".download-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	size, err := io.Copy(tmp, resp.Body)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}

	zr, err := zip.NewReader(tmp, size)
	if err != nil {
		// Not an archive: the download is the font itself.
		if err := tmp.Close(); err != nil {
			return err
		}
		return os.Rename(tmp.Name(), target)
	}
	return extract(zr, f.Name, f.Name == DefaultName, target)
}

// extract copies the archive member whose base name is name. With exact
// false the first .ttf member is used when none matches.
func extract(zr *zip.Reader, name string, exact bool, target string) error {
	var match, first *zip.File
	for _, zf := range zr.File {
		if !strings.HasSuffix(zf.Name, ".ttf") {
			continue
		}
		if first == nil {
			first = zf
		}
		if path.Base(zf.Name) == name {
			match = zf
			break
		}
	}
	if first == nil {
		return ErrNoTTF
	}
	if match == nil {
		if exact {
			return fmt.Errorf("%s not found in archive", name)
		}
		match = first
	}

	src, err := match.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.CreateTemp(filepath.Dir(target), ".extract-*")
	if err != nil {
		return err
	}
	defer os.Remove(out.Name())
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Rename(out.Name(), target)
}
