package export

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
)

// FileOutput writes downloads into a directory and previews into temporary files.
// A document becomes visible under its final name only once it was written completely.
type FileOutput struct {
	Dir string

	// write copies the document into an open file; nil writes it in one call.
	write func(w io.Writer, pdf []byte) error
}

func (o *FileOutput) Save(_ context.Context, filename string, pdf []byte) error {
	if err := os.MkdirAll(o.Dir, 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(o.Dir, ".progress-report-*.pdf")
	if err != nil {
		return err
	}
	if err := o.fill(f, pdf); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	if err := os.Rename(f.Name(), filepath.Join(o.Dir, filename)); err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	return nil
}

// Preview writes the document to a new temporary file and returns its file URL.
func (o *FileOutput) Preview(_ context.Context, pdf []byte) (string, error) {
	f, err := os.CreateTemp("", "progress-report-*.pdf")
	if err != nil {
		return "", err
	}
	if err := o.fill(f, pdf); err != nil {
		return "", fmt.Errorf("failed to write preview: %w", err)
	}
	abs, err := filepath.Abs(f.Name())
	if err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// fill writes pdf into f and closes it. On failure the file is removed.
func (o *FileOutput) fill(f *os.File, pdf []byte) error {
	write := o.write
	if write == nil {
		write = func(w io.Writer, pdf []byte) error {
			_, err := w.Write(pdf)
			return err
		}
	}

	err := write(f, pdf)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	return nil
}
