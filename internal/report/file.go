package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// CreateFile opens path for writing, truncating it. Paths ending in ".gz" are
// gzip-compressed transparently. Close must be called to flush the output.
func CreateFile(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return &fileWriter{Writer: bufio.NewWriter(f), f: f}, nil
	}
	zw := gzip.NewWriter(f)
	return &fileWriter{Writer: bufio.NewWriter(zw), zw: zw, f: f}, nil
}

type fileWriter struct {
	*bufio.Writer
	zw *gzip.Writer
	f  *os.File
}

func (w *fileWriter) Close() error {
	err := w.Writer.Flush()
	if w.zw != nil {
		if zerr := w.zw.Close(); err == nil {
			err = zerr
		}
	}
	if ferr := w.f.Close(); err == nil {
		err = ferr
	}
	return err
}

// WriteFile creates path and passes it to write, closing it afterwards.
func WriteFile(path string, write func(io.Writer) error) error {
	w, err := CreateFile(path)
	if err != nil {
		return err
	}
	if err := write(w); err != nil {
		w.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
