package batch

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	gzip "github.com/klauspost/pgzip"
)

// inputSuffixes are tried in order when looking for the input of a job.
var inputSuffixes = []string{".xml", ".xml.gz", ".xml.zst"}

// findInput returns the first existing input file for a job basename. If
// none exists, the plain XML name is returned and opening it will fail.
func findInput(base string) string {
	for _, suffix := range inputSuffixes {
		if _, err := os.Stat(base + suffix); err == nil {
			return base + suffix
		}
	}
	return base + inputSuffixes[0]
}

// readCloser closes a decompressor and the underlying file.
type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() error {
	var errs []error
	for _, f := range r.closers {
		errs = append(errs, f())
	}
	return errors.Join(errs...)
}

// OpenInput opens a file and returns a reader, detecting if the file is
// compressed by its suffix.
func OpenInput(filename string) (io.ReadCloser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasSuffix(filename, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &readCloser{Reader: zr, closers: []func() error{zr.Close, f.Close}}, nil
	case strings.HasSuffix(filename, ".zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &readCloser{Reader: zr, closers: []func() error{
			func() error { zr.Close(); return nil },
			f.Close,
		}}, nil
	default:
		return f, nil
	}
}

// AtomicFile is written to a temporary file next to its destination and
// renamed on Commit, so readers never see a partial output.
type AtomicFile struct {
	io.Writer
	f    *os.File
	zw   *zstd.Encoder
	dst  string
	done bool
}

// CreateOutput starts writing dst, zstd compressed if compress is set.
func CreateOutput(dst string, compress bool) (*AtomicFile, error) {
	f, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".tmp-*")
	if err != nil {
		return nil, err
	}
	af := &AtomicFile{Writer: f, f: f, dst: dst}
	if compress {
		zw, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			os.Remove(f.Name())
			return nil, err
		}
		af.zw, af.Writer = zw, zw
	}
	return af, nil
}

// Commit flushes and moves the file into place.
func (af *AtomicFile) Commit() error {
	af.done = true
	if af.zw != nil {
		if err := af.zw.Close(); err != nil {
			af.f.Close()
			os.Remove(af.f.Name())
			return err
		}
	}
	// CreateTemp uses 0600.
	if err := af.f.Chmod(0644); err != nil {
		af.f.Close()
		os.Remove(af.f.Name())
		return err
	}
	if err := af.f.Close(); err != nil {
		os.Remove(af.f.Name())
		return err
	}
	return os.Rename(af.f.Name(), af.dst)
}

// Abort removes the temporary file, unless the file has been committed.
func (af *AtomicFile) Abort() {
	if af.done {
		return
	}
	af.done = true
	if af.zw != nil {
		af.zw.Close()
	}
	af.f.Close()
	os.Remove(af.f.Name())
}
