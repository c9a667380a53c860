// Package source opens log inputs, mapping filesystem failures onto the
// not-found/unreadable distinction and unwrapping compressed files.
package source

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	// ErrInputNotFound is returned when the input path does not exist.
	ErrInputNotFound = errors.New("input file not found")

	// ErrInputUnreadable is returned when the input exists but cannot be read.
	ErrInputUnreadable = errors.New("could not open input file")
)

// Compression identifies how an input is encoded.
type Compression string

const (
	None Compression = "none"
	Gzip Compression = "gzip"
	Zstd Compression = "zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Detect inspects the first bytes of a stream.
func Detect(head []byte) Compression {
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		return Gzip
	case bytes.HasPrefix(head, zstdMagic):
		return Zstd
	}
	return None
}

// Input is an opened log file. Close releases the decompressor and the file.
type Input struct {
	io.Reader
	Path        string
	Compression Compression
	closers     []func() error
}

// Close closes everything Open acquired, innermost first.
func (in *Input) Close() error {
	var first error
	for i := len(in.closers) - 1; i >= 0; i-- {
		if err := in.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	in.closers = nil
	return first
}

// Open opens path for reading, decompressing gzip and zstd content.
func Open(path string) (*Input, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrInputUnreadable, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s: is a directory", ErrInputUnreadable, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInputUnreadable, path, err)
	}

	in := &Input{Path: path, closers: []func() error{f.Close}}

	br := bufio.NewReader(f)
	head, err := br.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		_ = in.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrInputUnreadable, path, err)
	}

	in.Compression = Detect(head)
	switch in.Compression {
	case Gzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			_ = in.Close()
			return nil, fmt.Errorf("%w: %s: gzip: %v", ErrInputUnreadable, path, err)
		}
		in.closers = append(in.closers, zr.Close)
		in.Reader = zr
	case Zstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			_ = in.Close()
			return nil, fmt.Errorf("%w: %s: zstd: %v", ErrInputUnreadable, path, err)
		}
		in.closers = append(in.closers, func() error { zr.Close(); return nil })
		in.Reader = zr
	default:
		in.Reader = br
	}

	return in, nil
}
