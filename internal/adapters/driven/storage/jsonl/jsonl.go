// Package jsonl reads and writes line-delimited JSON record files:
// one compact JSON object per line, UTF-8, no enclosing array.
package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// maxLineSize is the buffer size for bufio.Scanner (16 MB).
const maxLineSize = 16 << 20

// Ensure Writer and Reader implement the interfaces.
var (
	_ driven.RecordWriter = (*Writer)(nil)
	_ driven.RecordReader = (*Reader)(nil)
)

// Writer appends JSON records to an underlying writer, one per line.
// It is safe for concurrent use.
type Writer struct {
	mu     sync.Mutex
	buf    *bufio.Writer
	enc    *json.Encoder
	closer io.Closer
	count  int
}

// NewWriter wraps w. Close flushes but does not close w.
func NewWriter(w io.Writer) *Writer {
	buf := bufio.NewWriter(w)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return &Writer{buf: buf, enc: enc}
}

// Create truncates or creates path and returns a Writer for it.
func Create(path string) (*Writer, error) {
	return openFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC)
}

// Append opens path for appending, creating it if needed.
func Append(path string) (*Writer, error) {
	return openFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND)
}

func openFile(path string, flag int) (*Writer, error) {
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	w := NewWriter(f)
	w.closer = f
	return w, nil
}

// Write encodes v as one line.
func (w *Writer) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.enc.Encode(v); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	w.count++
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close flushes buffered records and closes the file if Writer opened it.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	err := w.buf.Flush()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
		w.closer = nil
	}
	return err
}

// Reader decodes JSON records line by line.
type Reader struct {
	scanner *bufio.Scanner
	closer  io.Closer
	line    int
}

// NewReader wraps r. Close does not close r.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	return &Reader{scanner: scanner}
}

// Open returns a Reader for the file at path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	r := NewReader(f)
	r.closer = f
	return r, nil
}

// Next decodes the next non-blank line into v.
// Returns io.EOF when no records remain.
func (r *Reader) Next(v any) error {
	for r.scanner.Scan() {
		r.line++
		line := r.scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if err := json.Unmarshal(line, v); err != nil {
			return fmt.Errorf("line %d: %w", r.line, err)
		}
		return nil
	}
	if err := r.scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return io.EOF
}

// Close closes the file if Reader opened it.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// ReadAll decodes every record in the file at path.
func ReadAll[T any](path string) ([]T, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var items []T
	for {
		var item T
		err := r.Next(&item)
		if errors.Is(err, io.EOF) {
			return items, nil
		}
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
}

// WriteAll writes items to path, replacing any existing file.
func WriteAll[T any](path string, items []T) error {
	w, err := Create(path)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := w.Write(item); err != nil {
			_ = w.Close()
			return err
		}
	}
	return w.Close()
}
