package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// MaxLineSize caps a single log line. Template-heavy diagnostics routinely
// exceed bufio's 64 KiB default.
const MaxLineSize = 16 << 20

// LineReader splits a diagnostic log into lines. A leading BOM and the CR of
// CRLF endings are removed; nothing else about the text is touched.
type LineReader struct {
	sc     *bufio.Scanner
	line   string
	lineNo uint32
	offset int64
	hadBOM bool
}

// NewLineReader wraps r. The reader is consumed sequentially and never rewound.
func NewLineReader(r io.Reader) *LineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return &LineReader{sc: sc}
}

// Next advances to the next line. It returns false at EOF or on error; check Err.
func (lr *LineReader) Next() bool {
	if !lr.sc.Scan() {
		return false
	}
	raw := lr.sc.Bytes()
	lr.offset += int64(len(raw)) + 1
	if lr.lineNo == 0 {
		raw, lr.hadBOM = removeBOM(raw)
	}
	lr.line = string(trimLineEnding(raw))
	lr.lineNo++
	return true
}

// Text returns the current line without its line ending.
func (lr *LineReader) Text() string { return lr.line }

// LineNo is the 1-based number of the current line.
func (lr *LineReader) LineNo() uint32 { return lr.lineNo }

// Offset approximates the number of bytes consumed so far (used for progress only).
func (lr *LineReader) Offset() int64 { return lr.offset }

// HadBOM reports whether the first line started with a UTF-8 BOM.
func (lr *LineReader) HadBOM() bool { return lr.hadBOM }

func (lr *LineReader) Err() error { return lr.sc.Err() }

// ReadLines reads every line of r into memory.
func ReadLines(r io.Reader) ([]string, error) {
	lr := NewLineReader(r)
	var out []string
	for lr.Next() {
		out = append(out, lr.Text())
	}
	return out, lr.Err()
}

// Log is an opened diagnostic log on disk.
type Log struct {
	Path string
	Size int64
	f    *os.File
}

// OpenLog opens path for sequential reading.
func OpenLog(path string) (*Log, error) {
	// #nosec G304 -- path is provided by the caller
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return &Log{Path: path, Size: st.Size(), f: f}, nil
}

// Lines returns a LineReader over the log. Call it once.
func (l *Log) Lines() *LineReader {
	return NewLineReader(l.f)
}

// Reader exposes the raw file for consumers that split lines themselves.
func (l *Log) Reader() io.Reader { return l.f }

func (l *Log) Close() error {
	if l == nil || l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
