package main

import (
	"io"
	"os"
	"sync"
)

// The log file is cut back to its newest keepLogBytes once it grows past
// maxLogBytes.
const (
	maxLogBytes  = 6 << 20
	keepLogBytes = 5 << 20
)

type logFileWriter struct {
	mu   sync.Mutex
	file *os.File
}

func newLogFileWriter(path string) (*logFileWriter, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	w := &logFileWriter{file: file}
	if err := w.trim(); err != nil {
		file.Close()
		return nil, err
	}
	return w, nil
}

func (w *logFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	if err != nil {
		return n, err
	}
	return n, w.trim()
}

func (w *logFileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

func (w *logFileWriter) trim() error {
	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size <= maxLogBytes {
		return nil
	}

	tail := make([]byte, keepLogBytes)
	n, err := w.file.ReadAt(tail, size-keepLogBytes)
	if err != nil && err != io.EOF {
		return err
	}
	if err := w.file.Truncate(0); err != nil {
		return err
	}
	// O_APPEND writes land at the new end after truncation.
	_, err = w.file.Write(tail[:n])
	return err
}
