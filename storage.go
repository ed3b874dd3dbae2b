package asynclog

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// writeBufferSize is the per-file write buffer
const writeBufferSize = 32 * 1024

// logFile is an open append-mode file with a write buffer in front.
// out is the buffer's destination, normally file itself.
type logFile struct {
	file *os.File
	out  io.Writer
	w    *bufio.Writer
	path string
	size int64
}

// openLogFile creates parent directories and opens path for appending
func openLogFile(path string) (*logFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmtErrorf("failed to create log directory '%s': %w", filepath.Dir(path), err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmtErrorf("failed to open/create log file '%s': %w", path, err)
	}

	lf := &logFile{
		file: file,
		out:  file,
		w:    bufio.NewWriterSize(file, writeBufferSize),
		path: path,
	}
	if fi, errStat := file.Stat(); errStat == nil {
		lf.size = fi.Size()
	}
	return lf, nil
}

// write appends data and applies the durability level
func (lf *logFile) write(data []byte, level FlushLevel) (int, error) {
	n, err := lf.w.Write(data)
	lf.size += int64(n)
	if err != nil {
		lf.w.Reset(lf.out)
		return n, fmtErrorf("failed to write to log file '%s': %w", lf.path, err)
	}

	switch level {
	case FlushOnly:
		err = lf.flush()
	case FlushSync:
		err = lf.sync()
	}
	return n, err
}

// flush hands buffered bytes to the OS. bufio.Writer keeps its first error
// forever, so a failed flush drops the buffered bytes and the next write
// goes to the file again.
func (lf *logFile) flush() error {
	if err := lf.w.Flush(); err != nil {
		lf.w.Reset(lf.out)
		return fmtErrorf("failed to flush log file '%s': %w", lf.path, err)
	}
	return nil
}

// sync flushes and forces the file to stable storage
func (lf *logFile) sync() error {
	if err := lf.flush(); err != nil {
		return err
	}
	if err := lf.file.Sync(); err != nil {
		return fmtErrorf("failed to sync log file '%s': %w", lf.path, err)
	}
	return nil
}

// close syncs and closes the file
func (lf *logFile) close() error {
	err := lf.sync()
	if errClose := lf.file.Close(); errClose != nil {
		err = combineErrors(err, fmtErrorf("failed to close log file '%s': %w", lf.path, errClose))
	}
	return err
}

// FileOptions configures a FileBackend
type FileOptions struct {
	Path       string
	FlushLevel FlushLevel
	Report     ReportFunc
}

// FileBackend appends every record to one fixed file
type FileBackend struct {
	backendCounters
	mu     sync.Mutex
	opts   FileOptions
	file   *logFile
	closed bool
}

// NewFileBackend opens opts.Path for appending. An open failure is reported
// and retried on the next Flush.
func NewFileBackend(opts FileOptions) (*FileBackend, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return nil, fmtErrorf("file backend path cannot be empty")
	}
	if opts.Report == nil {
		opts.Report = stderrReport
	}

	b := &FileBackend{opts: opts}
	b.open()
	return b, nil
}

// open must be called with mu held
func (b *FileBackend) open() bool {
	lf, err := openLogFile(b.opts.Path)
	if err != nil {
		b.opts.Report("%v\n", err)
		return false
	}
	b.file = lf
	return true
}

// Flush appends the record
func (b *FileBackend) Flush(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		b.writeErrors.Add(1)
		b.opts.Report("write to closed file backend '%s'\n", b.opts.Path)
		return
	}
	if b.file == nil && !b.open() {
		b.writeErrors.Add(1)
		return
	}

	n, err := b.file.write(data, b.opts.FlushLevel)
	b.bytesWritten.Add(uint64(n))
	if err != nil {
		b.writeErrors.Add(1)
		b.opts.Report("%v\n", err)
	}
}

// Sync flushes the write buffer and forces the file to disk
func (b *FileBackend) Sync() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.file == nil {
		return nil
	}
	return b.file.sync()
}

// Close syncs and closes the file
func (b *FileBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	if b.file == nil {
		return nil
	}
	err := b.file.close()
	b.file = nil
	return err
}

// Kind returns BackendFile
func (b *FileBackend) Kind() BackendKind {
	return BackendFile
}

// Path returns the target file path
func (b *FileBackend) Path() string {
	return b.opts.Path
}
