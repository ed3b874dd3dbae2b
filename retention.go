package asynclog

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// logFileMeta describes one rotated file found in the log directory
type logFileMeta struct {
	path    string
	modTime time.Time
}

// checkRetention runs a retention pass when the check interval has elapsed.
// Must be called with mu held.
func (b *RotatingBackend) checkRetention(now time.Time) {
	if !b.opts.RetentionEnabled {
		return
	}
	if !b.lastCheck.IsZero() && now.Sub(b.lastCheck) < b.opts.RetentionCheck {
		return
	}
	b.lastCheck = now
	b.pruneExpired(now)
}

// PruneExpired runs a retention pass immediately and returns the number of deleted files
func (b *RotatingBackend) PruneExpired() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.opts.Now()
	b.lastCheck = now
	return b.pruneExpired(now)
}

// pruneExpired deletes files older than the retention window, oldest first.
// The open file is never deleted; with no open file the newest one is kept.
func (b *RotatingBackend) pruneExpired(now time.Time) int {
	files, err := b.listLogFiles()
	if err != nil {
		b.opts.Report("%v\n", err)
		return 0
	}
	if len(files) <= 1 {
		return 0
	}

	sort.Slice(files, func(i, j int) bool { return files[i].modTime.Before(files[j].modTime) })

	keep := files[len(files)-1].path
	if b.file != nil {
		keep = b.file.path
	}

	deleted := 0
	for _, f := range files {
		if f.path == keep {
			continue
		}
		if now.Sub(f.modTime) <= b.opts.Retention {
			continue
		}
		if err := os.Remove(f.path); err != nil {
			if !os.IsNotExist(err) {
				b.opts.Report("failed to remove expired log file '%s': %v\n", f.path, err)
			}
			continue
		}
		deleted++
		b.deletions.Add(1)
	}
	return deleted
}

// listLogFiles returns the regular files in the directory that this backend
// could have created
func (b *RotatingBackend) listLogFiles() ([]logFileMeta, error) {
	entries, err := os.ReadDir(b.opts.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmtErrorf("failed to read log directory '%s' for retention: %w", b.opts.Directory, err)
	}

	var files []logFileMeta
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if !isRotatedFileName(name, b.opts.Name, b.opts.Extension) {
			continue
		}
		info, errInfo := entry.Info()
		if errInfo != nil {
			continue
		}
		files = append(files, logFileMeta{
			path:    filepath.Join(b.opts.Directory, name),
			modTime: info.ModTime(),
		})
	}
	return files, nil
}

// isRotatedFileName reports whether fname has the <name><YYYYMMDDHHMMSS>-<counter>.<ext>
// shape produced by fileName
func isRotatedFileName(fname, name, ext string) bool {
	rest, ok := strings.CutPrefix(fname, name)
	if !ok {
		return false
	}
	if ext != "" {
		if rest, ok = strings.CutSuffix(rest, "."+ext); !ok {
			return false
		}
	}

	stamp, counter, ok := strings.Cut(rest, "-")
	return ok && len(stamp) == len(rotateTimeLayout) && isDigits(stamp) && isDigits(counter)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
