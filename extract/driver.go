package extract

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"

	"panasonic-rec/report"
)

// AlreadyExtracted implements the §4.2/§4.3 dedupe rule (§8 law 7): a
// prior extraction is skipped, not re-copied, when path already holds
// the expected size and modification time (compared at one-second
// resolution, the source formats' recorded granularity).
func AlreadyExtracted(fs HostFS, path string, size int64, modTime time.Time) bool {
	stat, err := fs.Stat(path)
	if err != nil {
		return false
	}
	return stat.Size() == size && stat.ModTime().Unix() == modTime.Unix()
}

// EnsureDir recreates a source directory at path on fs, mode 0775.
func EnsureDir(fs HostFS, path string) error {
	if err := fs.MkdirAll(path, 0775); err != nil {
		return errors.Wrapf(err, "mkdir %s failed", path)
	}
	return nil
}

// WriteFile opens path for truncate-write, lets write stream the file's
// contents into it, then applies modTime. A failure to set mtime is
// reported through sink rather than failing the extraction, matching
// every reader's existing tolerance for a read-only or exotic host
// filesystem that rejects Chtimes.
func WriteFile(fs HostFS, sink report.Sink, path string, modTime time.Time, write func(io.Writer) error) error {
	out, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return errors.Wrapf(err, "cannot create file %s", path)
	}

	if err := write(out); err != nil {
		out.Close()
		return err
	}

	if err := out.Close(); err != nil {
		return errors.Wrapf(err, "closing %s failed", path)
	}

	if err := fs.Chtimes(path, modTime, modTime); err != nil {
		sink.Warn("failed to set mtime on %s: %v", path, err)
	}
	return nil
}
