package meihdfs

import (
	"io"

	"github.com/pkg/errors"

	"panasonic-rec/extract"
	"panasonic-rec/fserr"
)

// copyChunk is ASIZE: BCNT*BSIZE bytes, the window every extract path
// reads and writes in (§9 Streaming without unbounded buffers).
const copyChunk = ASIZE

// extractFile implements the §4.2 File extraction algorithm: stream each
// non-empty run in order, applying the version-2.3+ factor multiplier,
// truncating to the file's recorded size, and skipping already-dumped
// files per the §4.2 Dedupe rule.
func (fs *FS) extractFile(ino Inode, path string) error {
	modTime := ino.ModTime(fs.super.Version)

	if extract.AlreadyExtracted(fs.hostfs, path, ino.Size, modTime) {
		fs.sink.Info("%s already extracted, skipping", path)
		return nil
	}

	return extract.WriteFile(fs.hostfs, fs.sink, path, modTime, func(out io.Writer) error {
		remaining := ino.Size
		buf := make([]byte, copyChunk)

		for _, run := range ino.Runs {
			if remaining <= 0 {
				break
			}
			if err := fs.reader.Seek(fs.super.Start + run.byteOffset()); err != nil {
				return errors.Wrap(err, "seek to run failed")
			}

			runBytes := int64(run.Len) * int64(ino.Factor) * BCNT * 4
			for runBytes > 0 && remaining > 0 {
				want := runBytes
				if want > copyChunk {
					want = copyChunk
				}
				if want > remaining {
					want = remaining
				}

				chunk := buf[:want]
				n, err := fs.reader.ReadRecoverable(chunk)
				if err != nil {
					return errors.Wrapf(fserr.ReadError, "reading run at block %08x: %v", run.Start, err)
				}

				if _, err := out.Write(chunk[:n]); err != nil {
					return errors.Wrapf(fserr.ShortWrite, "writing %s: %v", path, err)
				}

				runBytes -= want
				remaining -= want
			}
		}
		return nil
	})
}
