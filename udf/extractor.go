package udf

import (
	"io"

	"github.com/pkg/errors"

	"panasonic-rec/extract"
	"panasonic-rec/fserr"
)

// extractFile streams each extent of e to path in SectorSize windows,
// truncating the final block to the file's recorded InformationLength,
// per §4.3 File extraction.
func (fs *FS) extractFile(e entry, path string) error {
	modTime := e.modTime.Time()

	if extract.AlreadyExtracted(fs.hostfs, path, e.size, modTime) {
		fs.sink.Info("%s already extracted, skipping", path)
		return nil
	}

	return extract.WriteFile(fs.hostfs, fs.sink, path, modTime, func(out io.Writer) error {
		if e.allocKind == allocEmbedded {
			if _, err := out.Write(e.embedded); err != nil {
				return errors.Wrapf(fserr.ShortWrite, "writing %s: %v", path, err)
			}
			return nil
		}

		extents, err := e.extents()
		if err != nil {
			return err
		}

		remaining := e.size
		for _, ex := range extents {
			if remaining <= 0 {
				break
			}
			blocks := (ex.length + SectorSize - 1) / SectorSize
			for b := uint32(0); b < blocks && remaining > 0; b++ {
				block, err := fs.readBlock(fs.partitionStart + ex.block + b)
				if err != nil {
					return errors.Wrapf(fserr.ReadError, "reading extent at block %d: %v", ex.block+b, err)
				}

				want := int64(len(block))
				if want > remaining {
					want = remaining
				}
				if _, err := out.Write(block[:want]); err != nil {
					return errors.Wrapf(fserr.ShortWrite, "writing %s: %v", path, err)
				}
				remaining -= want
			}
		}
		return nil
	})
}
