package meihdfs

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"panasonic-rec/fserr"
	"panasonic-rec/storage"
)

// inodeOffset computes the absolute byte offset of inode id relative to
// the image start, per §4.2 Inode resolution.
func inodeOffset(tables []rawItbl, id uint32) (int64, error) {
	table := int(id) / itblSize
	slot := int(id) % itblSize
	if table >= len(tables) {
		return 0, errors.Wrapf(fserr.InodeOutOfRange, "inode %d beyond %d loaded tables", id, len(tables))
	}
	return tables[table].Entries[slot].blockIndex() * ISIZE, nil
}

// readInode loads and decodes the inode at image-relative byte offset
// off, validating its magic under inodeMagicMask.
func readInode(r *storage.Reader, imageStart, off int64) (Inode, error) {
	if err := r.Seek(imageStart + off); err != nil {
		return Inode{}, errors.Wrap(err, "seek to inode failed")
	}

	var raw rawInode
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return Inode{}, errors.Wrap(err, "failed to read inode")
	}

	if raw.Magic&inodeMagicMask != inodeMagic {
		return Inode{}, errors.Wrapf(fserr.BadMagic, "inode magic 0x%08x at offset 0x%x", raw.Magic, imageStart+off)
	}

	factor := raw.Nothing[0]
	if factor == 0 {
		factor = 1
	}

	runs := make([]BlockRun, 0, inodeRuns)
	for _, run := range raw.Runs {
		if run.Start == 0 {
			break
		}
		runs = append(runs, run)
	}

	return Inode{
		ID:     raw.InodeID,
		Size:   int64(raw.HSize)<<32 | int64(raw.Size),
		Time:   raw.Time1,
		Runs:   runs,
		Factor: factor,
	}, nil
}

// resolveInode loads inode id from the primary tables, falling back to
// shadow superblocks (§4.2 shadow fallback) when the primary's first run
// is empty but its recorded size is non-zero.
func (fs *FS) resolveInode(id uint32) (Inode, error) {
	off, err := inodeOffset(fs.tables, id)
	if err != nil {
		return Inode{}, err
	}

	ino, err := readInode(fs.reader, fs.super.Start, off)
	if err != nil {
		return Inode{}, err
	}
	if len(ino.Runs) > 0 || ino.Size == 0 {
		return ino, nil
	}

	// TruncatedInode: first extent run is empty while size > 0.
	for shadow := int64(1); ; shadow++ {
		if shadow > int64(fs.maxShadowProbe) {
			return Inode{}, errors.Wrapf(fserr.TruncatedInode, "inode %d: all shadow copies exhausted", id)
		}
		shadowStart := fs.super.Start + shadow*GSIZE*ASIZE
		shadowTables, err := discoverITables(fs.reader, shadowStart, fs.super.ITables(), fs.sink)
		if err != nil {
			return Inode{}, errors.Wrapf(fserr.TruncatedInode, "inode %d: shadow table #%d unreadable: %v", id, shadow, err)
		}
		if len(shadowTables) == 0 {
			return Inode{}, errors.Wrapf(fserr.TruncatedInode, "inode %d: exhausted shadow superblocks at #%d", id, shadow)
		}

		shadowOff, err := inodeOffset(shadowTables, id)
		if err != nil {
			continue
		}
		if shadowOff == off {
			continue
		}

		alt, err := readInode(fs.reader, fs.super.Start, shadowOff)
		if err != nil {
			continue
		}
		if len(alt.Runs) > 0 {
			fs.sink.Warn("inode %d recovered from shadow table #%d", id, shadow)
			return alt, nil
		}
	}
}
