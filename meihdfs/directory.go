package meihdfs

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"panasonic-rec/fserr"
)

// rawDirPage0 is the first page of a directory: header, preamble, then
// dirEntriesFirst entries, totalling exactly ISIZE bytes.
type rawDirPage0 struct {
	inodeHeader
	Preamble [dirPreambleWords]uint16
	Entries  [dirEntriesFirst]rawDirEntry
}

// rawDirPageN is every subsequent directory page: dirEntriesOther
// entries starting at offset zero.
type rawDirPageN struct {
	Entries [dirEntriesOther]rawDirEntry
}

// Directory is the decoded representation of a MEIHDFS directory.
type Directory struct {
	ID      uint32
	Level   uint32
	ItemLen uint32
	Time    uint32
	Entries []DirEntry
}

// readDirectory loads and decodes the directory whose first page begins
// at image-relative byte offset off, per §4.2 Directory iteration.
func readDirectory(fs *FS, off int64) (Directory, error) {
	if err := fs.reader.Seek(fs.super.Start + off); err != nil {
		return Directory{}, errors.Wrap(err, "seek to directory failed")
	}

	var page0 rawDirPage0
	if err := binary.Read(fs.reader, binary.LittleEndian, &page0); err != nil {
		return Directory{}, errors.Wrap(err, "failed to read directory page 0")
	}

	if page0.Magic&directoryMagic0 != directoryMagic && page0.Magic&directoryMagic0 != rootMagic {
		return Directory{}, errors.Wrapf(fserr.BadMagic, "directory magic 0x%08x at offset 0x%x", page0.Magic, fs.super.Start+off)
	}

	dir := Directory{
		ID:      page0.InodeID,
		Level:   page0.I1,
		ItemLen: page0.ItemLen,
		Time:    page0.Time1,
	}

	for _, e := range page0.Entries {
		entry, live, tooLong := decodeDirEntry(e)
		if tooLong {
			fs.sink.Warn("directory %d: name too long, truncating walk", dir.ID)
			return dir, nil
		}
		if live {
			dir.Entries = append(dir.Entries, entry)
		}
	}

	for page := uint32(1); page < dir.ItemLen; page++ {
		if err := fs.reader.Seek(fs.super.Start + off + int64(page)*ISIZE); err != nil {
			return Directory{}, errors.Wrapf(err, "seek to directory page %d failed", page)
		}

		var pageN rawDirPageN
		if err := binary.Read(fs.reader, binary.LittleEndian, &pageN); err != nil {
			return Directory{}, errors.Wrapf(err, "failed to read directory page %d", page)
		}

		for _, e := range pageN.Entries {
			entry, live, tooLong := decodeDirEntry(e)
			if tooLong {
				fs.sink.Warn("directory %d: name too long, truncating walk", dir.ID)
				return dir, nil
			}
			if live {
				dir.Entries = append(dir.Entries, entry)
			}
		}
	}

	return dir, nil
}

// decodeDirEntry validates and decodes one raw directory entry.
// live is false for deleted/absent entries (§4.2); tooLong is true when
// the entry's name_len exceeds the inline name buffer, in which case the
// caller must terminate the enclosing directory walk (§7 NameTooLong).
func decodeDirEntry(e rawDirEntry) (entry DirEntry, live bool, tooLong bool) {
	if !e.IsLive() {
		return DirEntry{}, false, false
	}
	if int(e.NameLen) > len(e.Filename) {
		return DirEntry{}, false, true
	}

	name := e.Filename[:e.NameLen]
	return DirEntry{InodeID: e.InodeID, Type: e.Type, Name: string(name)}, true, false
}
