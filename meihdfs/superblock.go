package meihdfs

import (
	"bytes"

	"github.com/pkg/errors"

	"panasonic-rec/fserr"
	"panasonic-rec/storage"
)

const (
	headerStride = 0x10000
	headerProbe  = 32
)

var (
	magicM = []byte("MEIHDFS-V2.")
	magicH = []byte("HDFS2.")
)

// Superblock identifies one MEIHDFS image header: its image-relative
// start offset and the version digit x of its "2.x" magic (3 for
// MEIHDFS-V2.3, 0 for HDFS2.0).
type Superblock struct {
	Start   int64
	Version int
}

// ITables returns the number of inode tables this superblock's version
// uses: 9 for V2.3+, 6 otherwise.
func (s Superblock) ITables() int {
	if s.Version >= 3 {
		return itablesV23
	}
	return itablesV20
}

// FindSuperblock implements the §4.2 header search: starting at seed,
// stride 65536 bytes, probe 32 bytes and compare bytes 8..28 against the
// two known magics.
func FindSuperblock(r *storage.Reader, seed int64) (Superblock, error) {
	buf := make([]byte, headerProbe)
	for offset := seed; ; offset += headerStride {
		if err := r.Seek(offset); err != nil {
			return Superblock{}, errors.Wrap(fserr.HeaderNotFound, err.Error())
		}
		n, err := r.Read(buf)
		if err != nil || n != len(buf) {
			return Superblock{}, errors.Wrapf(fserr.HeaderNotFound, "last probed offset 0x%x", offset)
		}

		body := buf[8:]
		switch {
		case bytes.HasPrefix(body, magicM):
			return Superblock{Start: offset, Version: int(body[11] - '0')}, nil
		case bytes.HasPrefix(body, magicH):
			return Superblock{Start: offset, Version: int(body[6] - '0')}, nil
		}
	}
}
