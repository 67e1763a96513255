package udf

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"

	"panasonic-rec/fserr"
)

// DirEntry is one decoded File Identifier Descriptor.
type DirEntry struct {
	Name  string
	ICB   LongAD
	IsDir bool
}

// align4 rounds n up to the next multiple of 4, the FID padding rule.
func align4(n int) int {
	return (n + 3) &^ 3
}

// readDirectoryData reads the directory entry's extents and decodes the
// FID stream they contain, per §4.3 Directory reading: a FID whose
// characteristics mark it as a parent link, or whose file identifier has
// zero length, is skipped. A FID whose target File Entry
// has zero allocation descriptors is an empty-file stub (Panasonic
// recorders emit these) and is likewise skipped rather than surfaced.
func (fs *FS) readDirectoryData(dirEntry entry) ([]DirEntry, error) {
	extents, err := dirEntry.extents()
	if err != nil {
		return nil, err
	}

	var data []byte
	if dirEntry.allocKind == allocEmbedded {
		data = dirEntry.embedded
	} else {
		for _, ex := range extents {
			blocks := (ex.length + SectorSize - 1) / SectorSize
			for b := uint32(0); b < blocks; b++ {
				block, err := fs.readBlock(fs.partitionStart + ex.block + b)
				if err != nil {
					return nil, err
				}
				data = append(data, block...)
			}
		}
		if int64(len(data)) > dirEntry.size {
			data = data[:dirEntry.size]
		}
	}

	var out []DirEntry
	pos := 0
	for pos+fidFixedSize <= len(data) {
		var fixed fidFixed
		if err := binary.Read(bytes.NewReader(data[pos:pos+fidFixedSize]), binary.LittleEndian, &fixed); err != nil {
			return nil, err
		}
		if fixed.DescriptorTag.TagIdentifier != tagFileID {
			break
		}

		impUse := int(fixed.LengthOfImplementationUse)
		idLen := int(fixed.LengthOfFileIdentifier)
		total := align4(fidFixedSize + impUse + idLen)
		if pos+total > len(data) {
			return out, errors.Wrapf(fserr.TruncatedInode, "fid at offset %d overruns directory data", pos)
		}

		if fixed.FileCharacteristics&charParent == 0 && idLen > 0 {
			target, err := fs.readICB(fixed.ICB.ExtentLocation.LogicalBlockNumber)
			if err != nil {
				return nil, err
			}
			if target.allocKind != allocEmbedded && len(target.allocRaw) == 0 {
				pos += total
				continue
			}

			idStart := pos + fidFixedSize + impUse
			name := decodeFileIdentifier(data[idStart : idStart+idLen])
			out = append(out, DirEntry{
				Name:  name,
				ICB:   fixed.ICB,
				IsDir: fixed.FileCharacteristics&charDirectory != 0,
			})
		}

		pos += total
	}

	return out, nil
}

// decodeFileIdentifier decodes a UDF file identifier by dropping the
// high byte of each 16-bit unit, matching the recorder's own
// unicode16_decode rather than OSTA dstring compression.
func decodeFileIdentifier(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	// raw[0] is the compression ID byte (8 = 8-bit, 16 = 16-bit units).
	compression, body := raw[0], raw[1:]
	if compression == 16 {
		out := make([]byte, 0, len(body)/2)
		for i := 0; i+1 < len(body); i += 2 {
			out = append(out, body[i+1])
		}
		return string(out)
	}
	return string(body)
}
