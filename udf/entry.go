package udf

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"

	"panasonic-rec/fserr"
)

// entry is a decoded file or directory, independent of which FileEntry
// variant or allocation descriptor form it was stored under.
type entry struct {
	isDir     bool
	size      int64
	modTime   Timestamp
	allocKind uint16
	allocRaw  []byte // raw allocation descriptor bytes, undecoded
	embedded  []byte // present when allocKind == allocEmbedded
}

// readICB reads and decodes the File Entry or Extended File Entry at the
// given partition-relative logical block.
func (fs *FS) readICB(lbn uint32) (entry, error) {
	block, err := fs.readBlock(fs.partitionStart + lbn)
	if err != nil {
		return entry{}, err
	}

	tag, ok := readTag(block)
	if !ok {
		return entry{}, errors.Wrapf(fserr.BadMagic, "icb at block %d has invalid tag checksum", lbn)
	}

	switch tag.TagIdentifier {
	case tagFileEntry:
		var fe FileEntry
		if err := binary.Read(bytes.NewReader(block), binary.LittleEndian, &fe); err != nil {
			return entry{}, err
		}
		e := entry{
			isDir:     fe.ICBTag.FileType == 4,
			size:      int64(fe.InformationLength),
			modTime:   fe.ModificationTime,
			allocKind: fe.ICBTag.Flags & 0x7,
		}
		fs.readAllocation(&e, block, fileEntryFixedSize, int(fe.LengthOfExtendedAttributes), int(fe.LengthOfAllocationDescriptors))
		return e, nil

	case tagExtFileEntry:
		var fe ExtendedFileEntry
		if err := binary.Read(bytes.NewReader(block), binary.LittleEndian, &fe); err != nil {
			return entry{}, err
		}
		e := entry{
			isDir:     fe.ICBTag.FileType == 4,
			size:      int64(fe.InformationLength),
			modTime:   fe.ModificationTime,
			allocKind: fe.ICBTag.Flags & 0x7,
		}
		fs.readAllocation(&e, block, extFileEntryFixedSize, int(fe.LengthOfExtendedAttributes), int(fe.LengthOfAllocationDescriptors))
		return e, nil

	default:
		return entry{}, errors.Wrapf(fserr.BadMagic, "icb at block %d is neither a file entry nor extended file entry (tag %d)", lbn, tag.TagIdentifier)
	}
}

// readAllocation slices out the allocation descriptor (or embedded data)
// region following a FileEntry/ExtendedFileEntry's fixed part and any
// extended attributes, per the icb_tag.flags & 0x7 variant in fixedSize.
func (fs *FS) readAllocation(e *entry, block []byte, fixedSize, eaLength, adLength int) {
	start := fixedSize + eaLength
	end := start + adLength
	if end > len(block) {
		end = len(block)
	}
	if start > len(block) {
		start = len(block)
	}
	region := block[start:end]

	if e.allocKind == allocEmbedded {
		e.embedded = region
		return
	}
	e.allocRaw = region
}

// extents decodes an entry's allocation descriptor region into a
// sequence of (partition-relative block, byte length) runs, per the
// short/long/extended variant named by icb_tag.flags & 0x7.
func (e entry) extents() ([]extent, error) {
	var out []extent
	switch e.allocKind {
	case allocShort:
		for off := 0; off+8 <= len(e.allocRaw); off += 8 {
			var ad ShortAD
			if err := binary.Read(bytes.NewReader(e.allocRaw[off:off+8]), binary.LittleEndian, &ad); err != nil {
				return nil, err
			}
			length := ad.ExtentLength & 0x3FFFFFFF
			if length == 0 {
				break
			}
			out = append(out, extent{block: ad.ExtentPosition, length: length})
		}
	case allocLong:
		for off := 0; off+16 <= len(e.allocRaw); off += 16 {
			var ad LongAD
			if err := binary.Read(bytes.NewReader(e.allocRaw[off:off+16]), binary.LittleEndian, &ad); err != nil {
				return nil, err
			}
			length := ad.ExtentLength & 0x3FFFFFFF
			if length == 0 {
				break
			}
			out = append(out, extent{block: ad.ExtentLocation.LogicalBlockNumber, length: length})
		}
	case allocExtended:
		for off := 0; off+20 <= len(e.allocRaw); off += 20 {
			var ad ExtendedAD
			if err := binary.Read(bytes.NewReader(e.allocRaw[off:off+20]), binary.LittleEndian, &ad); err != nil {
				return nil, err
			}
			length := ad.ExtentLength & 0x3FFFFFFF
			if length == 0 {
				break
			}
			out = append(out, extent{block: ad.ExtentLocation.LogicalBlockNumber, length: length})
		}
	case allocEmbedded:
		// No extents: data lives directly in e.embedded.
	}
	return out, nil
}

type extent struct {
	block  uint32
	length uint32
}
