package udf

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"

	"panasonic-rec/extract"
	"panasonic-rec/fserr"
	"panasonic-rec/report"
	"panasonic-rec/storage"
)

// FS is a parsed UDF volume, ready for listing or extraction.
type FS struct {
	reader *storage.Reader
	sink   report.Sink
	hostfs extract.HostFS

	partitionStart uint32 // in SectorSize blocks
	root           LongAD
}

// Open locates the File Set Descriptor and root ICB, per §4.3 Partition
// discovery and Root resolution.
func Open(reader *storage.Reader, sink report.Sink) (*FS, error) {
	fs := &FS{reader: reader, sink: sink, hostfs: extract.OS()}

	if err := fs.discoverViaAVDP(); err != nil {
		sink.Warn("AVDP fast path failed (%v), falling back to tag scan", err)
		if err := fs.discoverViaScan(); err != nil {
			return nil, err
		}
	}

	return fs, nil
}

// SetHostFS overrides the filesystem Walk and extractFile write to,
// letting tests substitute an in-memory afero.Fs.
func (fs *FS) SetHostFS(h extract.HostFS) {
	fs.hostfs = h
}

// readBlock reads one SectorSize block at an absolute (not
// partition-relative) block number.
func (fs *FS) readBlock(block uint32) ([]byte, error) {
	buf := make([]byte, SectorSize)
	if err := fs.reader.Seek(int64(block) * SectorSize); err != nil {
		return nil, errors.Wrapf(err, "seek to block %d failed", block)
	}
	if _, err := fs.reader.Read(buf); err != nil {
		return nil, errors.Wrapf(fserr.ReadError, "reading block %d: %v", block, err)
	}
	return buf, nil
}

// readTag decodes and checksum-validates the 16-byte tag at the start of
// buf.
func readTag(buf []byte) (Tag, bool) {
	if len(buf) < 16 {
		return Tag{}, false
	}
	var raw [16]byte
	copy(raw[:], buf[:16])

	var tag Tag
	_ = binary.Read(bytes.NewReader(raw[:]), binary.LittleEndian, &tag)

	return tag, tag.checksum(raw) == tag.TagChecksum
}

// discoverViaAVDP tries the standard fixed Anchor Volume Descriptor
// Pointer location (sector 256) and, on success, walks the volume
// descriptor sequence to find the partition start, then locates the File
// Set Descriptor by tag scan from that partition start.
func (fs *FS) discoverViaAVDP() error {
	buf, err := fs.readBlock(avdpSector)
	if err != nil {
		return err
	}
	tag, ok := readTag(buf)
	if !ok || tag.TagIdentifier != tagAnchorVolume {
		return errors.New("no AVDP at standard location")
	}

	var avdp AnchorVolumeDescriptorPointer
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &avdp); err != nil {
		return errors.Wrap(err, "failed to decode AVDP")
	}

	extentStart := avdp.MainVolumeDescriptorSequenceExtent.Location
	extentLen := avdp.MainVolumeDescriptorSequenceExtent.Length

descriptors:
	for n := uint32(0); n*SectorSize < extentLen; n++ {
		block, err := fs.readBlock(extentStart + n)
		if err != nil {
			return err
		}
		tag, ok := readTag(block)
		if !ok {
			continue
		}
		switch tag.TagIdentifier {
		case tagPartition:
			var pd PartitionDescriptor
			if err := binary.Read(bytes.NewReader(block), binary.LittleEndian, &pd); err != nil {
				return err
			}
			fs.partitionStart = pd.PartitionStartingLocation
		case tagTerminating:
			break descriptors
		}
	}

	if fs.partitionStart == 0 {
		return errors.New("no partition descriptor found in volume descriptor sequence")
	}

	// Without a trustworthy File Set Descriptor location from the
	// Logical Volume Descriptor (Panasonic discs often omit or corrupt
	// it), fall back to a tag scan confined to the discovered partition.
	return fs.scanForFSD(int64(fs.partitionStart) * SectorSize)
}

// discoverViaScan implements the §4.3 scan-based partition discovery:
// probe 64 KiB strides for a valid FSD tag; the partition start is the
// sector containing it.
func (fs *FS) discoverViaScan() error {
	return fs.scanForFSD(0)
}

func (fs *FS) scanForFSD(from int64) error {
	for i := 0; i < fsdScanLimit; i++ {
		offset := from + int64(i)*fsdScanStride
		if err := fs.reader.Seek(offset); err != nil {
			return errors.Wrap(fserr.HeaderNotFound, err.Error())
		}

		buf := make([]byte, 16)
		if _, err := fs.reader.Read(buf); err != nil {
			return errors.Wrapf(fserr.HeaderNotFound, "last probed offset 0x%x", offset)
		}

		tag, ok := readTag(buf)
		if !ok || tag.TagIdentifier != tagFileSet {
			continue
		}

		block := uint32(offset / SectorSize)
		full, err := fs.readBlock(block)
		if err != nil {
			return err
		}

		var fsd FileSetDescriptor
		if err := binary.Read(bytes.NewReader(full), binary.LittleEndian, &fsd); err != nil {
			return errors.Wrap(err, "failed to decode file set descriptor")
		}

		fs.partitionStart = block
		fs.root = fsd.RootDirectoryICB
		fs.sink.Info("found UDF file set descriptor at block %d", block)
		return nil
	}
	return errors.Wrapf(fserr.HeaderNotFound, "no file set descriptor found within %d strides", fsdScanLimit)
}
