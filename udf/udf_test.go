package udf

import (
	"bytes"
	"encoding/binary"
	"os"
	"testing"

	"github.com/spf13/afero"

	"panasonic-rec/extract"
	"panasonic-rec/report"
	"panasonic-rec/storage"
)

func TestDecodeFileIdentifier(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want string
	}{
		{
			name: "16-bit unicode",
			raw:  append([]byte{16}, []byte{0x00, 'H', 0x00, 'I'}...),
			want: "HI",
		},
		{
			name: "8-bit",
			raw:  append([]byte{8}, []byte("PROGRAM")...),
			want: "PROGRAM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeFileIdentifier(tt.raw); got != tt.want {
				t.Fatalf("decodeFileIdentifier=%q want %q", got, tt.want)
			}
		})
	}
}

func TestAlign4(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 0}, {1, 4}, {3, 4}, {4, 4}, {5, 8}, {38, 40},
	}
	for _, tt := range tests {
		if got := align4(tt.in); got != tt.want {
			t.Fatalf("align4(%d)=%d want %d", tt.in, got, tt.want)
		}
	}
}

func TestTagChecksum(t *testing.T) {
	var raw [16]byte
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	var sum uint8
	for i, b := range raw {
		if i == 4 {
			continue
		}
		sum += b
	}

	tag := Tag{TagChecksum: sum}
	if got := tag.checksum(raw); got != sum {
		t.Fatalf("checksum=%d want %d", got, sum)
	}
	if tag.checksum(raw) != tag.TagChecksum {
		t.Fatalf("expected tag to validate against its own checksum")
	}
}

// buildTag writes a 16-byte descriptor tag with a correct checksum into
// buf at the given offset.
func buildTag(buf []byte, offset int, id uint16) {
	var raw [16]byte
	raw[0] = byte(id)
	raw[1] = byte(id >> 8)

	var sum uint8
	for i, b := range raw {
		if i == 4 {
			continue
		}
		sum += b
	}
	raw[4] = sum
	copy(buf[offset:], raw[:])
}

func TestScanForFSD_FindsTagAtStride(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "udf-fsd-*")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	// Place a minimal FSD at the second 64 KiB stride.
	block := make([]byte, SectorSize)
	buildTag(block, 0, tagFileSet)
	if _, err := f.WriteAt(block, fsdScanStride); err != nil {
		t.Fatal(err)
	}
	// Pad the file out so SectorSize-sized reads at later strides don't
	// hit EOF prematurely during the bounded scan.
	if err := f.Truncate(fsdScanStride * 4); err != nil {
		t.Fatal(err)
	}

	reader := storage.NewReader(f)
	fs := &FS{reader: reader, sink: &report.Buffer{}}

	if err := fs.scanForFSD(0); err != nil {
		t.Fatalf("scanForFSD: %v", err)
	}
	if got, want := fs.partitionStart, uint32(fsdScanStride/SectorSize); got != want {
		t.Fatalf("partitionStart=%d want %d", got, want)
	}
}

func TestReadDirectoryData_EmbeddedSkipsParentEntry(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "udf-dir-*")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	// "A"'s target ICB, at block 0, with a non-empty extent so it is not
	// mistaken for an empty-file stub.
	if _, err := f.WriteAt(buildFileEntryBlock(allocShort, 8), 0); err != nil {
		t.Fatal(err)
	}

	// Build a single embedded FID stream: one parent entry (skipped) and
	// one file entry named "A" (8-bit identifier).
	var data []byte

	parent := make([]byte, fidFixedSize)
	buildTag(parent, 0, tagFileID)
	parent[18] = charParent // FileCharacteristics offset within fidFixed
	data = append(data, parent...)
	for len(data)%4 != 0 {
		data = append(data, 0)
	}

	idBytes := append([]byte{8}, 'A')
	fileFID := make([]byte, fidFixedSize+len(idBytes))
	buildTag(fileFID, 0, tagFileID)
	fileFID[19] = byte(len(idBytes)) // LengthOfFileIdentifier offset
	copy(fileFID[fidFixedSize:], idBytes)
	data = append(data, fileFID...)
	for len(data)%4 != 0 {
		data = append(data, 0)
	}

	reader := storage.NewReader(f)
	fs := &FS{reader: reader, sink: &report.Buffer{}}
	entries, err := fs.readDirectoryData(entry{allocKind: allocEmbedded, embedded: data, size: int64(len(data))})
	if err != nil {
		t.Fatalf("readDirectoryData: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries=%d want 1 (got %+v)", len(entries), entries)
	}
	if entries[0].Name != "A" {
		t.Fatalf("name=%q want %q", entries[0].Name, "A")
	}
}

// buildFileEntryBlock writes a minimal FileEntry at the start of a
// SectorSize block, with icb_tag.flags set to allocKind and the given
// allocation-descriptor byte count.
func buildFileEntryBlock(allocKind uint16, adLength uint32) []byte {
	block := make([]byte, SectorSize)
	fe := FileEntry{
		ICBTag:                        ICBTag{Flags: allocKind},
		LengthOfAllocationDescriptors: adLength,
	}
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, fe)
	copy(block, buf.Bytes())

	if adLength > 0 {
		var ad ShortAD
		ad.ExtentLength = adLength
		ad.ExtentPosition = 0
		var adBuf bytes.Buffer
		_ = binary.Write(&adBuf, binary.LittleEndian, ad)
		copy(block[fileEntryFixedSize:], adBuf.Bytes())
	}

	buildTag(block, 0, tagFileEntry)
	return block
}

func TestReadDirectoryData_SkipsZeroAllocationDescriptorStub(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "udf-stub-*")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	// Block 0: a stub File Entry with zero allocation descriptors, the
	// Panasonic empty-file marker. Block 1: a normal File Entry with one
	// non-empty extent.
	if _, err := f.WriteAt(buildFileEntryBlock(allocShort, 0), 0); err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteAt(buildFileEntryBlock(allocShort, 8), SectorSize); err != nil {
		t.Fatal(err)
	}

	reader := storage.NewReader(f)
	fs := &FS{reader: reader, sink: &report.Buffer{}}

	var data []byte

	stub := make([]byte, fidFixedSize)
	buildTag(stub, 0, tagFileID)
	stubID := append([]byte{8}, 'S')
	stub = append(stub, stubID...)
	stub[19] = byte(len(stubID))
	data = append(data, stub...)
	for len(data)%4 != 0 {
		data = append(data, 0)
	}

	real := make([]byte, fidFixedSize)
	buildTag(real, 0, tagFileID)
	realID := append([]byte{8}, 'R')
	real = append(real, realID...)
	real[19] = byte(len(realID))
	real[24] = 1 // ICB.ExtentLocation.LogicalBlockNumber = 1
	data = append(data, real...)
	for len(data)%4 != 0 {
		data = append(data, 0)
	}

	entries, err := fs.readDirectoryData(entry{allocKind: allocEmbedded, embedded: data, size: int64(len(data))})
	if err != nil {
		t.Fatalf("readDirectoryData: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries=%d want 1 (got %+v)", len(entries), entries)
	}
	if entries[0].Name != "R" {
		t.Fatalf("name=%q want %q (the zero-allocation-descriptor stub must be skipped)", entries[0].Name, "R")
	}
}

func TestWalk_ZeroAllocationDescriptorStubProducesNoHostFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "udf-stub-*")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := f.WriteAt(buildFileEntryBlock(allocShort, 0), 0); err != nil {
		t.Fatal(err)
	}

	reader := storage.NewReader(f)
	afs := afero.NewMemMapFs()
	fs := &FS{reader: reader, sink: &report.Buffer{}, hostfs: afs}

	stub := make([]byte, fidFixedSize)
	buildTag(stub, 0, tagFileID)
	stubID := append([]byte{8}, 'S')
	stub = append(stub, stubID...)
	stub[19] = byte(len(stubID))
	data := stub
	for len(data)%4 != 0 {
		data = append(data, 0)
	}

	entries, err := fs.readDirectoryData(entry{allocKind: allocEmbedded, embedded: data, size: int64(len(data))})
	if err != nil {
		t.Fatalf("readDirectoryData: %v", err)
	}

	outDir := t.TempDir()
	if err := fs.Walk(entries, outDir, false); err != nil {
		t.Fatalf("Walk: %v", err)
	}

	found, err := afero.ReadDir(afs, outDir)
	if err == nil && len(found) != 0 {
		t.Fatalf("expected no host filesystem entries for a skipped stub, found %v", found)
	}
}

func TestExtractFile_EmbeddedData(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/out.bin"

	fs := &FS{sink: &report.Buffer{}, hostfs: extract.OS()}
	want := []byte("embedded payload")
	if err := fs.extractFile(entry{allocKind: allocEmbedded, embedded: want, size: int64(len(want))}, path); err != nil {
		t.Fatalf("extractFile: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("content=%q want %q", got, want)
	}
}
