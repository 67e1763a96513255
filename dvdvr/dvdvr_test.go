package dvdvr

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"panasonic-rec/report"
)

func TestPGTMRoundTrip(t *testing.T) {
	tests := []time.Time{
		time.Date(2004, time.March, 17, 21, 5, 9, 0, time.UTC),
		time.Date(1999, time.December, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
	}

	for _, want := range tests {
		raw := encodePGTM(want)
		got, ok := decodePGTM(raw)
		if !ok {
			t.Fatalf("decodePGTM(%v) reported not-set", want)
		}
		if !got.Equal(want) {
			t.Fatalf("round trip mismatch: want %v got %v (raw % x)", want, got, raw)
		}
	}
}

func TestDecodePGTM_ZeroYearIsUnset(t *testing.T) {
	if _, ok := decodePGTM(pgtmRaw{}); ok {
		t.Fatal("zero raw should decode to not-set")
	}
}

// buildSequenceHeader writes a minimal MPEG-2 sequence header start code
// at off, with width/height/aspect/framerate packed into the 4 bytes that
// follow the start code, mirroring ISO/IEC 13818-2 §6.2.2.1.
func buildSequenceHeader(buf []byte, off int, aspect byte) {
	binary.BigEndian.PutUint32(buf[off:], 0x000001B3)
	buf[off+mpegHeaderLen+3] = aspect << 4
}

func TestFixAspect_OnlyTouchesAspectByte(t *testing.T) {
	buf := make([]byte, 64)
	for i := range buf {
		buf[i] = byte(i + 1)
	}
	buildSequenceHeader(buf, 10, 2) // encoded as 4:3, want 16:9

	before := append([]byte(nil), buf...)

	ctx := newMPEG2Context(VideoAttr{Aspect: 3, Width: -1, Height: -1})
	ctx.fixAspect(buf)

	changedIdx := -1
	for i := range buf {
		if buf[i] != before[i] {
			if changedIdx != -1 {
				t.Fatalf("more than one byte changed: %d and %d", changedIdx, i)
			}
			changedIdx = i
		}
	}
	if changedIdx != 10+mpegHeaderLen+3 {
		t.Fatalf("expected only the aspect byte (index %d) to change, got index %d", 10+mpegHeaderLen+3, changedIdx)
	}
	if got := buf[changedIdx] >> 4; got != 3 {
		t.Fatalf("aspect nibble = %d, want 3", got)
	}
}

func TestFixAspect_CachesOffsetAcrossSectors(t *testing.T) {
	buf1 := make([]byte, 32)
	buildSequenceHeader(buf1, 0, 2)

	ctx := newMPEG2Context(VideoAttr{Aspect: 3, Width: -1, Height: -1})
	ctx.fixAspect(buf1)
	if ctx.sequenceOffset != 0 {
		t.Fatalf("sequenceOffset = %d, want 0", ctx.sequenceOffset)
	}

	// A second sector with no start code at all: the cached offset must
	// not be consulted out of bounds and must not panic.
	buf2 := make([]byte, 4)
	ctx.fixAspect(buf2)
}

func TestCheckEncryption_ScrambledVerdictNeverDowngrades(t *testing.T) {
	ctx := newMPEG2Context(VideoAttr{Aspect: -1})
	ctx.scrambled = ScrambledYes

	buf := make([]byte, 16)
	binary.BigEndian.PutUint32(buf, 0x000001E0)
	buf[mpegHeaderLen+2] = 0x80 // MPEG-2 marker bits, not scrambled

	ctx.checkEncryption(buf)
	if ctx.scrambled != PartiallyScrambled {
		t.Fatalf("scrambled = %v, want PartiallyScrambled after conflicting verdict", ctx.scrambled)
	}
}

func TestCheckEncryption_ShortBufferNoPanic(t *testing.T) {
	ctx := newMPEG2Context(VideoAttr{})
	ctx.checkEncryption([]byte{1, 2})
}

func TestFindProgramTextRunningCount(t *testing.T) {
	buf := make([]byte, 4+2*142)
	g := psiGlobalInfo{NrOfPrograms: 5, NrOfPSI: 2}
	binary.BigEndian.PutUint16(buf[2:4], g.NrOfPrograms)
	buf[1] = g.NrOfPSI

	writePSI := func(off int, nrPrograms uint16, label string) {
		binary.BigEndian.PutUint16(buf[off+2:off+4], nrPrograms)
		copy(buf[off+4:off+4+64], label)
	}
	writePSI(4, 2, "FIRST")
	writePSI(4+142, 3, "SECOND")

	label, _ := findProgramText(buf, 0, &g, 1, "ASCII")
	if label != "FIRST" {
		t.Fatalf("program 1: label=%q want FIRST", label)
	}
	label, _ = findProgramText(buf, 0, &g, 2, "ASCII")
	if label != "FIRST" {
		t.Fatalf("program 2: label=%q want FIRST", label)
	}
	label, _ = findProgramText(buf, 0, &g, 3, "ASCII")
	if label != "SECOND" {
		t.Fatalf("program 3: label=%q want SECOND", label)
	}
	label, _ = findProgramText(buf, 0, &g, 5, "ASCII")
	if label != "SECOND" {
		t.Fatalf("program 5: label=%q want SECOND", label)
	}
	if label, _ := findProgramText(buf, 0, &g, 6, "ASCII"); label != "" {
		t.Fatalf("program 6: label=%q want empty (out of range)", label)
	}
}

func TestNameProgram_CollisionAppendsNumberSuffix(t *testing.T) {
	dir := t.TempDir()

	p := Program{Number: 3, HasTime: false}
	first := NameProgram(dir, "clip", p)
	if first != "clip.vob" {
		t.Fatalf("first name = %q, want clip.vob", first)
	}

	if err := os.WriteFile(filepath.Join(dir, first), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	second := NameProgram(dir, "clip", p)
	if second != "clip#003.vob" {
		t.Fatalf("collided name = %q, want clip#003.vob", second)
	}
}

func TestNameProgram_StdoutRouting(t *testing.T) {
	if got := NameProgram(t.TempDir(), "-", Program{Number: 1}); got != "-" {
		t.Fatalf("got %q, want -", got)
	}
}

func TestSanitizeName(t *testing.T) {
	in := "My Show: Part 1 / 2?"
	want := "My-Show--Part-1---2-"
	if got := sanitizeName(in); got != want {
		t.Fatalf("sanitizeName=%q want %q", got, want)
	}
}

func TestParseVideoAttr_UnknownCompressionDisablesAspectFix(t *testing.T) {
	sink := &report.Buffer{}
	raw := uint16(0xC000) // compression=3 (unknown), aspect=0
	va := parseVideoAttr(raw, sink)
	if va.Aspect != -1 {
		t.Fatalf("Aspect = %d, want -1 for unknown compression", va.Aspect)
	}
	if len(sink.WarnMsgs) == 0 {
		t.Fatal("expected a warning for unknown compression code")
	}
}

func TestParseAudioAttr_StereoMonoSpecialCase(t *testing.T) {
	sink := &report.Buffer{}
	raw := audioAttr{0, 9, 0}
	aa, ok := parseAudioAttr(raw, sink)
	if !ok {
		t.Fatal("expected ok=true for raw channel value 9")
	}
	if aa.Channels != 2 {
		t.Fatalf("Channels = %d, want 2", aa.Channels)
	}
}

func TestVOBUInfoSectors(t *testing.T) {
	vi := vobuInfo{0xFF, 0x03, 0xFF}
	if got := vi.sectors(); got != 0x03FF {
		t.Fatalf("sectors() = %#x, want 0x3ff", got)
	}
}
