package dvdvr

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/pkg/errors"

	"panasonic-rec/report"
)

// Program is one decoded DVD-VR program (a Virtual VOB), ready for
// extraction.
type Program struct {
	Number     int // 1-based
	Label      string
	Title      string
	Timestamp  time.Time
	HasTime    bool
	FormatID   int // 0-based index into IFO.VideoFormats/AudioFormats
	VOBOffset  int64 // byte offset into the VRO
	VOBUSizes  []uint16 // sector count per VOBU, in order
}

// IFO is the fully decoded VR_MANGR.IFO management structure.
type IFO struct {
	SpecVersionMajor int
	SpecVersionMinor int
	TextEncoding     string
	DiscInfo         []string
	CPRMSupported    bool

	VideoFormats []VideoAttr
	AudioFormats []AudioAttr

	Programs []Program
}

// ParseIFO decodes the management structure from a fully-read IFO file
// buffer, per §4.4.
func ParseIFO(buf []byte, sink report.Sink) (*IFO, error) {
	if len(buf) < 512 {
		return nil, errors.New("IFO file too short to contain a VMGI header")
	}

	var header vmgiHeader
	if err := binary.Read(bytes.NewReader(buf[:512]), binary.BigEndian, &header); err != nil {
		return nil, errors.Wrap(err, "failed to decode VMGI header")
	}
	if string(bytes.TrimRight(header.ID[:], "\x00")) != "DVD_RTR_VMG0" {
		sink.Warn("unexpected VMGI identifier %q", header.ID)
	}

	ifo := &IFO{
		SpecVersionMajor: int(header.Version >> 4),
		SpecVersionMinor: int(header.Version & 0x0F),
		TextEncoding:     parseTxtEncoding(header.TxtEncoding, sink),
		CPRMSupported:    header.CPRMSupported != 0,
	}
	for _, info := range [][]byte{header.DiscInfo2[:], header.DiscInfo1[:]} {
		if s := cleanDiscInfo(info, ifo.TextEncoding); s != "" {
			ifo.DiscInfo = append(ifo.DiscInfo, s)
		}
	}

	pgitiOff := int(header.PGITStartAddr)
	if pgitiOff < 0 || pgitiOff+8 > len(buf) {
		return nil, errors.New("program info table start address out of range")
	}
	var table pgiti
	if err := binary.Read(bytes.NewReader(buf[pgitiOff:pgitiOff+8]), binary.BigEndian, &table); err != nil {
		return nil, errors.Wrap(err, "failed to decode program info table header")
	}
	if table.NrOfPGI == 0 {
		return nil, errors.New("no info table found for VRO")
	}
	if table.NrOfPGI > 1 {
		sink.Warn("only processing 1 of the %d VRO info tables", table.NrOfPGI)
	}

	pos := pgitiOff + 8
	vobFormatSize := 60
	for i := 0; i < int(table.NrOfVOBFormats); i++ {
		if pos+vobFormatSize > len(buf) {
			return nil, errors.New("vob format table overruns IFO")
		}
		var vf vobFormat
		if err := binary.Read(bytes.NewReader(buf[pos:pos+vobFormatSize]), binary.BigEndian, &vf); err != nil {
			return nil, err
		}
		ifo.VideoFormats = append(ifo.VideoFormats, parseVideoAttr(vf.VideoAttr, sink))
		aa, ok := parseAudioAttr(vf.AudioAttr0, sink)
		if !ok {
			sink.Warn("vob format %d: invalid audio_attr0", i+1)
		}
		ifo.AudioFormats = append(ifo.AudioFormats, aa)
		pos += vobFormatSize
	}

	var globalInfo pgiGlobalInfo
	if err := binary.Read(bytes.NewReader(buf[pos:pos+2]), binary.BigEndian, &globalInfo); err != nil {
		return nil, err
	}
	pos += 2

	var defPSI *psiGlobalInfo
	psiOff := int(header.DefPSIStartAddr)
	if psiOff > 0 && psiOff+4 <= len(buf) {
		var g psiGlobalInfo
		if err := binary.Read(bytes.NewReader(buf[psiOff:psiOff+4]), binary.BigEndian, &g); err == nil {
			defPSI = &g
		}
	}

	vvobiOff := pos
	for i := 0; i < int(globalInfo.NrOfPrograms); i++ {
		saOff := vvobiOff + i*4
		if saOff+4 > len(buf) {
			return nil, errors.New("virtual VOB address table overruns IFO")
		}
		sa := binary.BigEndian.Uint32(buf[saOff : saOff+4])

		vvobOff := pgitiOff + int(sa)
		prog, err := decodeProgram(buf, vvobOff, i+1, psiOff, defPSI, ifo.TextEncoding, sink)
		if err != nil {
			sink.Warn("program %d: %v, skipping", i+1, err)
			continue
		}
		ifo.Programs = append(ifo.Programs, prog)
	}

	return ifo, nil
}

func cleanDiscInfo(field []byte, charset string) string {
	trimmed := bytes.TrimRight(field, "\x00")
	s := decodeText(trimmed, charset)
	switch s {
	case "", "DVD VR", "DVD-VR", " ":
		return ""
	default:
		return s
	}
}

// decodeProgram decodes one Virtual VOB record at vvobOff.
func decodeProgram(buf []byte, vvobOff, number, psiOff int, defPSI *psiGlobalInfo, charset string, sink report.Sink) (Program, error) {
	const vvobFixedSize = 21
	if vvobOff < 0 || vvobOff+vvobFixedSize > len(buf) {
		return Program{}, errors.New("virtual VOB offset out of range")
	}

	var v vvob
	if err := binary.Read(bytes.NewReader(buf[vvobOff:vvobOff+vvobFixedSize]), binary.BigEndian, &v); err != nil {
		return Program{}, err
	}

	prog := Program{Number: number, FormatID: int(v.VOBFormatID) - 1}
	prog.Timestamp, prog.HasTime = decodePGTM(v.Timestamp)

	if label, title := findProgramText(buf, psiOff, defPSI, number, charset); label != "" || title != "" {
		prog.Label, prog.Title = label, title
	}

	skip := vvobFixedSize
	if v.VOBAttr&0x80 != 0 {
		skip += 12 // adj_vob_t
	}
	skip += 2 // unidentified uint16 field preceding the VOBU map

	mapOff := vvobOff + skip
	if mapOff+10 > len(buf) {
		return Program{}, errors.New("VOBU map offset out of range")
	}
	var m vobuMap
	if err := binary.Read(bytes.NewReader(buf[mapOff:mapOff+10]), binary.BigEndian, &m); err != nil {
		return Program{}, err
	}
	prog.VOBOffset = int64(m.VOBOffset) * sectorSize

	infoOff := mapOff + 10 + int(m.NrTimeInfo)*7
	for i := 0; i < int(m.NrVOBUInfo); i++ {
		off := infoOff + i*3
		if off+3 > len(buf) {
			return Program{}, errors.New("VOBU info table overruns IFO")
		}
		var vi vobuInfo
		copy(vi[:], buf[off:off+3])
		prog.VOBUSizes = append(prog.VOBUSizes, vi.sectors())
	}

	return prog, nil
}

// findProgramText resolves a program number to its Program Set Info
// record via the running-count heuristic (§4.4 rationale, §9 open
// question (a)): the IFO's first_prog_id field is unreliable across
// authoring tools, so set membership is derived purely from cumulative
// program counts in declaration order.
func findProgramText(buf []byte, psiOff int, global *psiGlobalInfo, program int, charset string) (label, title string) {
	if global == nil {
		return "", ""
	}
	const psiSize = 142
	pos := psiOff + 4
	count := 0
	for i := 0; i < int(global.NrOfPSI); i++ {
		if pos+psiSize > len(buf) {
			return "", ""
		}
		var p psi
		if err := binary.Read(bytes.NewReader(buf[pos:pos+psiSize]), binary.BigEndian, &p); err != nil {
			return "", ""
		}
		start := count + 1
		count += int(p.NrOfPrograms)
		if program >= start && program <= count {
			return cleanDiscInfo(p.Label[:], charset), cleanDiscInfo(p.Title[:], charset)
		}
		pos += psiSize
	}
	return "", ""
}
