// Package dvdvr implements the DVD-VR IFO parser and VRO extractor (C4/C5):
// reading the VR_MANGR.IFO management structure and streaming programs out
// of VR_MOVIE.VRO with inline MPEG-2 fixups.
package dvdvr

// All DVD-VR wire structures are big-endian (network byte order), per §4.4.

const sectorSize = 2048

// vmgiHeader is the fixed 512-byte RTAV VMGI header ("Real Time AV", from
// the DVD_RTAV directory).
type vmgiHeader struct {
	ID               [12]byte
	VMGEndAddr       uint32
	Zero16           [12]byte
	VMGIEndAddr      uint32
	Version          uint16
	Zero34           [30]byte
	Data64           [3]byte
	TxtEncoding      byte
	Data68           [30]byte
	DiscInfo1        [64]byte
	DiscInfo2        [64]byte
	Zero226          [30]byte
	PGITStartAddr    uint32
	Info260StartAddr uint32
	Zero264          [3]byte
	CPRMSupported    byte
	CPRMTitleKey     [8]byte
	Zero276          [28]byte
	DefPSIStartAddr  uint32
	Info308StartAddr uint32
	Info312StartAddr uint32
	Info316StartAddr uint32
	Zero320          [32]byte
	TxtAttrStartAddr uint32
	Info356StartAddr uint32
	Zero360          [152]byte
}

// audioAttr is the 3-byte packed audio attribute record.
type audioAttr [3]byte

// pgtmRaw is the 5-byte packed program timestamp.
type pgtmRaw [5]byte

// ptm is a presentation timestamp plus its DSI-packet extra field.
type ptm struct {
	PTM      uint32
	PTMExtra uint16
}

// vvob is one Virtual VOB record: a program's attrs, timestamp, format id
// and start/end presentation timestamps.
type vvob struct {
	VOBAttr      uint16
	Timestamp    pgtmRaw
	Data1        byte
	VOBFormatID  byte
	StartPTM     ptm
	EndPTM       ptm
}

// adjVOB is the optional adjacent-VOB preamble, present when vvob.VOBAttr
// bit 0x80 is set.
type adjVOB [12]byte

// vobuMap precedes a program's VOBU/time-info tables.
type vobuMap struct {
	NrTimeInfo uint16
	NrVOBUInfo uint16
	TimeOffset uint16
	VOBOffset  uint32 // in DVD sectors, within the VRO
}

// timeInfo is one 7-byte per-VOBU timing record (unused by this
// implementation beyond skipping it, per §1 Non-goals: chapter/time index
// interpretation is out of scope).
type timeInfo [7]byte

// vobuInfo packs a VOBU's sector length into the low 10 bits of the
// big-endian uint16 formed by bytes 1 and 2 (mask 0x03FF).
type vobuInfo [3]byte

func (v vobuInfo) sectors() uint16 {
	return (uint16(v[1])<<8 | uint16(v[2])) & 0x03FF
}

// pgiti is the Program Info Table's header, naming how many VOB-format
// records and sub-tables follow.
type pgiti struct {
	Zero1          uint16
	NrOfPGI        uint8
	NrOfVOBFormats uint8
	PGITEndAddr    uint32
}

// vobFormat describes one VOB format's video/audio attributes.
type vobFormat struct {
	VideoAttr        uint16
	NrAudioStreams   uint8
	Data1            uint8
	AudioAttr0       audioAttr
	AudioAttr1       audioAttr
	Data2            [50]byte
}

// pgiGlobalInfo names the total program count.
type pgiGlobalInfo struct {
	NrOfPrograms uint16
}

// psiGlobalInfo is the Program Set Info table's header.
type psiGlobalInfo struct {
	Data1        uint8
	NrOfPSI      uint8
	NrOfPrograms uint16
}

// psi is one Program Set Info record: a group of programs sharing a label.
type psi struct {
	Data1        uint8
	Data2        uint8
	NrOfPrograms uint16
	Label        [64]byte
	Title        [64]byte
	ProgSetID    uint16
	FirstProgID  uint16
	Data3        [6]byte
}
