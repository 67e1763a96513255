package dvdvr

import "panasonic-rec/report"

// VideoAttr is a decoded VOB format's video attributes (§4.4).
type VideoAttr struct {
	Resolution  int // raw 3-bit index
	Width       int // -1 if unknown
	Height      int // -1 if unknown
	Aspect      int // DVD-Video aspect encoding (2=4:3, 3=16:9), -1 if unknown/unadjustable
	TVSystem    string
	Compression string
}

// AudioAttr is a decoded VOB format's audio attributes.
type AudioAttr struct {
	Coding   string
	Channels int // 2 for the stereo-mono special case (raw value 9)
}

// parseVideoAttr decodes the packed 16-bit video_attr field.
func parseVideoAttr(raw uint16, sink report.Sink) VideoAttr {
	resolution := int(raw&0x0038) >> 3
	aspect := int(raw&0x0C00) >> 10
	tvSys := int(raw&0x3000) >> 12
	compression := int(raw&0xC000) >> 14

	va := VideoAttr{Resolution: resolution, Width: -1, Height: -1, Aspect: -1}

	vertResolution := 0
	switch tvSys {
	case 0:
		va.TVSystem, vertResolution = "NTSC", 480
	case 1:
		va.TVSystem, vertResolution = "PAL", 576
	default:
		va.TVSystem = "Unknown"
		sink.Warn("unknown TV system %d", tvSys)
	}

	horizResolution := 0
	switch resolution {
	case 0:
		horizResolution = 720
	case 1:
		horizResolution = 704
	case 2:
		horizResolution = 352
	case 3:
		horizResolution = 352
		vertResolution /= 2
	case 4:
		horizResolution = 544
	case 5:
		horizResolution = 480
	}
	if horizResolution != 0 && vertResolution != 0 {
		va.Width, va.Height = horizResolution, vertResolution
	}

	switch aspect {
	case 0:
		va.Aspect = 2 // 4:3
	case 1:
		va.Aspect = 3 // 16:9
	default:
		sink.Warn("unknown aspect ratio code %d", aspect)
	}

	switch compression {
	case 0:
		va.Compression = "MPEG1"
	case 1:
		va.Compression = "MPEG2"
	default:
		va.Compression = "Unknown"
		va.Aspect = -1 // don't adjust aspect later for unknown formats
		sink.Warn("unknown video compression code %d", compression)
	}

	return va
}

// parseAudioAttr decodes the packed 3-byte audio_attr field. The special
// raw channel value 9 denotes a stereo-mono encoding observed on some
// discs.
func parseAudioAttr(raw audioAttr, sink report.Sink) (AudioAttr, bool) {
	coding := (raw[0] & 0xE0) >> 5
	channels := raw[1] & 0x0F

	aa := AudioAttr{Coding: "Unknown"}
	switch {
	case channels < 8:
		aa.Channels = int(channels) + 1
	case channels == 9:
		aa.Channels = 2
	default:
		return aa, false
	}

	switch coding {
	case 0:
		aa.Coding = "Dolby AC-3"
	case 2:
		aa.Coding = "MPEG-1"
	case 3:
		aa.Coding = "MPEG-2ext"
	case 4:
		aa.Coding = "Linear PCM"
	default:
		sink.Warn("unknown audio coding code %d", coding)
	}

	return aa, true
}

// parseTxtEncoding maps the IFO's txt_encoding byte to a charset name per
// VideoTextDataUsage.
func parseTxtEncoding(b byte, sink report.Sink) string {
	switch b {
	case 0x00:
		return "ASCII"
	case 0x01:
		return "ISO646-JP"
	case 0x10:
		return "JIS_C6220-1969-RO"
	case 0x11:
		return "ISO_8859-1"
	case 0x12:
		return "SHIFT_JIS"
	default:
		sink.Warn("unrecognised text encoding byte 0x%02X, falling back to ISO_8859-15", b)
		return "ISO_8859-15"
	}
}
