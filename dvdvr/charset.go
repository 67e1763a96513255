package dvdvr

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
)

// decodeText converts a NUL-padded disc label/title field from its
// txt_encoding charset into UTF-8, replacing the original's libiconv
// dependency (§10). Bytes that fail to decode under the selected charset
// fall back to the raw (already mostly-ASCII) bytes rather than failing
// the whole extraction.
func decodeText(raw []byte, charset string) string {
	dec := decoderFor(charset)
	if dec == nil {
		return string(raw)
	}
	out, err := dec.Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

func decoderFor(charset string) *encoding.Decoder {
	switch charset {
	case "SHIFT_JIS":
		return japanese.ShiftJIS.NewDecoder()
	case "ISO_8859-1":
		return charmap.ISO8859_1.NewDecoder()
	case "ISO_8859-15":
		return charmap.ISO8859_15.NewDecoder()
	default:
		// ASCII, ISO646-JP and JIS_C6220-1969-RO are all 7-bit-clean
		// supersets of ASCII for the label/title text this tool handles;
		// no dedicated x/text codec exists for the latter two.
		return nil
	}
}
