package dvdvr

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"panasonic-rec/fserr"
	"panasonic-rec/report"
)

// ExtractProgram implements the §4.5 VRO extractor: it seeks vro to the
// program's VOBOffset and streams its VOBUs in sector-count order, applying
// per-sector MPEG-2 post-processing before writing each sector to w. A
// read error on a VOBU skips that VOBU's remaining sectors rather than
// aborting the whole program, mirroring the original's tolerance for a
// torn or partially-overwritten VRO.
func ExtractProgram(vro *os.File, p Program, video VideoAttr, w io.Writer, sink report.Sink) error {
	if _, err := vro.Seek(p.VOBOffset, io.SeekStart); err != nil {
		return errors.Wrap(err, "seek to program VOB offset failed")
	}

	ctx := newMPEG2Context(video)
	buf := make([]byte, sectorSize)

	for vobuIdx, sectors := range p.VOBUSizes {
		want := int(sectors) * sectorSize
		remaining := want

		for remaining > 0 {
			chunk := buf
			if remaining < sectorSize {
				chunk = buf[:remaining]
			}

			n, err := io.ReadFull(vro, chunk)
			if err != nil {
				sink.Warn("program %d: VOBU %d: %v, skipping remainder", p.Number, vobuIdx, err)
				if _, seekErr := vro.Seek(int64(remaining-n), io.SeekCurrent); seekErr != nil {
					return errors.Wrapf(fserr.ReadError, "program %d: failed to skip past damaged VOBU: %v", p.Number, seekErr)
				}
				break
			}

			ctx.fixSector(chunk[:n])

			if _, err := w.Write(chunk[:n]); err != nil {
				return errors.Wrapf(fserr.ShortWrite, "program %d: writing VOBU %d: %v", p.Number, vobuIdx, err)
			}

			remaining -= n
		}
	}

	if ctx.scrambled == ScrambledYes || ctx.scrambled == PartiallyScrambled {
		sink.Warn("program %d: %s", p.Number, scrambledVerdict(ctx.scrambled))
	} else {
		sink.Info("program %d: %s", p.Number, scrambledVerdict(ctx.scrambled))
	}

	return nil
}

func scrambledVerdict(s Scrambled) string {
	switch s {
	case Unscrambled:
		return "unscrambled"
	case ScrambledYes:
		return "scrambled"
	case PartiallyScrambled:
		return "partially scrambled"
	default:
		return "scrambling state unknown"
	}
}
