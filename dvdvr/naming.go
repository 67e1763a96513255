package dvdvr

import (
	"fmt"
	"os"
	"strings"
)

// NameProgram derives the output filename for a program per §4.5 Naming.
// base selects the source:
//   - ""  : use the program's recording timestamp (%F_%T)
//   - "-" : route extraction to standard output; returned verbatim
//   - "[label]" (base wrapped in brackets): use the sanitised Program Set
//     label/title
//   - anything else: use base as a user-provided prefix
//
// Any collision with an existing file in dir is broken by appending
// "#NNN" where NNN is the program's 1-based number.
func NameProgram(dir, base string, p Program) string {
	if base == "-" {
		return "-"
	}

	var stem string
	switch {
	case base == "":
		if p.HasTime {
			stem = p.Timestamp.Format("2006-01-02_15:04:05")
		} else {
			stem = fmt.Sprintf("program%d", p.Number)
		}
	case strings.HasPrefix(base, "[") && strings.HasSuffix(base, "]"):
		stem = sanitizeName(firstNonEmpty(p.Title, p.Label))
		if stem == "" {
			stem = fmt.Sprintf("program%d", p.Number)
		}
	default:
		stem = base
	}

	name := stem + ".vob"
	path := joinPath(dir, name)
	if !exists(path) {
		return name
	}

	suffixed := fmt.Sprintf("%s#%03d.vob", stem, p.Number)
	return suffixed
}

// sanitizeName replaces the characters §4.5 calls out (space, /, :, ?, \)
// with "-". Conversion from the disc's native text encoding into UTF-8 is
// the caller's responsibility (ParseIFO's TextEncoding names the charset);
// this function only enforces filesystem safety on an already-decoded
// string.
func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', ':', '?', '\\':
			return '-'
		default:
			return r
		}
	}, s)
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + string(os.PathSeparator) + name
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
