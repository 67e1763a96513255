package meihdfs

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"panasonic-rec/report"
	"panasonic-rec/storage"
)

// tableSkipPosition is the index treated as a special skip during
// discovery (§4.2): the table at this position is always re-validated
// rather than accepted unconditionally.
const tableSkipPosition = 3

// discoverITables implements the §4.2 inode-table discovery scan: linear
// probing of the region after itblStart, accepting up to `count` tables.
// A candidate is accepted unconditionally once it is the second or later
// table found, except at tableSkipPosition, which always requires the
// header/entry validation predicate.
func discoverITables(r *storage.Reader, start int64, count int, sink report.Sink) ([]rawItbl, error) {
	tables := make([]rawItbl, 0, count)
	attempts := itblScanRange / ISIZE

	for i := 0; i < attempts && len(tables) < count; i++ {
		if err := r.Seek(start + itblStart + int64(i)*ISIZE); err != nil {
			return nil, errors.Wrap(err, "seek to inode table region failed")
		}
		var candidate rawItbl
		if err := binary.Read(r, binary.LittleEndian, &candidate); err != nil {
			return nil, errors.Wrap(err, "failed to read inode table candidate")
		}

		pos := len(tables)
		if (pos > 0 && pos != tableSkipPosition) || validTableHeader(candidate) {
			tables = append(tables, candidate)
		}
	}

	if len(tables) < count {
		sink.Warn("only found %d of %d inode tables", len(tables), count)
	}
	return tables, nil
}

// validTableHeader implements the §4.2 validation predicate: generation
// in [1, 0xFFFF], the first reserved word (Magic) non-zero, reserved I1/I2
// zero, and at least one entry with a non-zero offset and I2==I3==1.
func validTableHeader(t rawItbl) bool {
	if t.Generation == 0 || t.Generation > 0xFFFF || t.Magic == 0 || t.I1 != 0 || t.I2 != 0 {
		return false
	}
	for _, e := range t.Entries {
		if e.Offset != 0 && e.I2 == 1 && e.I3 == 1 {
			return true
		}
	}
	return false
}
