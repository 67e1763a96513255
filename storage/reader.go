// Package storage implements the block-device abstraction shared by every
// reader in this module: a random-access, read-only stream over a disk
// image or IFO/VRO file with absolute-offset seeks and retryable
// per-sector reads.
package storage

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"
)

// SectorSize is the granularity of recoverable reads (§4.1): a failing
// chunk is always replaced wholesale by this many zero bytes.
const SectorSize = 512

// Reader wraps an opened image file, providing the seek/read/read-recoverable
// contract every parser in this module is built against. It also satisfies
// io.Reader and io.ReaderAt so it composes directly with
// encoding/binary.Read and io.CopyN. Its Seek takes an absolute offset
// only and does not satisfy io.Seeker.
type Reader struct {
	f *os.File
	b *bufio.Reader

	pos int64

	// Recover enables single-sector recovery mode: a failing 512-byte
	// chunk is zero-padded instead of aborting the read.
	Recover bool

	// warn receives one message per recovered sector; nil disables
	// reporting (the caller is expected to wire report.Sink.Warn here).
	warn func(format string, args ...interface{})
}

// NewReader constructs a Reader over an already-opened file.
func NewReader(f *os.File) *Reader {
	return &Reader{
		f: f,
		b: bufio.NewReaderSize(f, 1<<20),
	}
}

// OnWarn installs the callback used to surface recovered-sector warnings.
func (r *Reader) OnWarn(fn func(format string, args ...interface{})) {
	r.warn = fn
}

// Seek repositions the read cursor to an absolute byte offset. Every
// subsequent Read/Peek/ReadByte call is relative to this position.
func (r *Reader) Seek(offset int64) error {
	if _, err := r.f.Seek(offset, io.SeekStart); err != nil {
		return errors.Wrapf(err, "seek to offset 0x%x failed", offset)
	}
	r.pos = offset
	r.b.Reset(r.f)
	return nil
}

// Pos returns the current absolute byte offset of the read cursor.
func (r *Reader) Pos() int64 {
	return r.pos
}

// Read implements io.Reader. It never recovers from a short or failing
// read; callers that need recovery use ReadRecoverable.
func (r *Reader) Read(p []byte) (int, error) {
	n, err := io.ReadFull(r.b, p)
	r.pos += int64(n)
	return n, err
}

// ReadAt implements io.ReaderAt without disturbing the shared cursor.
func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	return r.f.ReadAt(p, off)
}

// ReadByte reads a single byte, panicking on error. This mirrors the
// teacher corpus's tape-block readers, which only ever call ReadByte once
// EOF has already been ruled out via Peek.
func (r *Reader) ReadByte() byte {
	var b [1]byte
	if _, err := r.Read(b[:]); err != nil {
		panic(errors.Wrap(err, "ReadByte failed"))
	}
	return b[0]
}

// Peek returns the next n bytes without advancing the cursor.
func (r *Reader) Peek(n int) ([]byte, error) {
	return r.b.Peek(n)
}

// PeekShort returns the next two bytes as a little-endian uint16 without
// advancing the cursor.
func (r *Reader) PeekShort() (uint16, error) {
	b, err := r.Peek(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

// ReadRecoverable implements the §4.1 recovery contract: reads of at least
// one sector are chunked into SectorSize pieces; a chunk whose underlying
// read fails is replaced by zero bytes and the cursor advanced to the start
// of the next sector regardless. Reads smaller than one sector pass through
// unmodified.
func (r *Reader) ReadRecoverable(p []byte) (int, error) {
	if !r.Recover || len(p) < SectorSize {
		return r.Read(p)
	}

	total := 0
	for total < len(p) {
		chunk := p[total:]
		if len(chunk) > SectorSize {
			chunk = chunk[:SectorSize]
		}

		n, err := io.ReadFull(r.b, chunk)
		if err != nil {
			for i := range chunk {
				chunk[i] = 0
			}
			if r.warn != nil {
				r.warn("recovered sector at offset 0x%x: %v", r.pos, err)
			}
			// Position the cursor at the start of the next sector even
			// though the underlying read may have left it mid-sector.
			if seekErr := r.Seek(r.pos + SectorSize); seekErr != nil {
				return total, errors.Wrap(seekErr, "failed to reseek past recovered sector")
			}
		} else {
			r.pos += int64(n)
		}
		total += len(chunk)
	}
	return total, nil
}

// Close releases the underlying file descriptor.
func (r *Reader) Close() error {
	return r.f.Close()
}
