// Package fserr defines the sentinel error kinds shared by every reader
// in this module (§7), so callers and tests can classify a failure with
// errors.Is instead of matching message strings.
package fserr

import "github.com/pkg/errors"

// Sentinel error kinds. Wrap these with errors.Wrapf to attach offset,
// inode or program context; errors.Is still matches through the wrap.
var (
	// HeaderNotFound: no magic found within the search range.
	HeaderNotFound = errors.New("header not found")

	// ReadError: an OS read failed on a non-recoverable stream.
	ReadError = errors.New("read error")

	// BadMagic: an inode or tag did not match the expected mask.
	BadMagic = errors.New("bad magic")

	// InodeOutOfRange: a directory entry referenced an inode beyond
	// tables * per-table-size.
	InodeOutOfRange = errors.New("inode out of range")

	// TruncatedInode: an inode's first extent run was empty while its
	// recorded size was non-zero, and no shadow copy resolved it.
	TruncatedInode = errors.New("truncated inode")

	// ShortWrite: write() returned fewer bytes than requested.
	ShortWrite = errors.New("short write")

	// TextConvertError: a charset conversion failed.
	TextConvertError = errors.New("text conversion error")

	// NameTooLong: a directory entry's name length exceeded the inline
	// name buffer.
	NameTooLong = errors.New("name too long")
)
