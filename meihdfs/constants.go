// Package meihdfs implements the MEIHDFS parser and extractor (C2): an
// inode-and-extent filesystem found on Panasonic DVD/HDD recorder hard
// disks, versions V2.0 through V2.3+ plus the HDFS2.x variant.
package meihdfs

const (
	// ISIZE is the size in bytes of one inode or one directory page.
	ISIZE = 0x1000

	// BSIZE is the MPEG video stream block size in bytes.
	BSIZE = 0x800

	// BCNT is the number of BSIZE blocks per allocation unit.
	BCNT = 0x180

	// ASIZE is the MEIHDFS allocation unit: BCNT * BSIZE, 768 KiB.
	ASIZE = BSIZE * BCNT

	// GSIZE is the superblock replication stride in allocation units.
	GSIZE = 0x10000

	// itblStart is the byte offset of the inode table search region,
	// relative to the image start.
	itblStart = ASIZE + 0x6000

	// itblScanRange bounds the inode table discovery scan.
	itblScanRange = 0x20000

	// timeOffset converts a pre-V3 timestamp (seconds since
	// 1980-01-01 00:00:00 UTC) to the UNIX epoch.
	timeOffset = 315532800

	// inodeMagic and inodeMagicMask identify an accepted inode header.
	inodeMagic     = 0x81C00001
	inodeMagicMask = 0xFFC0FFFF

	// directoryMagic/rootMagic and their mask identify an accepted
	// directory header; root directories use a distinct magic.
	directoryMagic  = 0x41C20001
	rootMagic       = 0x41FF0001
	directoryMagic0 = 0xFFFF0001

	// inodeRuns is the maximum number of extent runs per inode.
	inodeRuns = 0x500

	// itblSize is the number of entries in one inode table.
	itblSize = 0x3FE

	// itablesV20 and itablesV23 are the version-dependent inode table
	// counts.
	itablesV20 = 6
	itablesV23 = 9

	// dirEntriesFirst and dirEntriesOther are the per-page directory
	// entry counts: the first page follows a header and preamble, every
	// subsequent page starts with entries at offset zero.
	dirEntriesFirst = 95
	dirEntriesOther = 103

	// dirPreambleWords is the length, in uint16 words, of the unknown
	// preamble area following the directory header on page zero.
	dirPreambleWords = 50 * 8

	// TypeFile and TypeDirectory are the directory entry type tags.
	TypeFile      = 1
	TypeDirectory = 2
)
