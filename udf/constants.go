// Package udf implements the UDF/ECMA-167 parser and extractor (C3),
// customised for Panasonic-authored discs that violate strict UDF in
// minor ways: the File Set Descriptor is located by tag scan rather than
// trusted to live at the Logical Volume Descriptor's nominal offset.
package udf

const (
	// SectorSize is the UDF block size used throughout this module.
	SectorSize = 2048

	// avdpSector is the first of the standard fixed locations an Anchor
	// Volume Descriptor Pointer is tried at before falling back to the
	// tag scan (§4.3 Partition discovery).
	avdpSector = 256

	// fsdScanStride is the probe stride used when scanning for a File
	// Set Descriptor tag.
	fsdScanStride = 64 * 1024

	// fsdScanLimit bounds the number of strides the scan will attempt.
	fsdScanLimit = 4096

	// Descriptor tag identifiers (ECMA-167 14.2 / UDF 2.3.5).
	tagAnchorVolume = 2
	tagPartition    = 5
	tagLogicalVol   = 6
	tagTerminating  = 8
	tagFileSet      = 256
	tagFileID       = 257
	tagFileEntry    = 261
	tagExtFileEntry = 266

	// File characteristics bits (ECMA-167 14.4.3).
	charDirectory = 0x02
	charParent    = 0x08

	// Allocation descriptor variants selected by icb_tag.flags & 0x7.
	allocShort    = 0
	allocLong     = 1
	allocExtended = 2
	allocEmbedded = 3

	// fidFixedSize is the size of a FileIdentifierDescriptor up to but
	// not including implementation use and file identifier.
	fidFixedSize = 38

	// fileEntryFixedSize / extFileEntryFixedSize are the fixed-part
	// sizes of FileEntry/ExtendedFileEntry preceding extended
	// attributes and allocation descriptors.
	fileEntryFixedSize    = 176
	extFileEntryFixedSize = 216
)
