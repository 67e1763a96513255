package meihdfs

import (
	"path/filepath"
	"time"

	"panasonic-rec/extract"
	"panasonic-rec/report"
	"panasonic-rec/storage"
)

// maxShadowProbeDefault bounds how many mirror superblocks shadow
// fallback will try before giving up (§4.2 shadow fallback).
const maxShadowProbeDefault = 64

// FS is a parsed MEIHDFS image, ready for listing or extraction.
type FS struct {
	reader *storage.Reader
	sink   report.Sink

	super  Superblock
	tables []rawItbl

	maxShadowProbe int
	hostfs         extract.HostFS
}

// Open scans reader for a MEIHDFS header starting at seed and loads its
// primary inode tables.
func Open(reader *storage.Reader, seed int64, sink report.Sink) (*FS, error) {
	super, err := FindSuperblock(reader, seed)
	if err != nil {
		return nil, err
	}
	sink.Info("found MEIHDFS version 2.%d header at offset 0x%x", super.Version, super.Start)

	tables, err := discoverITables(reader, super.Start, super.ITables(), sink)
	if err != nil {
		return nil, err
	}

	return &FS{
		reader:         reader,
		sink:           sink,
		super:          super,
		tables:         tables,
		maxShadowProbe: maxShadowProbeDefault,
		hostfs:         extract.OS(),
	}, nil
}

// SetHostFS overrides the filesystem Walk and extractFile write to,
// letting tests substitute an in-memory afero.Fs.
func (fs *FS) SetHostFS(h extract.HostFS) {
	fs.hostfs = h
}

// Version returns the version digit x decoded from the "2.x" header magic.
func (fs *FS) Version() int {
	return fs.super.Version
}

// Root loads the root directory (inode id 0).
func (fs *FS) Root() (Directory, error) {
	off, err := inodeOffset(fs.tables, 0)
	if err != nil {
		return Directory{}, err
	}
	return readDirectory(fs, off)
}

// Walk implements the C6 extraction driver's algorithm, specialised for
// MEIHDFS: it lists dir's children, recurses into subdirectories, and
// invokes extract for each file, applying mtime to both. list, when
// true, skips all host filesystem writes and only reports names.
func (fs *FS) Walk(dir Directory, hostPath string, list bool) error {
	for _, entry := range dir.Entries {
		childPath := filepath.Join(hostPath, entry.Name)

		switch entry.Type {
		case TypeDirectory:
			off, err := inodeOffset(fs.tables, entry.InodeID)
			if err != nil {
				return err
			}
			child, err := readDirectory(fs, off)
			if err != nil {
				return err
			}

			if !list {
				if err := extract.EnsureDir(fs.hostfs, childPath); err != nil {
					return err
				}
			}
			if err := fs.Walk(child, childPath, list); err != nil {
				return err
			}
			if !list {
				fs.setTimes(childPath, child.Time)
			}

		case TypeFile:
			ino, err := fs.resolveInode(entry.InodeID)
			if err != nil {
				return err
			}

			if list {
				fs.sink.Info("%s %20d %s", ino.ModTime(fs.super.Version).Format("2006-01-02 15:04:05"), ino.Size, childPath)
				continue
			}
			if err := fs.extractFile(ino, childPath); err != nil {
				return err
			}

		default:
			fs.sink.Warn("%s: unknown entry type %d, skipping", entry.Name, entry.Type)
		}
	}
	return nil
}

// setTimes applies a MEIHDFS-recorded timestamp to a host path's mtime
// and atime, converting the version-dependent epoch.
func (fs *FS) setTimes(path string, recorded uint32) {
	t := int64(recorded)
	if fs.super.Version < 3 {
		t += timeOffset
	}
	mt := time.Unix(t, 0)
	if err := fs.hostfs.Chtimes(path, mt, mt); err != nil {
		fs.sink.Warn("failed to set mtime on %s: %v", path, err)
	}
}
