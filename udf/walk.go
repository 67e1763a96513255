package udf

import (
	"path/filepath"

	"github.com/pkg/errors"

	"panasonic-rec/extract"
)

// Root resolves and reads the root directory named by the File Set
// Descriptor's root ICB.
func (fs *FS) Root() ([]DirEntry, error) {
	root, err := fs.readICB(fs.root.ExtentLocation.LogicalBlockNumber)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read root directory entry")
	}
	if !root.isDir {
		return nil, errors.New("root ICB does not describe a directory")
	}
	return fs.readDirectoryData(root)
}

// Walk recurses through the directory tree rooted at entries, mirroring
// the MEIHDFS extraction driver's shape: list mode only reports names,
// otherwise files are extracted and directories recreated on the host.
func (fs *FS) Walk(entries []DirEntry, hostPath string, list bool) error {
	for _, de := range entries {
		childPath := filepath.Join(hostPath, de.Name)
		ico, err := fs.readICB(de.ICB.ExtentLocation.LogicalBlockNumber)
		if err != nil {
			fs.sink.Warn("%s: %v, skipping", de.Name, err)
			continue
		}

		if de.IsDir {
			children, err := fs.readDirectoryData(ico)
			if err != nil {
				return err
			}
			if !list {
				if err := extract.EnsureDir(fs.hostfs, childPath); err != nil {
					return err
				}
			}
			if err := fs.Walk(children, childPath, list); err != nil {
				return err
			}
			continue
		}

		if list {
			fs.sink.Info("%12d %s", ico.size, childPath)
			continue
		}
		if err := fs.extractFile(ico, childPath); err != nil {
			return err
		}
	}
	return nil
}
