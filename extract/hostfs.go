// Package extract implements the C6 shared extraction driver: the
// mkdir/open/write/stat/mtime sequence and dedupe rule that every
// tree-shaped reader (meihdfs, udf) walks its directory structure
// against, plus the host filesystem abstraction that makes it testable.
package extract

import "github.com/spf13/afero"

// HostFS is the filesystem surface the extraction drivers need: mkdir,
// stat, open-for-write, and chtimes. afero.Fs satisfies it directly, so
// production code runs against afero.NewOsFs() and tests run against
// afero.NewMemMapFs() without touching a scratch directory (§11).
type HostFS = afero.Fs

// OS returns the default production filesystem.
func OS() HostFS {
	return afero.NewOsFs()
}
