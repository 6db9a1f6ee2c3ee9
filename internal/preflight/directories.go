package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

// lowSpaceBytes is the free space below which a directory check fails.
// Revisions are small; this only catches a full disk.
const lowSpaceBytes = 64 << 20

// CheckDirectoryAccess passes when path is a directory the current user can
// read, write, and enter, on a filesystem with room left.
func CheckDirectoryAccess(name, path string) Result {
	fail := func(format string, args ...any) Result {
		return Result{Name: name, Detail: path + " (" + fmt.Sprintf(format, args...) + ")"}
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fail("does not exist")
	case err != nil:
		return fail("stat: %v", err)
	case !info.IsDir():
		return fail("not a directory")
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return fail("insufficient permissions: %v", err)
	}

	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Passed: true, Detail: path + " (read/write ok)"}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < lowSpaceBytes {
		return fail("only %s free", humanize.IBytes(free))
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok, %s free)", path, humanize.IBytes(free))}
}
