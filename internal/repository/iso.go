package repository

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	diskfs "github.com/diskfs/go-diskfs"
	"github.com/diskfs/go-diskfs/disk"
	"github.com/diskfs/go-diskfs/filesystem"
)

const repodataDir = "repodata"

// isoFS reads repository metadata from the ISO9660 filesystem of an image.
type isoFS struct {
	dsk *disk.Disk
	fs  filesystem.FileSystem
}

func openISO(imagePath string) (*isoFS, error) {
	dsk, err := diskfs.Open(imagePath, diskfs.WithOpenMode(diskfs.ReadOnly))
	if err != nil {
		return nil, fmt.Errorf("open ISO image %s: %w", imagePath, err)
	}
	// an ISO image has no partition table, the filesystem spans the whole image
	fs, err := dsk.GetFilesystem(0)
	if err != nil {
		dsk.Close()
		return nil, fmt.Errorf("get filesystem of %s: %w", imagePath, err)
	}
	iso := &isoFS{dsk: dsk, fs: fs}
	if err := iso.checkNames(imagePath); err != nil {
		iso.Close()
		return nil, err
	}
	return iso, nil
}

// checkNames rejects images whose file names are plain ISO9660 names.
// Without Rock Ridge, repodata/ is stored as REPODATA and primary
// metadata hrefs cannot be mapped to the mangled upper case names.
func (i *isoFS) checkNames(imagePath string) error {
	entries, err := i.fs.ReadDir("/")
	if err != nil {
		return fmt.Errorf("read root directory of %s: %w", imagePath, err)
	}
	for _, e := range entries {
		name := e.Name()
		if name == repodataDir {
			return nil
		}
		if strings.EqualFold(name, repodataDir) {
			return fmt.Errorf("%w: ISO image %s has no Rock Ridge file names (found %s)",
				ErrUnsupportedLocation, imagePath, name)
		}
	}
	return fmt.Errorf("ISO image %s does not contain an rpm-md repository (no %s directory)", imagePath, repodataDir)
}

func (i *isoFS) Open(name string) (io.ReadCloser, error) {
	f, err := i.fs.OpenFile(path.Join("/", name), os.O_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("open %s in ISO image: %w", name, err)
	}
	return f, nil
}

func (i *isoFS) Close() error {
	fsErr := i.fs.Close()
	if err := i.dsk.Close(); err != nil {
		return fmt.Errorf("close ISO image: %w", err)
	}
	return fsErr
}
