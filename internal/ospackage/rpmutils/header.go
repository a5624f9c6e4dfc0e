package rpmutils

import (
	"fmt"
	"io"

	gorpm "github.com/sassoftware/go-rpmutils"

	"github.com/open-edge-platform/selfupdate-verifier/internal/ospackage"
)

// ReadPackageHeader reads the header of an .rpm file and returns its
// name, version-release and arch.
func ReadPackageHeader(r io.Reader, origin string) (ospackage.PackageInfo, error) {
	hdr, err := gorpm.ReadHeader(r)
	if err != nil {
		return ospackage.PackageInfo{}, fmt.Errorf("read rpm header: %w", err)
	}
	nevra, err := hdr.GetNEVRA()
	if err != nil {
		return ospackage.PackageInfo{}, fmt.Errorf("read rpm NEVRA: %w", err)
	}
	v := Version{Version: nevra.Version, Release: nevra.Release}
	if nevra.Epoch != "" && nevra.Epoch != "0" {
		v.Epoch = nevra.Epoch
	}
	return ospackage.PackageInfo{
		Name:    nevra.Name,
		Version: v.String(),
		Arch:    nevra.Arch,
		Origin:  origin,
	}, nil
}
