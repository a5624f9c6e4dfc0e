package rpmutils

import (
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/open-edge-platform/selfupdate-verifier/internal/ospackage"
)

// Paths of the rpm-md index and its detached signature, relative to the repository root.
const (
	RepomdPath    = "repodata/repomd.xml"
	RepomdSigPath = "repodata/repomd.xml.asc"
)

type repomdData struct {
	Type     string `xml:"type,attr"`
	Location struct {
		Href string `xml:"href,attr"`
	} `xml:"location"`
}

// ParseRepomd reads repomd.xml and returns the href of the primary metadata.
func ParseRepomd(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode repomd: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "data" {
			continue
		}
		var d repomdData
		if err := dec.DecodeElement(&d, &se); err != nil {
			return "", fmt.Errorf("decode repomd data element: %w", err)
		}
		if d.Type == "primary" && d.Location.Href != "" {
			return d.Location.Href, nil
		}
	}
	return "", fmt.Errorf("primary location not found in %s", RepomdPath)
}

// Decompress wraps r in a decompressor chosen by the suffix of name.
// Uncompressed metadata is passed through.
func Decompress(name string, r io.Reader) (io.ReadCloser, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".gz":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader for %s: %w", name, err)
		}
		return zr, nil
	case ".zst":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader for %s: %w", name, err)
		}
		return zr.IOReadCloser(), nil
	case ".xz":
		zr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader for %s: %w", name, err)
		}
		return io.NopCloser(zr), nil
	case ".xml", "":
		return io.NopCloser(r), nil
	default:
		return nil, fmt.Errorf("unsupported metadata compression: %s", name)
	}
}

type primaryPackage struct {
	Name    string `xml:"name"`
	Arch    string `xml:"arch"`
	Version struct {
		Epoch string `xml:"epoch,attr"`
		Ver   string `xml:"ver,attr"`
		Rel   string `xml:"rel,attr"`
	} `xml:"version"`
}

// ParsePrimary decodes primary metadata into package records. Source
// packages are skipped. origin is copied into every record.
func ParsePrimary(r io.Reader, origin string) ([]ospackage.PackageInfo, error) {
	var out []ospackage.PackageInfo
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("decode primary metadata: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "package" {
			continue
		}
		var p primaryPackage
		if err := dec.DecodeElement(&p, &se); err != nil {
			return nil, fmt.Errorf("decode package element: %w", err)
		}
		if p.Name == "" || p.Version.Ver == "" {
			return nil, fmt.Errorf("package entry without name or version in primary metadata")
		}
		if p.Arch == "src" || p.Arch == "nosrc" {
			continue
		}
		v := Version{Version: p.Version.Ver, Release: p.Version.Rel}
		if p.Version.Epoch != "" && p.Version.Epoch != "0" {
			v.Epoch = p.Version.Epoch
		}
		out = append(out, ospackage.PackageInfo{
			Name:    p.Name,
			Version: v.String(),
			Arch:    p.Arch,
			Origin:  origin,
		})
	}
	return out, nil
}
