// Package rpmtest writes minimal binary RPM files for tests: a lead, an
// empty signature header and a main header carrying only the NEVRA tags.
// There is no payload.
package rpmtest

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	gorpm "github.com/sassoftware/go-rpmutils"
)

const (
	leadMagic   = 0xedabeedb
	headerMagic = 0x8eade801
)

// Package is the identity written into the header. Epoch is omitted when empty.
type Package struct {
	Name, Epoch, Version, Release, Arch string
}

type tag struct {
	id, dataType, count int32
	data                []byte
}

// Build returns the bytes of an RPM file for p.
func Build(p Package) ([]byte, error) {
	var buf bytes.Buffer

	lead := make([]byte, 96)
	binary.BigEndian.PutUint32(lead[0:4], leadMagic)
	lead[4], lead[5] = 3, 0
	binary.BigEndian.PutUint16(lead[8:10], 1)
	copy(lead[10:76], p.Name+"-"+p.Version+"-"+p.Release)
	binary.BigEndian.PutUint16(lead[76:78], 1)
	binary.BigEndian.PutUint16(lead[78:80], 5)
	buf.Write(lead)

	if err := writeHeader(&buf, nil); err != nil {
		return nil, err
	}

	str := func(id int, s string) tag {
		return tag{id: int32(id), dataType: gorpm.RPM_STRING_TYPE, count: 1, data: append([]byte(s), 0)}
	}
	tags := []tag{str(gorpm.NAME, p.Name), str(gorpm.VERSION, p.Version), str(gorpm.RELEASE, p.Release)}
	if p.Epoch != "" {
		e, err := strconv.ParseUint(p.Epoch, 10, 32)
		if err != nil {
			return nil, err
		}
		data := make([]byte, 4)
		binary.BigEndian.PutUint32(data, uint32(e))
		tags = append(tags, tag{id: gorpm.EPOCH, dataType: gorpm.RPM_INT32_TYPE, count: 1, data: data})
	}
	tags = append(tags, str(gorpm.ARCH, p.Arch))

	if err := writeHeader(&buf, tags); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeHeader writes the intro, index and data store of one header.
// Tags must be sorted by id.
func writeHeader(buf *bytes.Buffer, tags []tag) error {
	var index, store bytes.Buffer
	for _, t := range tags {
		// int32 data is 4-byte aligned in the store
		if t.dataType == gorpm.RPM_INT32_TYPE {
			for store.Len()%4 != 0 {
				store.WriteByte(0)
			}
		}
		entry := [4]int32{t.id, t.dataType, int32(store.Len()), t.count}
		if err := binary.Write(&index, binary.BigEndian, entry); err != nil {
			return err
		}
		store.Write(t.data)
	}
	intro := [4]uint32{headerMagic, 0, uint32(len(tags)), uint32(store.Len())}
	if err := binary.Write(buf, binary.BigEndian, intro); err != nil {
		return err
	}
	buf.Write(index.Bytes())
	buf.Write(store.Bytes())
	return nil
}

// WriteFile builds p and writes it to dir/name-version-release.arch.rpm,
// returning the path.
func WriteFile(t *testing.T, dir string, p Package) string {
	t.Helper()
	data, err := Build(p)
	if err != nil {
		t.Fatalf("build rpm %s: %v", p.Name, err)
	}
	path := filepath.Join(dir, p.Name+"-"+p.Version+"-"+p.Release+"."+p.Arch+".rpm")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write rpm %s: %v", path, err)
	}
	return path
}
