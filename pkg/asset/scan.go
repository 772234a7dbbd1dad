package asset

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/exp/mmap"
)

// Filter selects files by extension during a scan
type Filter func(ext string) bool

// Scan walks root and returns every file whose extension passes filter,
// sorted by relative path
func Scan(root string, filter Filter) ([]Asset, error) {
	var assets []Asset

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := Ext(path)
		if !filter(ext) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		assets = append(assets, Asset{
			Path:      path,
			Rel:       filepath.ToSlash(rel),
			Extension: ext,
			Size:      info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	sort.Slice(assets, func(i, j int) bool { return assets[i].Rel < assets[j].Rel })
	return assets, nil
}

// ScanEncrypted returns every obfuscated asset under root
func ScanEncrypted(root string) ([]Asset, error) {
	return Scan(root, IsEncrypted)
}

// ScanPlain returns every png/m4a/ogg file under root
func ScanPlain(root string) ([]Asset, error) {
	return Scan(root, IsPlain)
}

// LoadInto reads the whole asset into buf, growing it when the file is
// larger than its capacity
func LoadInto(path string, buf []byte) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read asset: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("read asset: %w", err)
	}
	size := int(info.Size())
	if cap(buf) < size {
		buf = make([]byte, size)
	}
	buf = buf[:size]
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, fmt.Errorf("read asset: %w", err)
	}
	return buf, nil
}

// ReadPrefix returns up to n bytes from the start of the file. The file
// is memory mapped so only the touched pages are read.
func ReadPrefix(path string, n int) ([]byte, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", path, err)
	}
	defer r.Close()

	if r.Len() < n {
		n = r.Len()
	}
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if _, err := r.ReadAt(buf, 0); err != nil && err != io.EOF {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return buf, nil
}
