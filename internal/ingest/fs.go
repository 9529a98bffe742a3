package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ScanDir walks a directory tree and produces one source per image file,
// with RelativePath rooted at the parent of root so that root itself becomes
// the folder key for its direct children. File bytes are not read; sources
// carry path handles for lazy resolution.
func ScanDir(root string) ([]Source, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	base := filepath.Dir(filepath.Clean(root))
	var sources []Source
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		src := Source{
			Name:         d.Name(),
			RelativePath: filepath.ToSlash(rel),
			Path:         p,
			Size:         fi.Size(),
		}
		if Accepts(src) {
			sources = append(sources, src)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return sources, nil
}
