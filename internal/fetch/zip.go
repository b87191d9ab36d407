package fetch

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
)

// HasValidZip reports whether path is a regular file that opens as a zip archive.
func HasValidZip(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	r, err := zip.OpenReader(path)
	if err != nil {
		return false
	}
	_ = r.Close()
	return true
}

// ZipHasFiles reports whether every name in files is an entry of the archive at path.
func ZipHasFiles(path string, files []string) (bool, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = r.Close() }()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	for _, f := range files {
		if !slices.Contains(names, f) {
			return false, nil
		}
	}
	return true, nil
}

// FilesExist reports whether every file is present in dir.
func FilesExist(dir string, files []string) bool {
	for _, f := range files {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			return false
		}
	}
	return true
}

// Extract writes the named entries of the archive at zipPath into destDir,
// or every entry when files is empty. Entries that would land outside
// destDir are rejected.
func Extract(zipPath, destDir string, files []string) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", zipPath, err)
	}
	defer func() { _ = r.Close() }()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", destDir, err)
	}

	var written []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if len(files) > 0 && !slices.Contains(files, f.Name) {
			continue
		}
		if !filepath.IsLocal(f.Name) {
			return written, fmt.Errorf("refusing to extract %q outside %s", f.Name, destDir)
		}
		target := filepath.Join(destDir, f.Name)
		if err := extractFile(f, target); err != nil {
			return written, fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
		written = append(written, f.Name)
	}

	if len(files) > 0 && len(written) < len(files) {
		var missing []string
		for _, name := range files {
			if !slices.Contains(written, name) {
				missing = append(missing, name)
			}
		}
		return written, fmt.Errorf("%s has no entries %v", zipPath, missing)
	}
	return written, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	_, err = writeAtomic(target, rc)
	return err
}

// OpenFiles opens files inside dir in order. The caller closes them with
// the returned function.
func OpenFiles(dir string, files []string) ([]io.Reader, func(), error) {
	var opened []*os.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	readers := make([]io.Reader, 0, len(files))
	for _, name := range files {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to open %s: %w", name, err)
		}
		opened = append(opened, f)
		readers = append(readers, f)
	}
	return readers, closeAll, nil
}
