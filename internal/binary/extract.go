package binary

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Extractor handles archive extraction
type Extractor struct{}

// NewExtractor creates a new extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractZip extracts a .zip archive to a destination directory, keeping
// file modes and symlinks.
func (e *Extractor) ExtractZip(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer reader.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	root := filepath.Clean(destDir) + string(os.PathSeparator)

	for _, f := range reader.File {
		target := filepath.Join(destDir, f.Name)

		// Security check: prevent path traversal
		if !strings.HasPrefix(target, root) {
			return fmt.Errorf("illegal file path: %s", f.Name)
		}

		mode := f.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}

		case mode&os.ModeSymlink != 0:
			if err := extractSymlink(f, target); err != nil {
				return err
			}

		case mode.IsRegular():
			if err := extractFile(f, target); err != nil {
				return err
			}

		default:
			continue
		}
	}

	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", target, err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer src.Close()

	perm := f.Mode().Perm()
	if perm == 0 {
		perm = 0644
	}

	outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create file %s: %w", target, err)
	}

	if _, err := io.Copy(outFile, src); err != nil {
		outFile.Close()
		return fmt.Errorf("write file %s: %w", target, err)
	}

	return outFile.Close()
}

func extractSymlink(f *zip.File, target string) error {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer src.Close()

	linkname, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("read symlink %s: %w", f.Name, err)
	}

	if filepath.IsAbs(string(linkname)) {
		return fmt.Errorf("illegal symlink target: %s -> %s", f.Name, linkname)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", target, err)
	}

	if err := os.Symlink(string(linkname), target); err != nil {
		return fmt.Errorf("create symlink %s: %w", target, err)
	}
	return nil
}

// SetExecutable sets executable permissions on a file
func SetExecutable(path string) error {
	if err := os.Chmod(path, 0755); err != nil {
		return fmt.Errorf("set executable: %w", err)
	}
	return nil
}
