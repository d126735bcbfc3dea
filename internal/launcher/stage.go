package launcher

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// StageDenylist lists directory names never copied into the staged working
// directory: build artifacts, prior results, package caches and environment
// manager trees. Matching is by bare name at any depth.
var StageDenylist = []string{
	"latch",
	".latch",
	"nextflow",
	".nextflow",
	"work",
	"results",
	"miniconda",
	"anaconda3",
	"mambaforge",
}

func denylisted(name string) bool {
	for _, d := range StageDenylist {
		if name == d {
			return true
		}
	}
	return false
}

// StageTree copies the tree at src into dst, skipping denylisted directories.
// Symlinks are copied as links and never dereferenced, so a dangling link in
// the source does not abort the copy. Existing directories under dst are
// reused and existing files overwritten.
func StageTree(src, dst string) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("failed to create staging directory %s: %w", dst, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("failed to read source directory %s: %w", src, err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		switch {
		case entry.Type()&os.ModeSymlink != 0:
			if err := copySymlink(srcPath, dstPath); err != nil {
				return err
			}
		case entry.IsDir():
			if denylisted(entry.Name()) {
				continue
			}
			if err := StageTree(srcPath, dstPath); err != nil {
				return err
			}
		default:
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	return nil
}

func copySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return fmt.Errorf("failed to read symlink %s: %w", src, err)
	}
	// Re-staging into an existing tree: replace whatever is there.
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to replace %s: %w", dst, err)
	}
	if err := os.Symlink(target, dst); err != nil {
		return fmt.Errorf("failed to create symlink %s: %w", dst, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return nil
}

// countStagedFiles walks the staged tree and counts regular files and links.
// Used only for the run-outcome metrics.
func countStagedFiles(dir string) int {
	count := 0
	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err == nil && info != nil && !info.IsDir() {
			count++
		}
		return nil
	})
	return count
}
