package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	apperrors "github.com/xaam-platform/envelope/internal/errors"
)

// SealedExt is appended to a file when it is sealed.
const SealedExt = ".sealed"

// ResolveFiles takes user-provided paths/globs and returns matching files.
// If patterns is empty, returns nil.
// sealed=true finds *.sealed files, sealed=false finds everything else.
func ResolveFiles(patterns []string, baseDir string, sealed bool) ([]string, error) {
	if len(patterns) == 0 {
		return nil, nil
	}

	var files []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		resolved, err := resolvePattern(pattern, baseDir, sealed)
		if err != nil {
			return nil, err
		}

		for _, f := range resolved {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}

	if len(files) == 0 {
		return nil, apperrors.ErrNoFilesFound
	}

	return files, nil
}

// SealedPath returns the output path for sealing path.
func SealedPath(path string) string {
	return path + SealedExt
}

// OpenedPath returns the output path for opening a sealed file.
func OpenedPath(path string) string {
	return strings.TrimSuffix(path, SealedExt)
}

// IsSealed reports whether path names a sealed file.
func IsSealed(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, SealedExt) && base != SealedExt
}

func resolvePattern(pattern string, baseDir string, sealed bool) ([]string, error) {
	absPattern := pattern
	if !filepath.IsAbs(pattern) {
		absPattern = filepath.Join(baseDir, pattern)
	}

	info, err := os.Stat(absPattern)
	if err == nil && info.IsDir() {
		return findFilesInDir(absPattern, sealed)
	}

	if strings.ContainsAny(pattern, "*?[{") {
		return expandGlob(absPattern, pattern, sealed)
	}

	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrFileNotFound, pattern)
		}
		return nil, err
	}

	if sealed && !IsSealed(absPattern) {
		return nil, fmt.Errorf("%w: %s is not a %s file", apperrors.ErrInvalidFileType, pattern, SealedExt)
	}
	if !sealed && IsSealed(absPattern) {
		return nil, fmt.Errorf("%w: %s is already sealed", apperrors.ErrInvalidFileType, pattern)
	}

	return []string{absPattern}, nil
}

func expandGlob(absPattern, pattern string, sealed bool) ([]string, error) {
	matches, err := doublestar.FilepathGlob(absPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}

	var filtered []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if IsSealed(m) == sealed {
			filtered = append(filtered, m)
		}
	}

	return filtered, nil
}

func findFilesInDir(dir string, sealed bool) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		if IsSealed(path) == sealed {
			files = append(files, path)
		}

		return nil
	})

	return files, err
}
