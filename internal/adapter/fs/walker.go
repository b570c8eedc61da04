package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"docsearch/internal/domain"
)

// Walker resolves an ingest source argument into the table files it names.
// The argument may be a single file, a directory, or a doublestar glob such
// as "data/**/*.csv".
type Walker struct {
	includes []string
	excludes []string
}

func NewWalker(includes, excludes []string) *Walker {
	if len(includes) == 0 {
		includes = []string{"**/*.csv"}
	}
	return &Walker{
		includes: includes,
		excludes: excludes,
	}
}

type FileInfo struct {
	Path    string
	ModTime int64
	Size    int64
}

// Resolve returns matching files in lexical path order so document ids are
// assigned the same way on every run.
func (w *Walker) Resolve(source string) ([]FileInfo, error) {
	if source == "" {
		return nil, fmt.Errorf("%w: empty source path", domain.ErrInvalidConfiguration)
	}

	if !hasMeta(source) {
		info, err := os.Stat(source)
		if err != nil {
			return nil, fmt.Errorf("%w: source %s: %v", domain.ErrMalformedInput, source, err)
		}
		if !info.IsDir() {
			return []FileInfo{toFileInfo(source, info)}, nil
		}
		return w.Walk(source)
	}

	base, pattern := doublestar.SplitPattern(filepath.ToSlash(source))
	matches, err := doublestar.Glob(os.DirFS(base), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("%w: bad source pattern %q: %v", domain.ErrInvalidConfiguration, source, err)
	}
	sort.Strings(matches)

	files := make([]FileInfo, 0, len(matches))
	for _, m := range matches {
		if w.shouldExclude(m) {
			continue
		}
		path := filepath.Join(base, filepath.FromSlash(m))
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		files = append(files, toFileInfo(path, info))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files match %s", domain.ErrMalformedInput, source)
	}
	return files, nil
}

// Walk collects files under root that match the include patterns.
func (w *Walker) Walk(root string) ([]FileInfo, error) {
	var files []FileInfo

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if relPath != "." && w.shouldExclude(relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if w.shouldInclude(relPath) && !w.shouldExclude(relPath) {
			files = append(files, toFileInfo(path, info))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (w *Walker) shouldInclude(path string) bool {
	for _, pattern := range w.includes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (w *Walker) shouldExclude(path string) bool {
	for _, pattern := range w.excludes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
		if strings.HasSuffix(path, "/") {
			if matched, _ := doublestar.Match(pattern, strings.TrimSuffix(path, "/")); matched {
				return true
			}
		}
	}
	return false
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}

func toFileInfo(path string, info os.FileInfo) FileInfo {
	return FileInfo{Path: path, ModTime: info.ModTime().Unix(), Size: info.Size()}
}
