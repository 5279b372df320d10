package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// fileCollector lists the project files a parser should see
type fileCollector struct {
	root     string
	excludes []string
	ignore   *ignore.GitIgnore
}

func newFileCollector(root string, excludes []string, respectGitignore bool) (*fileCollector, error) {
	for _, pattern := range excludes {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.New("invalid exclude pattern: " + pattern)
		}
	}

	c := &fileCollector{root: root, excludes: excludes}
	if respectGitignore {
		gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
		switch {
		case err == nil:
			c.ignore = gi
		case !errors.Is(err, fs.ErrNotExist):
			return nil, err
		}
	}
	return c, nil
}

// collect returns the slash-separated paths of all regular files below root, sorted
func (c *fileCollector) collect(ctx context.Context) ([]string, error) {
	var files []string

	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(c.root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if d.Name() == ".git" || c.isExcluded(rel) || c.isIgnored(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if c.isExcluded(rel) || c.isIgnored(rel) {
			return nil
		}

		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func (c *fileCollector) isExcluded(rel string) bool {
	for _, pattern := range c.excludes {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

func (c *fileCollector) isIgnored(rel string) bool {
	return c.ignore != nil && c.ignore.MatchesPath(rel)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
