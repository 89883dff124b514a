// Package discover resolves the file/directory/glob arguments a cobscn
// command receives on its command line into a concrete list of syntax-tree
// fixture files to load: a gitignore-aware directory walk plus doublestar
// glob support for patterns like "testdata/**/*.json".
package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// FixtureExt is the extension internal/fixture.Load expects.
const FixtureExt = ".json"

// Paths resolves args (files, directories, or doublestar glob patterns) to a
// sorted, de-duplicated list of fixture file paths. A directory is walked
// recursively, skipping anything matched by a .gitignore found at that
// directory's root; a bare file is used as-is regardless of extension (the
// caller asked for it explicitly).
func Paths(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	add := func(p string) {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		if !seen[abs] {
			seen[abs] = true
			out = append(out, p)
		}
	}

	for _, arg := range args {
		if strings.ContainsAny(arg, "*?[") {
			matches, err := doublestar.FilepathGlob(arg)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
			}
			for _, m := range matches {
				add(m)
			}
			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", arg, err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}

		gi := loadGitIgnore(arg)
		walkErr := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if gi != nil {
				if rel, relErr := filepath.Rel(arg, path); relErr == nil && gi.MatchesPath(rel) {
					if info.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}
			}
			if info.IsDir() {
				return nil
			}
			if strings.EqualFold(filepath.Ext(path), FixtureExt) {
				add(path)
			}
			return nil
		})
		if walkErr != nil {
			return nil, walkErr
		}
	}

	sort.Strings(out)
	return out, nil
}

func loadGitIgnore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
