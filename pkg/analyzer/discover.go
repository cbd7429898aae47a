// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package analyzer

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/kraklabs/ccn/pkg/lang"
)

// Discover returns the supported source files under root, in lexical order.
// A root that is itself a file is returned as is when its language is
// supported.
func Discover(root string, cfg Config) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		if _, ok := cfg.LanguageFor(root); ok {
			return []string{root}, nil
		}
		return nil, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if cfg.Excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || cfg.Excluded(rel) {
			return nil
		}
		if _, ok := cfg.LanguageFor(p); !ok {
			return nil
		}
		if cfg.MaxFileSizeBytes > 0 {
			fi, err := d.Info()
			if err != nil {
				return err
			}
			if fi.Size() > cfg.MaxFileSizeBytes {
				return nil
			}
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

// LanguageFor resolves the language of path, honoring the Languages filter.
func (c Config) LanguageFor(p string) (lang.Language, bool) {
	l, ok := lang.ForPath(p)
	if !ok {
		return lang.Language{}, false
	}
	if len(c.Languages) == 0 {
		return l, true
	}
	for _, name := range c.Languages {
		if other, ok := lang.ForName(name); ok && other.Name == l.Name {
			return l, true
		}
	}
	return lang.Language{}, false
}

// Excluded reports whether the slash-separated path rel, relative to the scan
// root, matches one of the exclude globs.
func (c Config) Excluded(rel string) bool {
	for _, pattern := range c.ExcludeGlobs {
		if matchesGlob(rel, pattern) {
			return true
		}
	}
	return false
}

// matchesGlob reports whether the slash-separated path p matches pattern.
// Patterns without a slash match the base name; "**" matches zero or more
// directories.
func matchesGlob(p, pattern string) bool {
	if !strings.Contains(pattern, "/") {
		ok, _ := path.Match(pattern, path.Base(p))
		return ok
	}
	return matchSegments(strings.Split(pattern, "/"), strings.Split(p, "/"))
}

func matchSegments(pattern, segments []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			if len(pattern) == 1 {
				return true
			}
			for i := 0; i <= len(segments); i++ {
				if matchSegments(pattern[1:], segments[i:]) {
					return true
				}
			}
			return false
		}
		if len(segments) == 0 {
			return false
		}
		if ok, _ := path.Match(pattern[0], segments[0]); !ok {
			return false
		}
		pattern, segments = pattern[1:], segments[1:]
	}
	return len(segments) == 0
}
