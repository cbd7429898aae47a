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

// Config controls file discovery and analysis.
type Config struct {
	// Workers is the number of files analyzed in parallel. Values below 2
	// analyze sequentially.
	Workers int

	// MaxFileSizeBytes skips larger files during discovery (0 = no limit).
	MaxFileSizeBytes int64

	// ExcludeGlobs are slash-separated patterns relative to the scan root.
	// "**" matches any number of directories: "vendor/**", "**/testdata/**".
	ExcludeGlobs []string

	// Languages restricts analysis to these language names. Empty means all.
	Languages []string

	// CCNThreshold is the cyclomatic complexity above which a function is
	// reported as a warning.
	CCNThreshold int

	// Trace logs every token with the grammar state at debug level.
	Trace bool
}

// DefaultConfig returns the configuration used when no .ccn.yaml exists.
func DefaultConfig() Config {
	return Config{
		Workers:          4,
		MaxFileSizeBytes: 1048576, // 1MB
		CCNThreshold:     15,
		ExcludeGlobs: []string{
			".git/**",
			"node_modules/**",
			"vendor/**",
			"dist/**",
			"build/**",
			"target/**",
			"**/testdata/**",
			"*.pb.go",
			"*_gen.go",
		},
	}
}
