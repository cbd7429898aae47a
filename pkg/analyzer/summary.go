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
	"sort"

	"github.com/kraklabs/ccn/pkg/scope"
)

// Summary aggregates the results of a scan.
type Summary struct {
	Files        int     `json:"files"`
	Functions    int     `json:"functions"`
	NLOC         int     `json:"nloc"`
	Tokens       int     `json:"tokens"`
	AverageCCN   float64 `json:"average_ccn"`
	MaxCCN       int     `json:"max_ccn"`
	Unclosed     int     `json:"unclosed"`
	Warnings     int     `json:"warnings"`
	CCNThreshold int     `json:"ccn_threshold"`
}

// Summarize aggregates results against the CCN threshold.
func Summarize(results []*FileResult, threshold int) Summary {
	s := Summary{Files: len(results), CCNThreshold: threshold}
	totalCCN := 0
	for _, r := range results {
		s.NLOC += r.NLOC
		s.Tokens += r.TokenCount
		s.Unclosed += r.Unclosed
		for _, fn := range r.Functions {
			s.Functions++
			totalCCN += fn.CCN
			if fn.CCN > s.MaxCCN {
				s.MaxCCN = fn.CCN
			}
			if fn.CCN > threshold {
				s.Warnings++
			}
		}
	}
	if s.Functions > 0 {
		s.AverageCCN = float64(totalCCN) / float64(s.Functions)
	}
	return s
}

// FunctionRef is a function together with the file it was found in.
type FunctionRef struct {
	Path string `json:"path"`
	scope.FunctionInfo
}

// SortKey orders functions in a report.
type SortKey string

const (
	SortNone     SortKey = ""
	SortCCN      SortKey = "ccn"
	SortNLOC     SortKey = "nloc"
	SortParams   SortKey = "params"
	SortName     SortKey = "name"
	SortLocation SortKey = "location"
)

// ParseSortKey validates a sort key given on the command line.
func ParseSortKey(s string) (SortKey, bool) {
	switch k := SortKey(s); k {
	case SortNone, SortCCN, SortNLOC, SortParams, SortName, SortLocation:
		return k, true
	}
	return SortNone, false
}

// Flatten lists every function of results, ordered by key. Numeric keys sort
// descending; ties keep file order.
func Flatten(results []*FileResult, key SortKey) []FunctionRef {
	var refs []FunctionRef
	for _, r := range results {
		for _, fn := range r.Functions {
			refs = append(refs, FunctionRef{Path: r.Path, FunctionInfo: fn})
		}
	}

	var less func(a, b FunctionRef) bool
	switch key {
	case SortCCN:
		less = func(a, b FunctionRef) bool { return a.CCN > b.CCN }
	case SortNLOC:
		less = func(a, b FunctionRef) bool { return a.NLOC > b.NLOC }
	case SortParams:
		less = func(a, b FunctionRef) bool { return a.ParameterCount() > b.ParameterCount() }
	case SortName:
		less = func(a, b FunctionRef) bool { return a.LongName < b.LongName }
	case SortLocation:
		less = func(a, b FunctionRef) bool {
			if a.Path != b.Path {
				return a.Path < b.Path
			}
			return a.StartLine < b.StartLine
		}
	default:
		return refs
	}
	sort.SliceStable(refs, func(i, j int) bool { return less(refs[i], refs[j]) })
	return refs
}
