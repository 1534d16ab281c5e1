// Copyright 2013 Richard Lehane. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package olecf

import (
	"sort"
	"unicode/utf16"

	"github.com/richardlehane/olecf/internal/notify"
)

// loadDirectoryEntries reads the directory stream (regular path, from
// h.directorySectorLoc) and parses every 128-byte record in index order.
// Inactive (type=0) slots are kept as type-0 entries so sibling/child
// indices still line up with their position in the stream.
func loadDirectoryEntries(r *sectorReader, h *headerParams) ([]*rawDirEntry, error) {
	chain, err := walkChain(r.sat, h.directorySectorLoc, r.maxChain)
	if err != nil {
		return nil, wrapErr(KindDirectoryCorrupt, "directory chain walk failed", err)
	}
	num := int(r.sectorSize) / dirEntrySize
	entries := make([]*rawDirEntry, 0, len(chain)*num)
	for _, sn := range chain {
		buf, err := r.readSector(sn)
		if err != nil {
			return nil, err
		}
		for i := 0; i < num; i++ {
			off := i * dirEntrySize
			e, err := parseDirEntry(buf[off:off+dirEntrySize], h.majorVersion)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// directoryTree is the reconstructed, ordered parent→children view over the
// flat rawDirEntry array: index-based child lists instead of live node
// pointers, so cycle detection is a visited bitmap.
type directoryTree struct {
	entries  []*rawDirEntry
	children map[uint32][]uint32
}

// buildDirectoryTree validates root uniqueness, checks for self-referencing
// and cyclic entries, flattens each parent's red-black sibling tree into a
// directory-index-ordered child list, and reports (non-fatally) any active
// entry unreachable from root.
func buildDirectoryTree(entries []*rawDirEntry, notifier *notify.Logger) (*directoryTree, error) {
	if len(entries) == 0 {
		return nil, newErr(KindDirectoryCorrupt, "empty directory stream")
	}
	rootCount := 0
	rootIdx := -1
	for i, e := range entries {
		if e.objectType == typeRootStorage {
			rootCount++
			rootIdx = i
		}
	}
	if rootCount != 1 {
		return nil, newErr(KindDirectoryCorrupt, "expected exactly one root entry")
	}
	if rootIdx != 0 {
		return nil, newErr(KindDirectoryCorrupt, "root entry must be index 0")
	}

	n := uint32(len(entries))
	inBounds := func(id uint32) bool { return id == noStream || id < n }
	for i, e := range entries {
		if e.objectType == typeEmpty {
			continue
		}
		if !inBounds(e.leftSibID) || !inBounds(e.rightSibID) || !inBounds(e.childID) {
			return nil, newErr(KindInvalidDirectoryEntry, "sibling/child index out of range")
		}
		idx := uint32(i)
		if e.leftSibID == idx || e.rightSibID == idx || e.childID == idx {
			return nil, newErr(KindDirectoryCorrupt, "entry references itself")
		}
	}

	visited := make([]bool, n)
	visited[0] = true
	tree := &directoryTree{entries: entries, children: make(map[uint32][]uint32)}

	var walk func(parent uint32) error
	walk = func(parent uint32) error {
		ids, err := collectSiblings(entries, visited, entries[parent].childID)
		if err != nil {
			return err
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		tree.children[parent] = ids
		for _, c := range ids {
			t := entries[c].objectType
			if t == typeStorage || t == typeRootStorage {
				if err := walk(c); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(0); err != nil {
		return nil, err
	}

	for i, e := range entries {
		if i == 0 || e.objectType == typeEmpty {
			continue
		}
		if !visited[i] {
			notifier.Warnf("directory entry %d (%q) is orphaned; ignoring", i, e.decodedName())
		}
	}
	return tree, nil
}

// collectSiblings performs an in-order walk of the red-black tree rooted at
// start (left, self, right), returning every reachable index. The caller
// re-sorts the result into directory-index order — the in-order traversal
// here exists only to discover membership and to let the shared visited
// bitmap catch an entry claimed by more than one parent (directory-cycle).
func collectSiblings(entries []*rawDirEntry, visited []bool, start uint32) ([]uint32, error) {
	if start == noStream {
		return nil, nil
	}
	var ids []uint32
	var walk func(id uint32) error
	walk = func(id uint32) error {
		if id == noStream {
			return nil
		}
		if int(id) >= len(entries) {
			return newErr(KindInvalidDirectoryEntry, "sibling index out of range")
		}
		if visited[id] {
			return newErr(KindDirectoryCycle, "directory entry visited more than once")
		}
		visited[id] = true
		e := entries[id]
		if err := walk(e.leftSibID); err != nil {
			return err
		}
		ids = append(ids, id)
		return walk(e.rightSibID)
	}
	if err := walk(start); err != nil {
		return nil, err
	}
	return ids, nil
}

// foldUpper uppercase-folds an ASCII letter code unit; non-ASCII letters
// pass through unchanged.
func foldUpper(u uint16) uint16 {
	if u >= 'a' && u <= 'z' {
		return u - 32
	}
	return u
}

// nameEqualFold implements the on-disk sibling comparison: length first,
// then code-unit-wise after ASCII uppercase folding.
func nameEqualFold(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if foldUpper(a[i]) != foldUpper(b[i]) {
			return false
		}
	}
	return true
}

func encodeName(name string) []uint16 {
	return utf16.Encode([]rune(name))
}
