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
	"strings"
	"time"
)

// Item is a non-owning handle into a File's directory-entry array. It
// remains valid for the lifetime of the File it came from; two
// Items referring to the same entry never alias each other's stream
// cursors (those live on Stream, not Item).
type Item struct {
	f     *File
	idx   uint32
	entry *rawDirEntry
}

// Name returns the item's decoded name (UTF-16LE, NUL terminator excluded).
func (it *Item) Name() string { return it.entry.decodedName() }

// Type reports whether the item is a storage, stream, or the root.
func (it *Item) Type() ItemType {
	switch it.entry.objectType {
	case typeStream:
		return TypeStream
	case typeRootStorage:
		return TypeRoot
	default:
		return TypeStorage
	}
}

// Size returns the item's declared stream size in bytes (0 for storages).
func (it *Item) Size() uint64 { return it.entry.streamSize }

// ClassID returns the item's 16-byte class identifier (CLSID).
func (it *Item) ClassID() [16]byte { return it.entry.clsid }

// CreationTime returns the item's creation timestamp, or the zero time if
// the directory entry carries none.
func (it *Item) CreationTime() time.Time { return filetimeToTime(it.entry.createTime) }

// ModificationTime returns the item's last-modified timestamp, or the zero
// time if the directory entry carries none.
func (it *Item) ModificationTime() time.Time { return filetimeToTime(it.entry.modifyTime) }

// SizeTruncated reports whether this is a version-3 file whose on-disk
// 64-bit size had non-zero upper bits that were silently dropped; preserved
// here as a detectable condition rather than a rejection (see DESIGN.md).
func (it *Item) SizeTruncated() bool { return it.entry.sizeTruncated }

// ChildCount returns the number of direct children (0 for streams).
func (it *Item) ChildCount() int {
	return len(it.f.tree.children[it.idx])
}

// Child returns the i'th direct child in directory-index order.
func (it *Item) Child(i int) (*Item, error) {
	kids := it.f.tree.children[it.idx]
	if i < 0 || i >= len(kids) {
		return nil, newErr(KindInvalidArgument, "child index out of range")
	}
	return it.f.itemAt(kids[i]), nil
}

// ChildByName looks up a direct child by name, using the format's
// case-insensitive fold comparison. It returns (nil, nil) when no child
// matches.
func (it *Item) ChildByName(name string) (*Item, error) {
	want := encodeName(name)
	for _, idx := range it.f.tree.children[it.idx] {
		if nameEqualFold(it.f.tree.entries[idx].name, want) {
			return it.f.itemAt(idx), nil
		}
	}
	return nil, nil
}

func (f *File) itemAt(idx uint32) *Item {
	return &Item{f: f, idx: idx, entry: f.tree.entries[idx]}
}

// ItemByPath resolves a slash-separated path from the root. A single
// leading slash is permitted and ignored; an empty component
// (e.g. "//" or a trailing slash) is rejected with KindInvalidPath. It
// returns (nil, nil) when no item matches.
func (f *File) ItemByPath(path string) (*Item, error) {
	p := path
	if strings.HasPrefix(p, "/") {
		p = p[1:]
	}
	if p == "" {
		return f.root, nil
	}
	parts := strings.Split(p, "/")
	for _, part := range parts {
		if part == "" {
			return nil, newErr(KindInvalidPath, "empty path component")
		}
	}
	cur := f.root
	for _, part := range parts {
		next, err := cur.ChildByName(part)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, nil
		}
		cur = next
	}
	return cur, nil
}
