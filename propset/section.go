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

package propset

import (
	"encoding/binary"
	"sort"

	"github.com/richardlehane/olecf"
)

// codePageID is the well-known property identifier (1) that carries a
// section's code page as a signed 16-bit value.
const codePageID = uint32(1)

// Section is an 8-byte-header property section: a byte length, a property
// count, an (identifier, offset) descriptor array, and a packed region of
// typed values.
type Section struct {
	classID    [16]byte
	properties []*Property
	codePage   int16
}

// ClassID returns the section's format identifier (the GUID carried by its
// descriptor in the outer property set).
func (s *Section) ClassID() [16]byte { return s.classID }

// PropertyCount returns the number of properties in the section.
func (s *Section) PropertyCount() int { return len(s.properties) }

// Property returns the i'th property (0-indexed), in on-disk descriptor
// order (not necessarily offset order).
func (s *Section) Property(i int) (*Property, error) {
	if i < 0 || i >= len(s.properties) {
		return nil, olecf.NewError(olecf.KindInvalidArgument, "property index out of range")
	}
	return s.properties[i], nil
}

// Properties returns every property in the section, in descriptor order.
func (s *Section) Properties() []*Property { return s.properties }

type propDescriptor struct {
	id     uint32
	offset uint32
}

// parseSection parses a section whose bytes start at buf[0] (buf may extend
// past the section's own length; only the first sectionByteLength bytes are
// read). classID is the GUID carried by the section's descriptor in the
// outer property set.
func parseSection(buf []byte, classID [16]byte, fallbackCodePage int16) (*Section, error) {
	if len(buf) < 8 {
		return nil, olecf.NewError(olecf.KindInvalidPropertySet, "truncated section header")
	}
	sectionLen := binary.LittleEndian.Uint32(buf[0:4])
	propCount := binary.LittleEndian.Uint32(buf[4:8])
	if uint32(len(buf)) < sectionLen {
		return nil, olecf.NewError(olecf.KindInvalidPropertySet, "section extends beyond stream")
	}
	buf = buf[:sectionLen]

	descs := make([]propDescriptor, 0, propCount)
	off := 8
	for i := uint32(0); i < propCount; i++ {
		if off+8 > len(buf) {
			return nil, olecf.NewError(olecf.KindInvalidPropertySet, "truncated property descriptor table")
		}
		d := propDescriptor{
			id:     binary.LittleEndian.Uint32(buf[off : off+4]),
			offset: binary.LittleEndian.Uint32(buf[off+4 : off+8]),
		}
		if d.offset < 16 || d.offset >= sectionLen {
			return nil, olecf.NewError(olecf.KindInvalidPropertySet, "property offset out of range")
		}
		descs = append(descs, d)
		off += 8
	}

	// Offsets, once sorted, must be strictly ascending; descriptors that
	// aren't already in offset order on disk are sorted and accepted rather
	// than rejected (see DESIGN.md).
	sorted := append([]propDescriptor(nil), descs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].offset < sorted[j].offset })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].offset <= sorted[i-1].offset {
			return nil, olecf.NewError(olecf.KindInvalidPropertySet, "duplicate property offset")
		}
	}

	slices := make(map[uint32][]byte, len(sorted))
	for i, d := range sorted {
		end := sectionLen
		if i+1 < len(sorted) {
			end = sorted[i+1].offset
		}
		slices[d.offset] = buf[d.offset:end]
	}

	s := &Section{classID: classID, codePage: fallbackCodePage}
	// Resolve the section's own code page first, so string properties in
	// the same pass can use it.
	for _, d := range descs {
		if d.id == codePageID {
			raw := slices[d.offset]
			if v, err := decodeValue(raw, d.id); err == nil && len(v.raw) >= 2 {
				s.codePage = int16(binary.LittleEndian.Uint16(v.raw[:2]))
			}
		}
	}

	s.properties = make([]*Property, 0, len(descs))
	for _, d := range descs {
		raw := slices[d.offset]
		p, err := decodeValue(raw, d.id)
		if err != nil {
			return nil, err
		}
		p.section = s
		s.properties = append(s.properties, p)
	}
	return s, nil
}
