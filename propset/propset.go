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

// Package propset decodes the Property Set streams layered inside
// \005SummaryInformation and \005DocumentSummaryInformation. It is an
// in-module analogue of github.com/richardlehane/msoleps — see DESIGN.md
// for why that dependency isn't imported directly.
package propset

import (
	"encoding/binary"

	"github.com/richardlehane/olecf"
)

// Well-known property-set stream names; matched byte-exact, never by prefix.
const (
	SummaryInformationName        = "\x05SummaryInformation"
	DocumentSummaryInformationName = "\x05DocumentSummaryInformation"
)

const outerHeaderSize = 48

// PropertySet is the outer, 48-byte-header view of a property-set stream.
type PropertySet struct {
	osVersion uint32
	format    uint32
	classID   [16]byte
	sections  []sectionDescriptor
	data      []byte
	fallback  int16
}

type sectionDescriptor struct {
	classID [16]byte
	offset  uint32
}

// Parse validates the 48-byte outer header and section descriptor table of
// data (the full, already-read bytes of a property-set stream) and returns
// a PropertySet that parses individual sections lazily. fallbackCodePage is
// used by ASCII string properties in any section that carries no explicit
// CodePage (id=1) property of its own.
func Parse(data []byte, fallbackCodePage int16) (*PropertySet, error) {
	if len(data) < outerHeaderSize {
		return nil, olecf.NewError(olecf.KindInvalidPropertySet, "property set stream shorter than header")
	}
	bom := binary.LittleEndian.Uint16(data[0:2])
	if bom != 0xFFFE {
		return nil, olecf.NewError(olecf.KindInvalidPropertySet, "bad byte-order mark")
	}
	version := uint32(binary.LittleEndian.Uint16(data[2:4]))
	if version > 1 {
		return nil, olecf.NewError(olecf.KindInvalidPropertySet, "unsupported property set format version")
	}
	osVer := binary.LittleEndian.Uint32(data[4:8])
	var classID [16]byte
	copy(classID[:], data[8:24])
	count := binary.LittleEndian.Uint32(data[24:28])
	if count < 1 || count > 64 {
		return nil, olecf.NewError(olecf.KindInvalidPropertySet, "section count out of range")
	}

	ps := &PropertySet{osVersion: osVer, format: version, classID: classID, data: data, fallback: fallbackCodePage}
	off := outerHeaderSize
	for i := uint32(0); i < count; i++ {
		if off+20 > len(data) {
			return nil, olecf.NewError(olecf.KindInvalidPropertySet, "truncated section descriptor table")
		}
		var sd sectionDescriptor
		copy(sd.classID[:], data[off:off+16])
		sd.offset = binary.LittleEndian.Uint32(data[off+16 : off+20])
		ps.sections = append(ps.sections, sd)
		off += 20
	}
	return ps, nil
}

// ClassID returns the property set's class identifier.
func (ps *PropertySet) ClassID() [16]byte { return ps.classID }

// FormatVersion returns the outer header's format version (0 or 1).
func (ps *PropertySet) FormatVersion() uint32 { return ps.format }

// SectionCount returns the number of sections declared in the header.
func (ps *PropertySet) SectionCount() int { return len(ps.sections) }

// Section parses and returns the i'th section (0-indexed).
func (ps *PropertySet) Section(i int) (*Section, error) {
	if i < 0 || i >= len(ps.sections) {
		return nil, olecf.NewError(olecf.KindInvalidArgument, "section index out of range")
	}
	sd := ps.sections[i]
	if int(sd.offset) >= len(ps.data) {
		return nil, olecf.NewError(olecf.KindInvalidPropertySet, "section offset beyond stream end")
	}
	return parseSection(ps.data[sd.offset:], sd.classID, ps.fallback)
}
