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

import "encoding/binary"

const (
	signature       uint64 = 0xE11AB1A1E011CFD0
	byteOrderMark   uint16 = 0xFFFE
	lenHeader       int    = 512
	numInlineDifats int    = 109
)

// headerParams holds the parsed, validated contents of the 512-byte header
// (component B). It is immutable once a File is open.
type headerParams struct {
	minorVersion        uint16
	majorVersion        uint16
	sectorShift         uint16 // 9 or 12
	miniSectorShift     uint16 // always 6
	miniStreamCutoff    uint32
	numDirectorySectors uint32
	numFATSectors       uint32
	directorySectorLoc  uint32
	numMiniFATSectors   uint32
	miniFATSectorLoc    uint32
	numDifatSectors     uint32
	difatSectorLoc      uint32
	inlineDifats        [numInlineDifats]uint32

	sectorSize     uint32
	miniSectorSize uint32
}

// parseHeader validates and decodes the first 512 bytes of src.
func parseHeader(src Source) (*headerParams, error) {
	buf := make([]byte, lenHeader)
	if err := readFull(src, buf, 0); err != nil {
		return nil, err
	}

	sig := binary.LittleEndian.Uint64(buf[0:8])
	if sig != signature {
		return nil, newErr(KindInvalidSignature, "bad magic number")
	}
	bom := binary.LittleEndian.Uint16(buf[28:30])
	if bom != byteOrderMark {
		return nil, newErr(KindInvalidHeader, "unsupported byte order (only little-endian is supported)")
	}

	h := &headerParams{
		minorVersion:        binary.LittleEndian.Uint16(buf[24:26]),
		majorVersion:        binary.LittleEndian.Uint16(buf[26:28]),
		sectorShift:         binary.LittleEndian.Uint16(buf[30:32]),
		miniSectorShift:     binary.LittleEndian.Uint16(buf[32:34]),
		numDirectorySectors: binary.LittleEndian.Uint32(buf[40:44]),
		numFATSectors:       binary.LittleEndian.Uint32(buf[44:48]),
		directorySectorLoc:  binary.LittleEndian.Uint32(buf[48:52]),
		miniStreamCutoff:    binary.LittleEndian.Uint32(buf[56:60]),
		miniFATSectorLoc:    binary.LittleEndian.Uint32(buf[60:64]),
		numMiniFATSectors:   binary.LittleEndian.Uint32(buf[64:68]),
		difatSectorLoc:      binary.LittleEndian.Uint32(buf[68:72]),
		numDifatSectors:     binary.LittleEndian.Uint32(buf[72:76]),
	}
	for i := 0; i < numInlineDifats; i++ {
		off := 76 + i*4
		h.inlineDifats[i] = binary.LittleEndian.Uint32(buf[off : off+4])
	}

	switch {
	case h.majorVersion == 3 && h.sectorShift == 9:
		h.sectorSize = 1 << 9
	case h.majorVersion == 4 && h.sectorShift == 12:
		h.sectorSize = 1 << 12
	default:
		return nil, newErr(KindInvalidHeader, "sector size/version mismatch")
	}
	if h.miniSectorShift != 6 {
		return nil, newErr(KindInvalidHeader, "unsupported mini sector size")
	}
	h.miniSectorSize = 1 << h.miniSectorShift

	if h.miniStreamCutoff == 0 {
		h.miniStreamCutoff = uint32(miniStreamCutoffDefault)
	}
	return h, nil
}

const miniStreamCutoffDefault uint64 = 4096
