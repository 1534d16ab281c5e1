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
	"encoding/binary"
	"unicode/utf16"
)

// cfbBuilder assembles minimal, byte-exact compound files for tests, in
// place of checking in binary .doc fixtures.
type cfbBuilder struct {
	sectorSize uint32
	sectors    [][]byte // sector N is file offset (N+1)*sectorSize
	dirEntries [][]byte
}

func newBuilder() *cfbBuilder {
	return &cfbBuilder{sectorSize: 512}
}

// Red-black node colors, per the on-disk directory entry layout. The color
// bit isn't load-bearing for tree reconstruction (buildDirectoryTree never
// reads it), so tests just pick black throughout.
const (
	red   uint8 = 0
	black uint8 = 1
)

// addSector appends a new, zero-filled sector and returns its index.
func (b *cfbBuilder) addSector() uint32 {
	b.sectors = append(b.sectors, make([]byte, b.sectorSize))
	return uint32(len(b.sectors) - 1)
}

func (b *cfbBuilder) sector(n uint32) []byte { return b.sectors[n] }

func (b *cfbBuilder) putU32(sector uint32, off int, v uint32) {
	binary.LittleEndian.PutUint32(b.sectors[sector][off:off+4], v)
}

// addDirEntry appends a 128-byte directory record, returning its index.
func (b *cfbBuilder) addDirEntry(name string, objType uint8, color uint8, left, right, child uint32, startSector uint32, size uint64) uint32 {
	e := make([]byte, dirEntrySize)
	units := utf16.Encode([]rune(name))
	for i, u := range units {
		binary.LittleEndian.PutUint16(e[i*2:i*2+2], u)
	}
	nameLen := uint16(0)
	if len(units) > 0 {
		nameLen = uint16((len(units) + 1) * 2)
		binary.LittleEndian.PutUint16(e[len(units)*2:len(units)*2+2], 0)
	}
	binary.LittleEndian.PutUint16(e[64:66], nameLen)
	e[66] = objType
	e[67] = color
	binary.LittleEndian.PutUint32(e[68:72], left)
	binary.LittleEndian.PutUint32(e[72:76], right)
	binary.LittleEndian.PutUint32(e[76:80], child)
	binary.LittleEndian.PutUint32(e[116:120], startSector)
	binary.LittleEndian.PutUint64(e[120:128], size)
	b.dirEntries = append(b.dirEntries, e)
	return uint32(len(b.dirEntries) - 1)
}

// layoutDirSectors packs dirEntries (padding the final sector with empty
// 128-byte records) into new sectors and returns the first sector index.
func (b *cfbBuilder) layoutDirSectors() uint32 {
	perSector := int(b.sectorSize) / dirEntrySize
	first := uint32(len(b.sectors))
	for i := 0; i < len(b.dirEntries); i += perSector {
		sn := b.addSector()
		for j := 0; j < perSector; j++ {
			idx := i + j
			if idx >= len(b.dirEntries) {
				break
			}
			copy(b.sectors[sn][j*dirEntrySize:(j+1)*dirEntrySize], b.dirEntries[idx])
		}
	}
	return first
}

// build assembles the final byte slice: a 512-byte header, then every
// sector added so far, then the FAT sector(s) described by fatEntries
// (index i of fatEntries is the chain-next value for sector i).
func (b *cfbBuilder) build(dirStart uint32, fatEntries []uint32, miniFATStart uint32, numMiniFAT uint32, miniFATEntries []uint32) []byte {
	fatSN := b.addSector()
	entries := int(b.sectorSize) / 4
	full := make([]uint32, entries)
	for i := range full {
		full[i] = sectFree
	}
	for i, v := range fatEntries {
		full[i] = v
	}
	// Chain the directory sectors themselves: layoutDirSectors lays them out
	// contiguously starting at dirStart but never links them in the FAT.
	perSector := int(b.sectorSize) / dirEntrySize
	numDirSectors := (len(b.dirEntries) + perSector - 1) / perSector
	for i := 0; i < numDirSectors; i++ {
		sn := dirStart + uint32(i)
		if i == numDirSectors-1 {
			full[sn] = sectEndOfChain
		} else {
			full[sn] = sn + 1
		}
	}
	full[fatSN] = sectFAT
	for i, v := range full {
		binary.LittleEndian.PutUint32(b.sectors[fatSN][i*4:i*4+4], v)
	}

	var miniSN uint32
	if numMiniFAT > 0 {
		miniSN = b.addSector()
		mfull := make([]uint32, entries)
		for i := range mfull {
			mfull[i] = sectFree
		}
		for i, v := range miniFATEntries {
			mfull[i] = v
		}
		for i, v := range mfull {
			binary.LittleEndian.PutUint32(b.sectors[miniSN][i*4:i*4+4], v)
		}
		full[miniSN] = sectEndOfChain
		for i, v := range full {
			binary.LittleEndian.PutUint32(b.sectors[fatSN][i*4:i*4+4], v)
		}
	}

	header := make([]byte, lenHeader)
	binary.LittleEndian.PutUint64(header[0:8], signature)
	binary.LittleEndian.PutUint16(header[24:26], 0x3E)
	binary.LittleEndian.PutUint16(header[26:28], 3)
	binary.LittleEndian.PutUint16(header[28:30], byteOrderMark)
	binary.LittleEndian.PutUint16(header[30:32], 9)
	binary.LittleEndian.PutUint16(header[32:34], 6)
	binary.LittleEndian.PutUint32(header[40:44], 0)
	binary.LittleEndian.PutUint32(header[44:48], 1)
	binary.LittleEndian.PutUint32(header[48:52], dirStart)
	binary.LittleEndian.PutUint32(header[56:60], 4096)
	if numMiniFAT > 0 {
		binary.LittleEndian.PutUint32(header[60:64], miniSN)
		binary.LittleEndian.PutUint32(header[64:68], 1)
	} else {
		binary.LittleEndian.PutUint32(header[60:64], sectEndOfChain)
		binary.LittleEndian.PutUint32(header[64:68], 0)
	}
	binary.LittleEndian.PutUint32(header[68:72], sectEndOfChain)
	binary.LittleEndian.PutUint32(header[72:76], 0)
	binary.LittleEndian.PutUint32(header[76:80], fatSN)
	for i := 1; i < numInlineDifats; i++ {
		binary.LittleEndian.PutUint32(header[76+i*4:76+i*4+4], sectFree)
	}
	_ = miniFATStart

	out := make([]byte, 0, lenHeader+len(b.sectors)*int(b.sectorSize))
	out = append(out, header...)
	for _, s := range b.sectors {
		out = append(out, s...)
	}
	return out
}
