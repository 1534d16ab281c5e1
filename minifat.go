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

// buildMiniFAT walks the mini-SAT chain (held inside the regular SAT, like
// any other stream) and concatenates its entries. The mini-SAT indexes
// mini-sectors, not regular sectors, but it is itself stored as a
// regular-sector chain.
func buildMiniFAT(src Source, h *headerParams, sat []uint32) ([]uint32, error) {
	if h.numMiniFATSectors == 0 {
		return nil, nil
	}
	chain, err := walkChain(sat, h.miniFATSectorLoc, len(sat))
	if err != nil {
		return nil, wrapErr(KindCorruptMiniSAT, "mini-FAT chain walk failed", err)
	}
	entries := int(h.sectorSize / 4)
	minifat := make([]uint32, 0, len(chain)*entries)
	for _, sn := range chain {
		buf := make([]byte, h.sectorSize)
		if err := readFull(src, buf, sectorOffset(sn, h.sectorSize)); err != nil {
			return nil, err
		}
		for i := 0; i < entries; i++ {
			minifat = append(minifat, binary.LittleEndian.Uint32(buf[i*4:i*4+4]))
		}
	}
	return minifat, nil
}
