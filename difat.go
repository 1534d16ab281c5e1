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

// buildMSAT assembles the master sector allocation table: the 109 inline
// entries from the header followed by any entries chained through DIFAT
// sectors. DIFAT sectors are located directly — by
// (n+1)*sectorSize — since the SAT isn't available yet.
func buildMSAT(src Source, h *headerParams) ([]uint32, error) {
	size, err := src.Size()
	if err != nil {
		return nil, err
	}
	maxSectors := (size - int64(lenHeader)) / int64(h.sectorSize)
	if maxSectors < 0 {
		maxSectors = 0
	}
	if int64(h.numFATSectors) > maxSectors || int64(h.numDifatSectors) > maxSectors {
		return nil, newErr(KindCorruptMSAT, "declared FAT/DIFAT sector count exceeds file size")
	}

	msat := make([]uint32, 0, numInlineDifats+int(h.numDifatSectors)*int(h.sectorSize/4-1))
	for _, v := range h.inlineDifats {
		msat = append(msat, v)
	}

	wantExtra := int(h.numFATSectors) - numInlineDifats
	if wantExtra < 0 {
		wantExtra = 0
	}

	sn := h.difatSectorLoc
	entriesPerDifat := int(h.sectorSize/4) - 1
	got := 0
	visited := make(map[uint32]bool, h.numDifatSectors)
	hops := 0
	for kind, ok := classify(sn); ok && kind != sectorIsEndOfChain; kind, ok = classify(sn) {
		if !ok {
			return nil, newErr(KindCorruptMSAT, "invalid DIFAT sector pointer")
		}
		if kind != sectorRegular {
			return nil, newErr(KindCorruptMSAT, "unexpected sentinel in DIFAT chain")
		}
		if hops >= int(h.numDifatSectors) || visited[sn] {
			return nil, newErr(KindCorruptMSAT, "DIFAT chain exceeds header sector count or revisits a sector")
		}
		visited[sn] = true
		hops++
		buf := make([]byte, h.sectorSize)
		if err := readFull(src, buf, sectorOffset(sn, h.sectorSize)); err != nil {
			return nil, err
		}
		for i := 0; i < entriesPerDifat; i++ {
			v := binary.LittleEndian.Uint32(buf[i*4 : i*4+4])
			msat = append(msat, v)
			if v != sectFree {
				got++ // FREE padding in the last DIFAT sector is not counted
			}
		}
		sn = binary.LittleEndian.Uint32(buf[len(buf)-4:])
	}
	if got != wantExtra {
		return nil, newErr(KindCorruptMSAT, "DIFAT chain length does not match header FAT sector count")
	}
	return msat, nil
}

// buildSAT reads every FAT sector named in the MSAT, in order, concatenating
// their entries.
func buildSAT(src Source, h *headerParams, msat []uint32) ([]uint32, error) {
	entries := int(h.sectorSize / 4)
	sat := make([]uint32, 0, int(h.numFATSectors)*entries)
	used := 0
	for _, sn := range msat {
		if used >= int(h.numFATSectors) {
			break
		}
		kind, ok := classify(sn)
		if !ok || kind != sectorRegular {
			continue // trailing FREE padding in the MSAT tail
		}
		buf := make([]byte, h.sectorSize)
		if err := readFull(src, buf, sectorOffset(sn, h.sectorSize)); err != nil {
			return nil, err
		}
		for i := 0; i < entries; i++ {
			sat = append(sat, binary.LittleEndian.Uint32(buf[i*4:i*4+4]))
		}
		used++
	}
	if len(sat) != int(h.numFATSectors)*entries {
		return nil, newErr(KindCorruptMSAT, "SAT length does not match header FAT sector count")
	}
	return sat, nil
}
