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

// Sector index sentinels. Kept as named constants, with a strict conversion
// helper (classify) below, rather than raw == checks sprinkled across call
// sites — the single most common source of corruption-handling bugs.
const (
	sectFree     uint32 = 0xFFFFFFFF
	sectEndOfChain uint32 = 0xFFFFFFFE
	sectFAT      uint32 = 0xFFFFFFFD
	sectDIFAT    uint32 = 0xFFFFFFFC
	noStream     uint32 = 0xFFFFFFFF
	maxRegularSector uint32 = 0xFFFFFFFA
)

type sectorKind int

const (
	sectorRegular sectorKind = iota
	sectorIsFree
	sectorIsEndOfChain
	sectorIsFAT
	sectorIsDIFAT
)

// classify converts a raw 32-bit sector-table entry into its sentinel class.
// Any value beyond maxRegularSector that isn't one of the four named
// sentinels is not representable and callers must treat it as invalid.
func classify(v uint32) (sectorKind, bool) {
	switch v {
	case sectFree:
		return sectorIsFree, true
	case sectEndOfChain:
		return sectorIsEndOfChain, true
	case sectFAT:
		return sectorIsFAT, true
	case sectDIFAT:
		return sectorIsDIFAT, true
	}
	if v <= maxRegularSector {
		return sectorRegular, true
	}
	return 0, false
}

// sectorOffset returns the absolute byte offset of regular sector n.
func sectorOffset(n uint32, sectorSize uint32) int64 {
	return int64(n+1) * int64(sectorSize)
}

// walkChain follows the SAT (fat) starting at start, returning the ordered
// list of regular sector numbers in the chain. It enforces a bounded
// visited set (duplicate ⇒ sat-cycle), index bounds (⇒ sat-out-of-bounds),
// a caller-supplied hop cap maxLen (exceeding it ⇒ sat-cycle; maxLen <= 0
// falls back to len(fat)), and that only END-OF-CHAIN may terminate a walk
// (any other sentinel mid-chain ⇒ sat-invalid).
func walkChain(fat []uint32, start uint32, maxLen int) ([]uint32, error) {
	if start == sectEndOfChain || start == sectFree {
		return nil, nil
	}
	if maxLen <= 0 {
		maxLen = len(fat)
	}
	visited := make(map[uint32]bool, 16)
	chain := make([]uint32, 0, 16)
	sn := start
	for {
		if len(chain) > maxLen {
			return nil, newErr(KindSATCycle, "chain exceeds maximum chain length")
		}
		if visited[sn] {
			return nil, newErr(KindSATCycle, "sector visited twice in chain")
		}
		if int(sn) >= len(fat) {
			return nil, newErr(KindSATOutOfBounds, "sector index beyond FAT length")
		}
		visited[sn] = true
		chain = append(chain, sn)
		next := fat[sn]
		kind, ok := classify(next)
		if !ok {
			return nil, newErr(KindSATInvalid, "unrecognized FAT entry")
		}
		switch kind {
		case sectorIsEndOfChain:
			return chain, nil
		case sectorRegular:
			sn = next
		default:
			return nil, newErr(KindSATInvalid, "unexpected sentinel mid-chain")
		}
	}
}
