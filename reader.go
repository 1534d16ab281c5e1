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

import "sync/atomic"

// chunk is a contiguous (fileOffset, length) byte range, describing a
// stream as a handful of file ranges rather than one entry per sector.
type chunk struct {
	offset int64
	length int64
}

// sectorReader resolves (chain-start, in-stream-offset, length) reads into
// byte ranges via the SAT or mini-SAT. It implements two interchangeable
// strategies: the mini strategy is itself a consumer of the regular
// strategy, since the mini-stream is physically backed by the root entry's
// regular stream.
type sectorReader struct {
	src        Source
	sectorSize uint32
	sat        []uint32
	minifat    []uint32
	rootChain  []uint32 // regular sectors backing the mini-stream
	cache      *sectorCache
	aborted    atomic.Bool
	maxChain   int
}

func newSectorReader(src Source, sectorSize uint32, sat, minifat []uint32, cacheSize, maxChain int) *sectorReader {
	return &sectorReader{
		src:        src,
		sectorSize: sectorSize,
		sat:        sat,
		minifat:    minifat,
		cache:      newSectorCache(cacheSize),
		maxChain:   maxChain,
	}
}

func (r *sectorReader) signalAbort() { r.aborted.Store(true) }

func (r *sectorReader) checkAbort() error {
	if r.aborted.Load() {
		return newErr(KindAborted, "operation aborted")
	}
	return nil
}

// setRootChain walks the regular SAT chain that backs the root entry's
// stream (the physical mini-stream) once, at Open time.
func (r *sectorReader) setRootChain(start uint32) error {
	chain, err := walkChain(r.sat, start, r.maxChain)
	if err != nil {
		return err
	}
	r.rootChain = chain
	return nil
}

// readSector reads a regular sector's bytes, consulting the cache first.
func (r *sectorReader) readSector(sn uint32) ([]byte, error) {
	if b, ok := r.cache.get(sn); ok {
		return b, nil
	}
	buf := make([]byte, r.sectorSize)
	if err := readFull(r.src, buf, sectorOffset(sn, r.sectorSize)); err != nil {
		return nil, err
	}
	r.cache.put(sn, buf)
	return buf, nil
}

// regularChunks converts [offset, offset+length) within chain into a list of
// compressed contiguous file ranges. Returns a short list (fewer bytes than
// requested) when the chain ends early; that is not an error — callers
// decide whether short is fatal.
func (r *sectorReader) regularChunks(chain []uint32, offset, length int64) ([]chunk, error) {
	if err := r.checkAbort(); err != nil {
		return nil, err
	}
	sectorSize := int64(r.sectorSize)
	skip := offset / sectorSize
	within := offset % sectorSize
	if skip >= int64(len(chain)) {
		return nil, nil
	}
	var out []chunk
	remaining := length
	for i := skip; i < int64(len(chain)) && remaining > 0; i++ {
		if err := r.checkAbort(); err != nil {
			return nil, err
		}
		start := int64(0)
		if i == skip {
			start = within
		}
		avail := sectorSize - start
		take := avail
		if take > remaining {
			take = remaining
		}
		off := sectorOffset(chain[i], r.sectorSize) + start
		out = append(out, chunk{offset: off, length: take})
		remaining -= take
	}
	return compressChunks(out), nil
}

// miniChunks is the mini-path analogue of regularChunks: it walks the
// mini-SAT chain, maps each 64-byte mini-sector to its physical location
// inside the root's regular chain, and compresses the result.
func (r *sectorReader) miniChunks(chainStart uint32, offset, length int64) ([]chunk, error) {
	if err := r.checkAbort(); err != nil {
		return nil, err
	}
	miniChain, err := walkChain(r.minifat, chainStart, r.maxChain)
	if err != nil {
		return nil, wrapErr(KindCorruptMiniSAT, "mini-SAT chain walk failed", err)
	}
	const miniSize = int64(miniStreamSectorSize)
	skip := offset / miniSize
	within := offset % miniSize
	if skip >= int64(len(miniChain)) {
		return nil, nil
	}
	perRegular := int64(r.sectorSize) / miniSize
	var out []chunk
	remaining := length
	for i := skip; i < int64(len(miniChain)) && remaining > 0; i++ {
		if err := r.checkAbort(); err != nil {
			return nil, err
		}
		m := int64(miniChain[i])
		regularIdx := m / perRegular
		if regularIdx >= int64(len(r.rootChain)) {
			break
		}
		within2 := (m % perRegular) * miniSize
		start := int64(0)
		if i == skip {
			start = within
		}
		avail := miniSize - start
		take := avail
		if take > remaining {
			take = remaining
		}
		off := sectorOffset(r.rootChain[regularIdx], r.sectorSize) + within2 + start
		out = append(out, chunk{offset: off, length: take})
		remaining -= take
	}
	return compressChunks(out), nil
}

// compressChunks merges adjacent chunks whose file ranges are contiguous, as
// a pure function over any chunk slice.
func compressChunks(in []chunk) []chunk {
	if len(in) == 0 {
		return in
	}
	out := make([]chunk, 0, len(in))
	cur := in[0]
	for _, c := range in[1:] {
		if cur.offset+cur.length == c.offset {
			cur.length += c.length
		} else {
			out = append(out, cur)
			cur = c
		}
	}
	out = append(out, cur)
	return out
}

const miniStreamSectorSize uint32 = 64

// readStream resolves a (chain-start, in-stream-offset, length, mini) read
// into bytes, choosing the regular or mini strategy. It returns however many
// bytes are actually reachable — a short result, not an error — when the
// chain ends before length bytes are produced.
func (r *sectorReader) readStream(chainStart uint32, offset, length int64, mini bool) ([]byte, error) {
	if offset < 0 || length < 0 {
		return nil, newErr(KindInvalidRead, "negative offset or length")
	}
	var chunks []chunk
	var err error
	if mini {
		chunks, err = r.miniChunks(chainStart, offset, length)
	} else {
		chain, werr := walkChain(r.sat, chainStart, r.maxChain)
		if werr != nil {
			return nil, werr
		}
		chunks, err = r.regularChunks(chain, offset, length)
	}
	if err != nil {
		return nil, err
	}
	var total int64
	for _, c := range chunks {
		total += c.length
	}
	out := make([]byte, 0, total)
	for _, c := range chunks {
		if err := r.checkAbort(); err != nil {
			return nil, err
		}
		buf := make([]byte, c.length)
		if err := readFull(r.src, buf, c.offset); err != nil {
			return nil, err
		}
		out = append(out, buf...)
	}
	return out, nil
}
