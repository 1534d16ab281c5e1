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

import "io"

// isMini reports whether it's stream is backed by the mini-stream: declared
// size strictly below the header's cutoff, and not the root (whose own
// stream *is* the mini-stream and is always read via the regular path).
func (it *Item) isMini() bool {
	if it.Type() == TypeRoot {
		return false
	}
	return it.entry.streamSize < uint64(it.f.header.miniStreamCutoff)
}

// checkStreamable rejects storages and the root; only ordinary streams
// expose byte content.
func (it *Item) checkStreamable() error {
	if it.Type() != TypeStream {
		return newErr(KindNotAStream, "item is a storage, not a stream")
	}
	return nil
}

// ReadAt performs a stateless read of length len(buf) bytes starting at
// offset within it's stream content, returning however many bytes were
// actually reachable. It never mutates any cursor.
func (f *File) ReadAt(it *Item, offset int64, buf []byte) (int, error) {
	if err := it.checkStreamable(); err != nil {
		return 0, err
	}
	if offset < 0 {
		return 0, newErr(KindInvalidRead, "negative offset")
	}
	length := int64(len(buf))
	if offset > 0 && length > 0 {
		if offset > (1<<63-1)-length {
			return 0, newErr(KindInvalidRead, "offset+length overflows")
		}
	}
	data, err := f.reader.readStream(it.entry.startingSectorLoc, offset, length, it.isMini())
	if err != nil {
		return 0, err
	}
	n := copy(buf, data)
	return n, nil
}

// Stream is a stateful cursor over an Item's bytes. Each call to Item.Open
// returns an independent Stream; two handles to the same Item never share
// an offset.
type Stream struct {
	it     *Item
	offset int64
}

// Open returns a new, independent read cursor over it, positioned at 0.
func (it *Item) Open() (*Stream, error) {
	if err := it.checkStreamable(); err != nil {
		return nil, err
	}
	return &Stream{it: it}, nil
}

// Read reads into buf starting at the stream's current offset, advancing
// it by the number of bytes returned.
func (s *Stream) Read(buf []byte) (int, error) {
	n, err := s.it.f.ReadAt(s.it, s.offset, buf)
	s.offset += int64(n)
	if err != nil {
		return n, err
	}
	if n == 0 && len(buf) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

// ReadAt is the stateless read; it does not touch the stream's cursor.
func (s *Stream) ReadAt(offset int64, buf []byte) (int, error) {
	return s.it.f.ReadAt(s.it, offset, buf)
}

// Seek whence values, matching io.Seek* constants.
const (
	SeekSet = io.SeekStart
	SeekCur = io.SeekCurrent
	SeekEnd = io.SeekEnd
)

// Seek repositions the stream's cursor and returns the new offset.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case SeekSet:
		base = 0
	case SeekCur:
		base = s.offset
	case SeekEnd:
		base = int64(s.it.entry.streamSize)
	default:
		return 0, newErr(KindInvalidArgument, "invalid whence")
	}
	next := base + offset
	if next < 0 {
		return 0, newErr(KindInvalidArgument, "seek to negative offset")
	}
	s.offset = next
	return s.offset, nil
}

// Tell returns the stream's current cursor offset.
func (s *Stream) Tell() int64 { return s.offset }

// ReadAll reads an item's entire declared stream content into memory. It is
// a convenience wrapper for callers — such as the propset package — that
// need the whole stream body at once (e.g. a SummaryInformation stream),
// rather than incremental Read calls.
func (f *File) ReadAll(it *Item) ([]byte, error) {
	if err := it.checkStreamable(); err != nil {
		return nil, err
	}
	buf := make([]byte, it.entry.streamSize)
	n, err := f.ReadAt(it, 0, buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}
