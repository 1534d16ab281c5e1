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
	"errors"
	"io"
	"os"
)

// Source is the block I/O abstraction the decoder sits on (component A). It
// is the only place the core touches raw bytes: a header parse, a sector
// read, and a directory load are all, eventually, a ReadAt call on a Source.
// Implementations need not support concurrent use from multiple goroutines.
type Source interface {
	ReadAt(p []byte, off int64) (n int, err error)
	Size() (int64, error)
	Close() error
}

// OpenPath opens the file at name for random-access reads.
func OpenPath(name string) (Source, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, translateOSError(err)
	}
	return &fileSource{f: f}, nil
}

type fileSource struct {
	f *os.File
}

func (s *fileSource) ReadAt(p []byte, off int64) (int, error) {
	n, err := s.f.ReadAt(p, off)
	if err != nil && err != io.EOF {
		return n, wrapErr(KindIOError, "read failed", err)
	}
	return n, err
}

func (s *fileSource) Size() (int64, error) {
	fi, err := s.f.Stat()
	if err != nil {
		return 0, wrapErr(KindIOError, "stat failed", err)
	}
	return fi.Size(), nil
}

func (s *fileSource) Close() error {
	if err := s.f.Close(); err != nil {
		return wrapErr(KindIOError, "close failed", err)
	}
	return nil
}

func translateOSError(err error) *Error {
	switch {
	case os.IsNotExist(err):
		return wrapErr(KindNotFound, "no such file", err)
	case os.IsPermission(err):
		return wrapErr(KindPermissionDenied, "permission denied", err)
	default:
		return wrapErr(KindIOError, "open failed", err)
	}
}

// memorySource is an in-memory byte-range Source, used by tests and by
// callers that have already loaded (or mmap'd) a compound file into memory.
type memorySource struct {
	b []byte
}

// NewMemorySource wraps a byte slice as a Source. The slice is not copied;
// callers must not mutate it while the Source is in use.
func NewMemorySource(b []byte) Source {
	return &memorySource{b: b}
}

func (s *memorySource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, newErr(KindInvalidArgument, "negative offset")
	}
	if off >= int64(len(s.b)) {
		return 0, io.EOF
	}
	n := copy(p, s.b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (s *memorySource) Size() (int64, error) {
	return int64(len(s.b)), nil
}

func (s *memorySource) Close() error { return nil }

// CallbackFuncs lets a caller supply byte-source operations via plain
// function values, e.g. to bridge a non-Go runtime's file handle through a
// language binding, mirroring libolecf's libbfio-handle abstraction.
type CallbackFuncs struct {
	ReadAt func(p []byte, off int64) (int, error)
	Size   func() (int64, error)
	Close  func() error
}

type callbackSource struct {
	fns CallbackFuncs
}

// NewCallbackSource builds a Source from caller-supplied callbacks. ReadAt
// and Size must be non-nil; Close may be nil, in which case Close is a no-op.
func NewCallbackSource(fns CallbackFuncs) (Source, error) {
	if fns.ReadAt == nil || fns.Size == nil {
		return nil, newErr(KindInvalidArgument, "callback source requires ReadAt and Size")
	}
	return &callbackSource{fns: fns}, nil
}

func (s *callbackSource) ReadAt(p []byte, off int64) (int, error) {
	return s.fns.ReadAt(p, off)
}

func (s *callbackSource) Size() (int64, error) {
	return s.fns.Size()
}

func (s *callbackSource) Close() error {
	if s.fns.Close == nil {
		return nil
	}
	return s.fns.Close()
}

// readFull reads exactly len(p) bytes at off from src, translating a short
// read from io.EOF into the stable KindShortRead error.
func readFull(src Source, p []byte, off int64) error {
	n, err := src.ReadAt(p, off)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) && n == len(p) {
		return nil
	}
	if n < len(p) {
		return wrapErr(KindShortRead, "short read", err)
	}
	if oerr, ok := err.(*Error); ok {
		return oerr
	}
	return wrapErr(KindIOError, "read failed", err)
}
