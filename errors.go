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

// Kind identifies the stable error category of an *Error, letting callers
// branch on failure class without string matching.
type Kind int

const (
	KindInvalidArgument Kind = iota
	KindIOError
	KindShortRead
	KindNotFound
	KindPermissionDenied
	KindInvalidSignature
	KindInvalidHeader
	KindSATCycle
	KindSATOutOfBounds
	KindSATInvalid
	KindCorruptMSAT
	KindCorruptMiniSAT
	KindDirectoryCycle
	KindDirectoryCorrupt
	KindInvalidDirectoryEntry
	KindInvalidPath
	KindNotAStream
	KindNotAStorage
	KindInvalidSize
	KindInvalidRead
	KindInvalidPropertySet
	KindTypeMismatch
	KindAborted
)

var kindNames = map[Kind]string{
	KindInvalidArgument:       "invalid-argument",
	KindIOError:               "io-error",
	KindShortRead:             "short-read",
	KindNotFound:              "not-found",
	KindPermissionDenied:      "permission-denied",
	KindInvalidSignature:      "invalid-signature",
	KindInvalidHeader:         "invalid-header",
	KindSATCycle:              "sat-cycle",
	KindSATOutOfBounds:        "sat-out-of-bounds",
	KindSATInvalid:            "sat-invalid",
	KindCorruptMSAT:           "corrupt-msat",
	KindCorruptMiniSAT:        "corrupt-minisat",
	KindDirectoryCycle:        "directory-cycle",
	KindDirectoryCorrupt:      "directory-corrupt",
	KindInvalidDirectoryEntry: "invalid-directory-entry",
	KindInvalidPath:           "invalid-path",
	KindNotAStream:            "not-a-stream",
	KindNotAStorage:           "not-a-storage",
	KindInvalidSize:           "invalid-size",
	KindInvalidRead:           "invalid-read",
	KindInvalidPropertySet:    "invalid-property-set",
	KindTypeMismatch:          "type-mismatch",
	KindAborted:               "aborted",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Error is the error type returned by every exported operation in this
// package. It carries a stable Kind so callers can branch on failure class,
// a human message, and an optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return "olecf: " + e.Msg + ": " + e.Err.Error()
	}
	return "olecf: " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(k Kind, msg string) *Error {
	return &Error{Kind: k, Msg: msg}
}

func wrapErr(k Kind, msg string, err error) *Error {
	return &Error{Kind: k, Msg: msg, Err: err}
}

// NewError constructs an *Error of the given Kind. It is exported so the
// propset package (and other collaborators built on this module) can raise
// the same stable error taxonomy.
func NewError(k Kind, msg string) *Error { return newErr(k, msg) }

// WrapError constructs an *Error of the given Kind wrapping a lower-level
// cause.
func WrapError(k Kind, msg string, err error) *Error { return wrapErr(k, msg, err) }
