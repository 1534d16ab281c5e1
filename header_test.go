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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minimalHeaderBytes() []byte {
	b := newBuilder()
	b.addDirEntry("Root Entry", typeRootStorage, black, noStream, noStream, noStream, sectEndOfChain, 0)
	dirStart := b.layoutDirSectors()
	return b.build(dirStart, nil, 0, 0, nil)
}

func TestParseHeaderRejectsBadSignature(t *testing.T) {
	raw := minimalHeaderBytes()
	raw[0] = raw[0] ^ 0xFF
	_, err := parseHeader(NewMemorySource(raw))
	require.Error(t, err)
	var oerr *Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, KindInvalidSignature, oerr.Kind)
}

func TestParseHeaderRejectsBadBOM(t *testing.T) {
	raw := minimalHeaderBytes()
	raw[28] = 0
	raw[29] = 0
	_, err := parseHeader(NewMemorySource(raw))
	require.Error(t, err)
	var oerr *Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, KindInvalidHeader, oerr.Kind)
}

func TestParseHeaderRejectsVersionSectorSizeMismatch(t *testing.T) {
	raw := minimalHeaderBytes()
	raw[26] = 4 // claim version 4 while sector shift stays 9
	_, err := parseHeader(NewMemorySource(raw))
	require.Error(t, err)
	var oerr *Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, KindInvalidHeader, oerr.Kind)
}

func TestParseHeaderDefaultsMiniStreamCutoff(t *testing.T) {
	raw := minimalHeaderBytes()
	raw[56], raw[57], raw[58], raw[59] = 0, 0, 0, 0
	h, err := parseHeader(NewMemorySource(raw))
	require.NoError(t, err)
	assert.EqualValues(t, miniStreamCutoffDefault, h.miniStreamCutoff)
}
