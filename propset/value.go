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

package propset

import (
	"encoding/binary"
	"math"
	"time"
	"unicode/utf16"

	"github.com/richardlehane/olecf"
	"github.com/richardlehane/olecf/internal/codepage"
)

// Value-type codes.
const (
	VTEmpty       uint32 = 0x0000
	VTNull        uint32 = 0x0001
	VTI2          uint32 = 0x0002
	VTI4          uint32 = 0x0003
	VTFloat32     uint32 = 0x0004
	VTFloat64     uint32 = 0x0005
	VTBool        uint32 = 0x000B
	VTI8          uint32 = 0x0014
	VTUI8         uint32 = 0x0015
	VTASCIIString uint32 = 0x001E
	VTUTF16String uint32 = 0x001F
	VTFiletime    uint32 = 0x0040
	VTBlob        uint32 = 0x0041
	VTCLSID       uint32 = 0x0048

	vtVectorFlag uint32 = 0x1000
)

// Property is a single typed key-value entry within a Section.
type Property struct {
	id        uint32
	valueType uint32 // includes the vector flag, if set
	raw       []byte // payload bytes after the 4-byte value-type header
	section   *Section
}

// ID returns the property's identifier.
func (p *Property) ID() uint32 { return p.id }

// ValueType returns the raw on-disk value-type code, including the
// multi-value flag (0x1000) if set.
func (p *Property) ValueType() uint32 { return p.valueType }

// BaseType returns the value-type with the multi-value flag cleared.
func (p *Property) BaseType() uint32 { return p.valueType &^ vtVectorFlag }

// IsMultiValue reports whether the property is a multi-value (vector).
func (p *Property) IsMultiValue() bool { return p.valueType&vtVectorFlag != 0 }

// Data returns the raw payload bytes, for unknown value-types or callers
// that want to decode a type themselves.
func (p *Property) Data() []byte { return p.raw }

func typeMismatch(p *Property) error {
	return olecf.NewError(olecf.KindTypeMismatch, "property value-type does not support this accessor")
}

// decodeValue parses one typed property value whose bytes (valueType u32 +
// payload) begin at buf[0]. Unknown value-types are preserved as raw bytes
// rather than rejected.
func decodeValue(buf []byte, id uint32) (*Property, error) {
	if len(buf) < 4 {
		return nil, olecf.NewError(olecf.KindInvalidPropertySet, "truncated property value")
	}
	vt := binary.LittleEndian.Uint32(buf[0:4])
	return &Property{id: id, valueType: vt, raw: buf[4:]}, nil
}

// AsBool decodes a VT_BOOL (16-bit, nonzero ⇒ true).
func (p *Property) AsBool() (bool, error) {
	if p.BaseType() != VTBool || len(p.raw) < 2 {
		return false, typeMismatch(p)
	}
	return binary.LittleEndian.Uint16(p.raw[:2]) != 0, nil
}

// AsInt64 decodes any of the signed/unsigned integer value-types as an
// int64.
func (p *Property) AsInt64() (int64, error) {
	switch p.BaseType() {
	case VTI2:
		if len(p.raw) < 2 {
			return 0, typeMismatch(p)
		}
		return int64(int16(binary.LittleEndian.Uint16(p.raw))), nil
	case VTI4:
		if len(p.raw) < 4 {
			return 0, typeMismatch(p)
		}
		return int64(int32(binary.LittleEndian.Uint32(p.raw))), nil
	case VTI8:
		if len(p.raw) < 8 {
			return 0, typeMismatch(p)
		}
		return int64(binary.LittleEndian.Uint64(p.raw)), nil
	case VTUI8:
		if len(p.raw) < 8 {
			return 0, typeMismatch(p)
		}
		return int64(binary.LittleEndian.Uint64(p.raw)), nil
	}
	return 0, typeMismatch(p)
}

// AsUint64 decodes VT_UI8 (or any other core integer type, widened) as an
// unsigned 64-bit value.
func (p *Property) AsUint64() (uint64, error) {
	v, err := p.AsInt64()
	if err != nil {
		return 0, err
	}
	return uint64(v), nil
}

// AsFloat64 decodes VT_FLOAT32 or VT_FLOAT64.
func (p *Property) AsFloat64() (float64, error) {
	switch p.BaseType() {
	case VTFloat32:
		if len(p.raw) < 4 {
			return 0, typeMismatch(p)
		}
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(p.raw))), nil
	case VTFloat64:
		if len(p.raw) < 8 {
			return 0, typeMismatch(p)
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(p.raw)), nil
	}
	return 0, typeMismatch(p)
}

// AsTime decodes VT_FILETIME as a time.Time.
func (p *Property) AsTime() (time.Time, error) {
	if p.BaseType() != VTFiletime || len(p.raw) < 8 {
		return time.Time{}, typeMismatch(p)
	}
	return filetimeToTime(binary.LittleEndian.Uint64(p.raw)), nil
}

// AsCLSID decodes VT_CLSID as a raw 16-byte GUID.
func (p *Property) AsCLSID() ([16]byte, error) {
	var out [16]byte
	if p.BaseType() != VTCLSID || len(p.raw) < 16 {
		return out, typeMismatch(p)
	}
	copy(out[:], p.raw[:16])
	return out, nil
}

// AsBlob decodes VT_BLOB as its raw byte payload.
func (p *Property) AsBlob() ([]byte, error) {
	if p.BaseType() != VTBlob || len(p.raw) < 4 {
		return nil, typeMismatch(p)
	}
	n := binary.LittleEndian.Uint32(p.raw[0:4])
	if uint32(len(p.raw)-4) < n {
		return nil, olecf.NewError(olecf.KindInvalidPropertySet, "blob length exceeds payload")
	}
	return p.raw[4 : 4+n], nil
}

// AsString decodes VT_LPSTR (ASCII, code-page aware) or VT_LPWSTR
// (UTF-16LE), stripping a trailing NUL.
func (p *Property) AsString() (string, error) {
	switch p.BaseType() {
	case VTASCIIString:
		if len(p.raw) < 4 {
			return "", typeMismatch(p)
		}
		n := binary.LittleEndian.Uint32(p.raw[0:4])
		if uint32(len(p.raw)-4) < n {
			return "", olecf.NewError(olecf.KindInvalidPropertySet, "string length exceeds payload")
		}
		b := p.raw[4 : 4+n]
		if len(b) > 0 && b[len(b)-1] == 0 {
			b = b[:len(b)-1]
		}
		cp := int16(1252)
		if p.section != nil {
			cp = p.section.codePage
		}
		return codepage.Decode(b, cp)
	case VTUTF16String:
		if len(p.raw) < 4 {
			return "", typeMismatch(p)
		}
		n := binary.LittleEndian.Uint32(p.raw[0:4])
		need := int(n) * 2
		if len(p.raw)-4 < need {
			return "", olecf.NewError(olecf.KindInvalidPropertySet, "string length exceeds payload")
		}
		units := make([]uint16, n)
		for i := uint32(0); i < n; i++ {
			units[i] = binary.LittleEndian.Uint16(p.raw[4+i*2 : 6+i*2])
		}
		for len(units) > 0 && units[len(units)-1] == 0 {
			units = units[:len(units)-1]
		}
		return string(utf16.Decode(units)), nil
	}
	return "", typeMismatch(p)
}

// MultiValueCount returns the element count of a multi-value property's
// packed array.
func (p *Property) MultiValueCount() (uint32, error) {
	if !p.IsMultiValue() || len(p.raw) < 4 {
		return 0, typeMismatch(p)
	}
	return binary.LittleEndian.Uint32(p.raw[0:4]), nil
}
