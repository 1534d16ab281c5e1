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

// Package codepage decodes the ANSI code pages property-set ASCII strings
// are declared in, using golang.org/x/text's charmap tables rather than a
// hand-rolled Latin-1 lookup.
package codepage

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Decode converts b from the given Windows/IBM code page to a UTF-8 string.
// Unrecognized code pages fall back to Windows-1252, the common default for
// SummaryInformation streams that omit an explicit CodePage property.
func Decode(b []byte, cp int16) (string, error) {
	enc := encodingFor(cp)
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func encodingFor(cp int16) encoding.Encoding {
	switch cp {
	case 1250:
		return charmap.Windows1250
	case 1251:
		return charmap.Windows1251
	case 1252:
		return charmap.Windows1252
	case 1253:
		return charmap.Windows1253
	case 1254:
		return charmap.Windows1254
	case 1257:
		return charmap.Windows1257
	case 28591: // ISO-8859-1
		return charmap.ISO8859_1
	case -535: // 65001 (UTF-8) read as a signed 16-bit value; bytes pass through
		return encoding.Nop
	default:
		return charmap.Windows1252
	}
}
