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

import "time"

// epochDelta is the number of 100ns ticks between the FILETIME epoch
// (1601-01-01 UTC) and the Unix epoch (1970-01-01 UTC).
const epochDelta = 116444736000000000

// filetimeToTime converts a 64-bit FILETIME (100ns ticks since 1601-01-01
// UTC) to a time.Time.
func filetimeToTime(ft uint64) time.Time {
	if ft < epochDelta {
		return time.Unix(0, 0).UTC()
	}
	return time.Unix(0, (int64(ft)-epochDelta)*100).UTC()
}
