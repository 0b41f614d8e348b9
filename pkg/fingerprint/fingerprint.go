// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package fingerprint

// String returns the fingerprint of text. The accumulator is updated as
// acc = (acc << 5) - acc + codepoint for every code point, wrapping at 32 bits.
// Invalid UTF-8 bytes contribute U+FFFD.
func String(text string) uint32 {
	var acc uint32
	for _, r := range text {
		acc = (acc << 5) - acc + uint32(r)
	}
	return acc
}

// Bytes returns the fingerprint of b interpreted as UTF-8 text.
func Bytes(b []byte) uint32 {
	return String(string(b))
}
