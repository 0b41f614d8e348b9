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

import (
	"testing"
)

// FuzzString checks the optimized implementation against the masked reference.
func FuzzString(f *testing.F) {
	f.Add("")
	f.Add("{}")
	f.Add("{ hello }")
	f.Add("héllo")
	f.Add("\xff\xfe")
	f.Add("😀😀😀")

	f.Fuzz(func(t *testing.T, input string) {
		got := String(input)
		if want := reference(input); got != want {
			t.Errorf("String(%q) = %d, want %d", input, got, want)
		}
		if again := String(input); again != got {
			t.Errorf("String(%q) not deterministic: %d != %d", input, got, again)
		}
	})
}
