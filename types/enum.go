/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

// Sentinel values returned by an enum that does not hold a known member.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
)

// BaseEnum is the contract shared by the small string-backed enums of this
// module, such as the runtime mode.
type BaseEnum interface {
	// IsValid reports whether the value is a declared member.
	IsValid() bool
	// Number is the ordinal of the member, IllegalValue otherwise.
	Number() int
	// Name is the canonical lower-case spelling.
	Name() string
	String() string
}
