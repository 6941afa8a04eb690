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

package config

import (
	"github.com/tomoncle/ldj/types"
)

// Mode is the runtime-mode indicator of the process.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeTest        Mode = "test"
	ModeProduction  Mode = "production"
)

var _ types.BaseEnum = Mode("")

var modeOrder = []Mode{ModeDevelopment, ModeTest, ModeProduction}

// ParseMode maps an indicator value to a Mode. Only the exact values
// "development" and "test" select the development database; anything else,
// including aliases, other spellings and the empty string, is production.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeDevelopment:
		return ModeDevelopment
	case ModeTest:
		return ModeTest
	default:
		return ModeProduction
	}
}

// IsDevelopmentLike reports whether the mode targets the development
// database and migration directory.
func (m Mode) IsDevelopmentLike() bool {
	return m == ModeDevelopment || m == ModeTest
}

func (m Mode) IsValid() bool {
	return m.Number() != types.IllegalValue
}

func (m Mode) Number() int {
	for i, v := range modeOrder {
		if v == m {
			return i
		}
	}
	return types.IllegalValue
}

func (m Mode) Name() string {
	if !m.IsValid() {
		return types.IllegalName
	}
	return string(m)
}

func (m Mode) String() string {
	return m.Name()
}
