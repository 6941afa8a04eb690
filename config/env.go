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
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment resolves a variable by name. The second result reports
// whether the variable is set at all.
type Environment interface {
	Lookup(key string) (string, bool)
}

// EnvFunc adapts a lookup function such as os.LookupEnv.
type EnvFunc func(key string) (string, bool)

func (f EnvFunc) Lookup(key string) (string, bool) { return f(key) }

// MapEnv is an Environment backed by a map, mostly useful in tests.
type MapEnv map[string]string

func (m MapEnv) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// OSEnvironment reads the process environment.
func OSEnvironment() Environment {
	return EnvFunc(os.LookupEnv)
}

// layered consults the process environment first, then the values read
// from a dotenv file.
type layered struct {
	primary  Environment
	fallback MapEnv
}

func (l layered) Lookup(key string) (string, bool) {
	if v, ok := l.primary.Lookup(key); ok {
		return v, true
	}
	return l.fallback.Lookup(key)
}

// LoadDotEnv returns the process environment overlaid on the variables of a
// dotenv file. Process variables win. A missing file is not an error.
func LoadDotEnv(path string) (Environment, error) {
	if path == "" {
		return OSEnvironment(), nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return OSEnvironment(), nil
		}
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return layered{primary: OSEnvironment(), fallback: MapEnv(values)}, nil
}
