// Copyright 2025 The Cognitad Authors
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

package config

import (
	"os"
	"regexp"
	"strings"
)

var (
	reWithDefault = regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*):-(.*?)\}`)
	reBraced      = regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)\}`)
	reSimple      = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)
)

// expandEnv substitutes ${VAR}, ${VAR:-default}, and $VAR references with
// values from the process environment, leaving unresolved references as
// empty strings rather than failing the load.
func expandEnv(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}
	s = reWithDefault.ReplaceAllStringFunc(s, func(m string) string {
		parts := reWithDefault.FindStringSubmatch(m)
		if v := os.Getenv(parts[1]); v != "" {
			return v
		}
		return parts[2]
	})
	s = reBraced.ReplaceAllStringFunc(s, func(m string) string {
		return os.Getenv(reBraced.FindStringSubmatch(m)[1])
	})
	s = reSimple.ReplaceAllStringFunc(s, func(m string) string {
		return os.Getenv(reSimple.FindStringSubmatch(m)[1])
	})
	return s
}

// expandEnvValue walks a decoded YAML value and expands environment
// references in every string leaf, recursively.
func expandEnvValue(v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		return expandEnv(t)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = expandEnvValue(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = expandEnvValue(val)
		}
		return out
	default:
		return v
	}
}
