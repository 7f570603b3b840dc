/*
 *    Copyright 2021 chenquan
 *
 *    Licensed under the Apache License, Version 2.0 (the "License");
 *    you may not use this file except in compliance with the License.
 *    You may obtain a copy of the License at
 *
 *        http://www.apache.org/licenses/LICENSE-2.0
 *
 *    Unless required by applicable law or agreed to in writing, software
 *    distributed under the License is distributed on an "AS IS" BASIS,
 *    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *    See the License for the specific language governing permissions and
 *    limitations under the License.
 */

// Package topic implements the subscription-filter matcher (spec §4.2): a
// level-wise comparison of a topic filter against a topic name, supporting
// the '+' single-level and '#' multi-level wildcards, allocation-free.
package topic

// Match reports whether filter matches name. filter may contain '+'
// (exactly one level) and '#' (zero or more trailing levels, final
// character only). If filter begins with '#' and name begins with '$',
// the match is rejected: broad wildcards never capture system topics.
func Match(filter, name string) bool {
	if len(filter) > 0 && filter[0] == '#' && len(name) > 0 && name[0] == '$' {
		return false
	}
	return matchLevels(filter, name)
}

// matchLevels walks filter and name one level at a time without
// allocating. pos == -1 marks "no more input"; nextLevel below advances it.
func matchLevels(filter, name string) bool {
	fPos, nPos := 0, 0
	for {
		fLevel, fNext, fOk := nextLevel(filter, fPos)
		if !fOk {
			_, _, nOk := nextLevel(name, nPos)
			return !nOk
		}
		if fLevel == "#" {
			// '#' matches zero or more remaining levels of name,
			// including none (spec §4.2, §8 property 6), but only as
			// the filter's final level.
			return fNext == -1
		}
		nLevel, nNext, nOk := nextLevel(name, nPos)
		if !nOk {
			return false
		}
		if fLevel != "+" && fLevel != nLevel {
			return false
		}
		fPos, nPos = fNext, nNext
	}
}

// nextLevel returns the topic level starting at pos, the position to resume
// at (-1 once the string is exhausted), and whether a level was present at
// all. A trailing '/' yields one more, empty, level before exhaustion.
func nextLevel(s string, pos int) (level string, next int, ok bool) {
	if pos < 0 {
		return "", -1, false
	}
	rest := s[pos:]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			return rest[:i], pos + i + 1, true
		}
	}
	return rest, -1, true
}

// ValidFilter validates a subscription filter per spec §4.3: non-empty;
// '#' may only be the final character, and only alone or immediately
// preceded by '/'; every '+' must occupy an entire level (its neighbors,
// if present, are '/').
func ValidFilter(filter string) bool {
	if filter == "" {
		return false
	}
	for i := 0; i < len(filter); i++ {
		switch filter[i] {
		case '#':
			if i != len(filter)-1 {
				return false
			}
			if i > 0 && filter[i-1] != '/' {
				return false
			}
		case '+':
			if i > 0 && filter[i-1] != '/' {
				return false
			}
			if i < len(filter)-1 && filter[i+1] != '/' {
				return false
			}
		}
	}
	return true
}
