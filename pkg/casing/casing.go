// Package casing normalizes JSON documents coming from the platform APIs,
// which use snake_case keys, into the camelCase keys the portal works with.
package casing

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CamelCaseKeys returns a copy of v with every object key renamed from
// snake_case to camelCase, at any depth. Values other than maps and slices
// are returned as is. The input is never modified.
func CamelCaseKeys(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, val := range typed {
			out[CamelCase(k)] = CamelCaseKeys(val)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, val := range typed {
			out[i] = CamelCaseKeys(val)
		}
		return out
	default:
		return v
	}
}

// CamelCase converts a single key the way lodash's camelCase does: the key
// is split into words at separators, case changes and digit runs, then the
// words are joined lower-cased with every word after the first capitalized.
// "_id" becomes "id" and "HTTPStatus_code" becomes "httpStatusCode".
func CamelCase(key string) string {
	words := splitWords(key)
	var b strings.Builder
	b.Grow(len(key))
	for i, w := range words {
		w = strings.ToLower(w)
		if i > 0 {
			r, size := utf8.DecodeRuneInString(w)
			b.WriteRune(unicode.ToUpper(r))
			w = w[size:]
		}
		b.WriteString(w)
	}
	return b.String()
}

func splitWords(s string) []string {
	rs := []rune(s)
	var words []string
	for i := 0; i < len(rs); {
		j := i
		switch r := rs[i]; {
		case unicode.IsDigit(r):
			for j < len(rs) && unicode.IsDigit(rs[j]) {
				j++
			}
		case unicode.IsUpper(r):
			for j < len(rs) && unicode.IsUpper(rs[j]) {
				j++
			}
			if j < len(rs) && isLower(rs[j]) {
				if j-i > 1 {
					// An acronym ends where the next capitalized word starts.
					j--
				} else {
					for j < len(rs) && isLower(rs[j]) {
						j++
					}
				}
			}
		case isLower(r):
			for j < len(rs) && isLower(rs[j]) {
				j++
			}
		default:
			i++
			continue
		}
		words = append(words, string(rs[i:j]))
		i = j
	}
	return words
}

func isLower(r rune) bool {
	return unicode.IsLetter(r) && !unicode.IsUpper(r)
}

// Normalize decodes a single JSON document, camelCases its keys and
// re-encodes it. Numbers keep their original textual form. Anything but
// whitespace after the document is an error.
func Normalize(body []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return json.Marshal(CamelCaseKeys(doc))
}

var errTrailingData = errors.New("casing: unexpected data after JSON document")
