package pathutil

import (
	"strconv"
	"strings"
)

// Root is the schema pointer of the document root.
const Root = "#"

var keywords = map[string]struct{}{
	"items":      {},
	"properties": {},
	"#":          {},
}

// ToFragments splits a pointer on "/" and drops empty fragments, so leading,
// trailing and doubled slashes are all treated the same.
func ToFragments(path string) []string {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// IsKeyword reports whether fragment only exists in schema space.
func IsKeyword(fragment string) bool {
	_, ok := keywords[fragment]
	return ok
}

// Normalize strips the schema-space keywords (#, properties, items) from a
// pointer, yielding the property path used against a data instance.
func Normalize(path string) string {
	fragments := ToFragments(path)
	out := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		if IsKeyword(fragment) {
			continue
		}
		out = append(out, fragment)
	}
	return strings.Join(out, "/")
}

// Join appends segments to pointer. An empty pointer starts at Root.
func Join(pointer string, segments ...string) string {
	if pointer == "" {
		pointer = Root
	}
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		pointer = pointer + "/" + segment
	}
	return pointer
}

// TupleItem returns the fragment addressing tuple entry idx, e.g. "items[2]".
func TupleItem(idx int) string {
	return "items[" + strconv.Itoa(idx) + "]"
}

// TupleIndex parses a fragment produced by TupleItem.
func TupleIndex(fragment string) (int, bool) {
	if !strings.HasPrefix(fragment, "items[") || !strings.HasSuffix(fragment, "]") {
		return 0, false
	}
	raw := fragment[len("items[") : len(fragment)-1]
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

// LastFragment returns everything after the final "/" of pointer.
func LastFragment(pointer string) string {
	if idx := strings.LastIndex(pointer, "/"); idx >= 0 {
		return pointer[idx+1:]
	}
	return pointer
}

// Beautify turns a camelCase identifier into a sentence: it splits before
// every uppercase letter, lowercases the words and capitalises the first one.
//
//	Beautify("firstName") == "First name"
func Beautify(text string) string {
	if text == "" {
		return ""
	}
	words := splitUpper(text)
	for idx, word := range words {
		words[idx] = strings.ToLower(word)
	}
	words[0] = capitalize(words[0])
	return strings.Join(words, " ")
}

// BeautifiedLastFragment labels a control from its pointer.
func BeautifiedLastFragment(pointer string) string {
	return Beautify(capitalize(LastFragment(pointer)))
}

func splitUpper(text string) []string {
	var (
		words []string
		start int
	)
	for idx := 0; idx < len(text); idx++ {
		if idx > start && isUpper(text[idx]) {
			words = append(words, text[start:idx])
			start = idx
		}
	}
	return append(words, text[start:])
}

func capitalize(word string) string {
	if word == "" {
		return ""
	}
	return strings.ToUpper(word[:1]) + word[1:]
}

func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }
