package pathutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestToFragments(t *testing.T) {
	cases := map[string][]string{
		"":                      nil,
		"#/properties/name":     {"#", "properties", "name"},
		"/a//b/":                {"a", "b"},
		"//":                    {},
		"#/items/properties/x/": {"#", "items", "properties", "x"},
	}
	for input, want := range cases {
		got := ToFragments(input)
		if len(want) == 0 && len(got) == 0 {
			continue
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("fragments %q mismatch (-want +got):\n%s", input, diff)
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":                                     "",
		"#":                                    "",
		"#/properties/age":                     "age",
		"#/properties/address/properties/city": "address/city",
		"#/items/properties/x":                 "x",
		"#/properties/rows/items[1]":           "rows/items[1]",
		"address//city/":                       "address/city",
	}
	for input, want := range cases {
		if got := Normalize(input); got != want {
			t.Fatalf("normalize %q: want %q got %q", input, want, got)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"#/properties/a/items/properties/b",
		"/items//properties/#/c",
		"plain/path",
		"#",
		"",
	}
	for _, input := range inputs {
		once := Normalize(input)
		if twice := Normalize(once); twice != once {
			t.Fatalf("normalize not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}

func TestBeautify(t *testing.T) {
	cases := map[string]string{
		"":          "",
		"age":       "Age",
		"id":        "Id",
		"firstName": "First name",
		"Email":     "Email",
		"zipCodeV2": "Zip code v2",
	}
	for input, want := range cases {
		if got := Beautify(input); got != want {
			t.Fatalf("beautify %q: want %q got %q", input, want, got)
		}
	}
}

func TestBeautifiedLastFragment(t *testing.T) {
	if got := BeautifiedLastFragment("#/properties/personalData/properties/birthDate"); got != "Birth date" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := BeautifiedLastFragment("name"); got != "Name" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestTupleItem(t *testing.T) {
	fragment := TupleItem(3)
	if fragment != "items[3]" {
		t.Fatalf("unexpected fragment %q", fragment)
	}
	idx, ok := TupleIndex(fragment)
	if !ok || idx != 3 {
		t.Fatalf("expected index 3, got %d (%v)", idx, ok)
	}
	for _, bad := range []string{"items", "items[]", "items[-1]", "item[1]", "items[x]"} {
		if _, ok := TupleIndex(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestJoin(t *testing.T) {
	if got := Join("", "properties", "a"); got != "#/properties/a" {
		t.Fatalf("unexpected join %q", got)
	}
	if got := Join("#/items", "", "properties", "b"); got != "#/items/properties/b" {
		t.Fatalf("unexpected join %q", got)
	}
}
