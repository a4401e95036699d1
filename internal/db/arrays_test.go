package db

import "testing"

func TestTextArrayNilRendersEmptyArray(t *testing.T) {
	t.Parallel()

	v, err := textArray(nil).Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}
	if v == nil {
		t.Fatal("nil slice rendered as SQL NULL, want empty array")
	}
	if v != "{}" {
		t.Fatalf("Value() = %v, want {}", v)
	}
}

func TestTextArrayKeepsValues(t *testing.T) {
	t.Parallel()

	v, err := textArray([]string{"a", "b"}).Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}
	if v != `{"a","b"}` {
		t.Fatalf("Value() = %v, want {\"a\",\"b\"}", v)
	}
}
