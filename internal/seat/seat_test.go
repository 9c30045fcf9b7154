package seat

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want string
		kind Kind
	}{
		{"A12", "A12", Canonical},
		{"12A", "A12", NumberFirst},
		{"B1", "B1", Canonical},
		{"1B", "B1", NumberFirst},
		{"F30", "F30", Canonical},
		{"G1", "G1", Unrecognized},
		{"A123", "A123", Unrecognized},
		{"", "", Unrecognized},
		{"12", "12", Unrecognized},
	}
	for _, c := range cases {
		got, kind := Parse(c.in)
		if got != c.want || kind != c.kind {
			t.Errorf("Parse(%q) = (%q, %v), want (%q, %v)", c.in, got, kind, c.want, c.kind)
		}
	}
}

func TestToCanonicalIdempotent(t *testing.T) {
	for _, in := range []string{"12A", "A12", "garbage", "1B"} {
		once := ToCanonical(in)
		if twice := ToCanonical(once); twice != once {
			t.Errorf("ToCanonical not idempotent for %q: %q != %q", in, once, twice)
		}
	}
	if got := ToCanonical("12A"); got != "A12" {
		t.Errorf("ToCanonical(12A) = %q, want A12", got)
	}
	if got := ToCanonical("A12"); got != "A12" {
		t.Errorf("ToCanonical(A12) = %q, want A12", got)
	}
}

func TestIsValid(t *testing.T) {
	if IsValid("G1") {
		t.Error("G1 should be invalid")
	}
	if !IsValid("A12") {
		t.Error("A12 should be valid")
	}
	if IsValid("12A") {
		t.Error("12A is number-first, not canonical")
	}
	if IsValid("99Z") {
		t.Error("99Z should be invalid")
	}
}
