package models

import "testing"

func TestParseDateRoundTrip(t *testing.T) {
	for _, s := range []string{"2021-03", "1999-12", "2024-01", "Present"} {
		d, err := ParseDate(s)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", s, err)
		}
		if d.String() != s {
			t.Errorf("round trip %q = %q", s, d.String())
		}
	}
}

func TestParseDateRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"2021",
		"2021-3",
		"2021-00",
		"2021-13",
		"2021/03",
		"21-03",
		"present",
		"PRESENT",
		"2021-03-15",
		" 2021-03",
	}
	for _, s := range cases {
		if _, err := ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q): expected error", s)
		}
	}
}

func TestDateOrdering(t *testing.T) {
	a := MustDate("2020-05")
	b := MustDate("2020-06")
	c := MustDate("2021-01")
	p := MustDate("Present")

	if !a.Before(b) || !b.Before(c) {
		t.Error("calendar order broken")
	}
	if !c.Before(p) {
		t.Error("Present must order after any concrete date")
	}
	if !p.After(c) {
		t.Error("After inverted")
	}
}

func TestPresentValuesAreEqual(t *testing.T) {
	p1 := MustDate("Present")
	p2 := MustDate("Present")
	if !p1.Equal(p2) {
		t.Error("two Present values must compare equal")
	}
	if p1.Compare(p2) != 0 {
		t.Errorf("Compare = %d, want 0", p1.Compare(p2))
	}
}

func TestZeroDateFailsValidation(t *testing.T) {
	var d Date
	if err := d.Validate(); err == nil {
		t.Error("zero Date must fail validation")
	}
}
