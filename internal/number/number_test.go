package number

import "testing"

func mustParse(t *testing.T, s string, ibase int) Number {
	t.Helper()
	n, err := Parse(s, ibase)
	if err != nil {
		t.Fatalf("Parse(%q, %d): %v", s, ibase, err)
	}
	return n
}

func TestAddSubRoundTrip(t *testing.T) {
	cases := []struct{ a, b string }{
		{"123.45", "67.891"},
		{"-10", "3"},
		{"0", "0"},
		{"999999999999999999999999999999", "1"},
	}
	for _, c := range cases {
		a := mustParse(t, c.a, 10)
		b := mustParse(t, c.b, 10)
		sum, err := Add(nil, a, b)
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		back, err := Sub(nil, sum, b)
		if err != nil {
			t.Fatalf("Sub: %v", err)
		}
		got, err := Format(nil, back, 10, 0)
		if err != nil {
			t.Fatalf("Format: %v", err)
		}
		want, err := Format(nil, a.Extend(back.rdx), 10, 0)
		if err != nil {
			t.Fatalf("Format: %v", err)
		}
		if got != want {
			t.Errorf("(%s+%s)-%s = %s, want %s", c.a, c.b, c.b, got, want)
		}
	}
}

func TestCmpAntisymmetric(t *testing.T) {
	vals := []string{"-5", "0", "3.14", "100", "-100.5"}
	for _, sa := range vals {
		for _, sb := range vals {
			a := mustParse(t, sa, 10)
			b := mustParse(t, sb, 10)
			c1, err := Cmp(nil, a, b)
			if err != nil {
				t.Fatal(err)
			}
			c2, err := Cmp(nil, b, a)
			if err != nil {
				t.Fatal(err)
			}
			if c1 != -c2 {
				t.Errorf("Cmp(%s,%s)=%d, Cmp(%s,%s)=%d, not antisymmetric", sa, sb, c1, sb, sa, c2)
			}
		}
	}
}

func TestDivModIdentity(t *testing.T) {
	a := mustParse(t, "17", 10)
	b := mustParse(t, "5", 10)
	q, r, err := DivMod(nil, a, b, 10)
	if err != nil {
		t.Fatal(err)
	}
	prod, err := Mul(nil, q, b, 10)
	if err != nil {
		t.Fatal(err)
	}
	sum, err := Add(nil, prod, r)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := Format(nil, sum, 10, 0)
	want, _ := Format(nil, a.Extend(sum.rdx), 10, 0)
	if got != want {
		t.Errorf("(a/b)*b+a%%b = %s, want %s", got, want)
	}
}

func TestDivideByZero(t *testing.T) {
	a := mustParse(t, "1", 10)
	z := mustParse(t, "0", 10)
	if _, err := Div(nil, a, z, 10); err == nil {
		t.Fatal("expected divide-by-zero error")
	}
}

func TestKaratsubaMatchesSchoolbook(t *testing.T) {
	bigDigits := make([]byte, 200)
	for i := range bigDigits {
		bigDigits[i] = byte((i*7 + 3) % 10)
	}
	a := Number{digits: append([]byte(nil), bigDigits...)}.trim()
	b := a

	kproduct, err := mulKaratsuba(nil, a.digits, b.digits)
	if err != nil {
		t.Fatal(err)
	}
	sproduct, err := mulSchoolbook(nil, a.digits, b.digits)
	if err != nil {
		t.Fatal(err)
	}
	if cmpRaw(kproduct, sproduct) != 0 {
		t.Fatalf("karatsuba and schoolbook disagree")
	}
}

func TestSqrtPrecision(t *testing.T) {
	two := mustParse(t, "2", 10)
	r, err := Sqrt(nil, two, 10)
	if err != nil {
		t.Fatal(err)
	}
	s, err := Format(nil, r, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := "1.4142135623"
	if s[:len(want)] != want {
		t.Errorf("sqrt(2) = %s, want prefix %s", s, want)
	}
}

func TestSqrtNegativeFails(t *testing.T) {
	n := mustParse(t, "-4", 10)
	if _, err := Sqrt(nil, n, 10); err == nil {
		t.Fatal("expected negative sqrt error")
	}
}

func TestParsePrintBaseRoundTrip(t *testing.T) {
	n := mustParse(t, "255", 10)
	s, err := Format(nil, n, 16, 0)
	if err != nil {
		t.Fatal(err)
	}
	if s != "FF" {
		t.Errorf("255 in base 16 = %s, want FF", s)
	}
	back, err := Parse("FF", 16)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := Format(nil, back, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if s2 != "255" {
		t.Errorf("FF in base 16 parsed back = %s, want 255", s2)
	}
}

func TestPowNegativeExponent(t *testing.T) {
	two := mustParse(t, "2", 10)
	negTwo := mustParse(t, "-2", 10)
	r, err := Pow(nil, two, negTwo, 4)
	if err != nil {
		t.Fatal(err)
	}
	s, _ := Format(nil, r, 10, 0)
	if s != ".2500" {
		t.Errorf("2^-2 = %s, want .2500", s)
	}
}

func TestModExp(t *testing.T) {
	a := mustParse(t, "4", 10)
	b := mustParse(t, "13", 10)
	c := mustParse(t, "497", 10)
	r, err := ModExp(nil, a, b, c)
	if err != nil {
		t.Fatal(err)
	}
	s, _ := Format(nil, r, 10, 0)
	if s != "445" {
		t.Errorf("4^13 mod 497 = %s, want 445", s)
	}
}
