package cellref

import "testing"

func TestPackUnpackRoundTrip(t *testing.T) {
	const rows, cols = 10, 10
	for r := int32(0); r < rows; r++ {
		for c := int32(0); c < cols; c++ {
			k := Pack(r, c, cols)
			gotR, gotC := Unpack(k, cols)
			if gotR != r || gotC != c {
				t.Fatalf("Unpack(Pack(%d,%d)) = (%d,%d)", r, c, gotR, gotC)
			}
		}
	}
}

func TestColumnName(t *testing.T) {
	cases := []struct {
		col  int32
		want string
	}{
		{0, "A"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
		{701, "ZZ"},
		{702, "AAA"},
	}
	for _, c := range cases {
		if got := ColumnName(c.col); got != c.want {
			t.Errorf("ColumnName(%d) = %q, want %q", c.col, got, c.want)
		}
	}
}

func TestParseReferenceRoundTrip(t *testing.T) {
	const rows, cols = 20, 800
	for c := int32(0); c < cols; c += 7 {
		for r := int32(0); r < rows; r += 3 {
			text := ColumnName(c) + itoa(r+1)
			gotR, gotC, ok := ParseReference(text, rows, cols)
			if !ok || gotR != r || gotC != c {
				t.Fatalf("ParseReference(%q) = (%d,%d,%v), want (%d,%d,true)", text, gotR, gotC, ok, r, c)
			}
		}
	}
}

func itoa(n int32) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf []byte
	for n > 0 {
		buf = append(buf, byte('0'+n%10))
		n /= 10
	}
	if neg {
		buf = append(buf, '-')
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

func TestParseReferenceRejectsOutOfBounds(t *testing.T) {
	if _, _, ok := ParseReference("K1", 10, 10); ok {
		t.Fatalf("expected out-of-bounds column to fail")
	}
	if _, _, ok := ParseReference("A11", 10, 10); ok {
		t.Fatalf("expected out-of-bounds row to fail")
	}
	if _, _, ok := ParseReference("1A", 10, 10); ok {
		t.Fatalf("expected lexically malformed reference to fail")
	}
	if _, _, ok := ParseReference("A0", 10, 10); ok {
		t.Fatalf("expected row 0 (1-based) to fail")
	}
}

func TestParseRange(t *testing.T) {
	sr, sc, er, ec, ok := ParseRange("A1:A3", 10, 10)
	if !ok || sr != 0 || sc != 0 || er != 2 || ec != 0 {
		t.Fatalf("ParseRange(A1:A3) = (%d,%d,%d,%d,%v)", sr, sc, er, ec, ok)
	}
	if _, _, _, _, ok := ParseRange("A3:A1", 10, 10); ok {
		t.Fatalf("expected inverted range to fail")
	}
	if _, _, _, _, ok := ParseRange("A1", 10, 10); ok {
		t.Fatalf("expected missing colon to fail")
	}
}
