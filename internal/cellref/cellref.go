// Package cellref implements the identifier codec: packing (row, col)
// pairs into a dense grid key, and parsing the A1-style reference and
// range syntax the command grammar accepts.
package cellref

import (
	"strconv"
)

// Key is a packed (row, col) identifier: K = row*cols + col. It is total
// and bijective over a fixed-size rectangle.
type Key int32

// MaxDim is the largest row or column count the grid supports, per the
// startup contract ([1, 32767]).
const MaxDim = 32767

// Pack encodes a (row, col) pair into a Key for a sheet with the given
// column count. Callers are expected to have already bounds-checked row
// and col; Pack itself does no validation.
func Pack(row, col, cols int32) Key {
	return Key(row*cols + col)
}

// Unpack recovers (row, col) from a Key for a sheet with the given column
// count.
func Unpack(k Key, cols int32) (row, col int32) {
	v := int32(k)
	return v / cols, v % cols
}

// ColumnName renders a 0-based column index as bijective base-26 letters
// (0 -> "A", 25 -> "Z", 26 -> "AA"), matching the 1-based A=1 scheme used
// by the reference syntax.
func ColumnName(col int32) string {
	n := col + 1 // switch to the 1-based A=1 convention
	var buf []byte
	for n > 0 {
		n--
		buf = append(buf, byte('A'+n%26))
		n /= 26
	}
	// reverse in place
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// columnIndex parses bijective base-26 letters back to a 0-based column
// index.
func columnIndex(letters string) int32 {
	var n int32
	for i := 0; i < len(letters); i++ {
		n = n*26 + int32(letters[i]-'A'+1)
	}
	return n - 1
}

// split separates the leading run of uppercase letters from the trailing
// run of decimal digits. ok is false if the text isn't exactly letters
// followed by digits.
func split(text string) (letters, digits string, ok bool) {
	i := 0
	for i < len(text) && text[i] >= 'A' && text[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(text) {
		return "", "", false
	}
	j := i
	for j < len(text) && text[j] >= '0' && text[j] <= '9' {
		j++
	}
	if j != len(text) {
		return "", "", false
	}
	return text[:i], text[i:j], true
}

// ParseReference parses an A1-style reference, e.g. "B12", returning
// 0-based (row, col). It reports a lexical mismatch or an out-of-bounds
// reference via ok=false; the caller maps that to an InvalidCell status.
func ParseReference(text string, rows, cols int32) (row, col int32, ok bool) {
	letters, digits, lexOK := split(text)
	if !lexOK {
		return 0, 0, false
	}
	n, err := strconv.ParseInt(digits, 10, 32)
	if err != nil || n < 1 {
		return 0, 0, false
	}
	c := columnIndex(letters)
	r := int32(n) - 1
	if r < 0 || r >= rows || c < 0 || c >= cols {
		return 0, 0, false
	}
	return r, c, true
}

// ParseRange parses "<ref>:<ref>", returning 0-based inclusive corners.
// ok is false on a lexical/bounds failure of either reference, or if the
// range is inverted (start after end in either axis).
func ParseRange(text string, rows, cols int32) (startRow, startCol, endRow, endCol int32, ok bool) {
	i := -1
	for idx := 0; idx < len(text); idx++ {
		if text[idx] == ':' {
			i = idx
			break
		}
	}
	if i <= 0 || i >= len(text)-1 {
		return 0, 0, 0, 0, false
	}
	startRow, startCol, ok = ParseReference(text[:i], rows, cols)
	if !ok {
		return 0, 0, 0, 0, false
	}
	endRow, endCol, ok = ParseReference(text[i+1:], rows, cols)
	if !ok {
		return 0, 0, 0, 0, false
	}
	if startRow > endRow || startCol > endCol {
		return 0, 0, 0, 0, false
	}
	return startRow, startCol, endRow, endCol, true
}
