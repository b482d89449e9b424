package formula

import (
	"strconv"
	"strings"

	"github.com/arjunmenon/termsheet/internal/cellref"
	"github.com/arjunmenon/termsheet/internal/gridstore"
	"github.com/arjunmenon/termsheet/internal/opcode"
	"github.com/arjunmenon/termsheet/internal/status"
)

// Result is what classifying an expression yields: either a constant
// value to store directly (no metadata, no edges), or a metadata record
// plus the single-edge parents the caller should wire into the
// dependency graph. Range-aggregate results carry their corners in the
// metadata itself; the caller adds a range edge instead of single edges
// when Meta.Opcode.IsRangeAggregate().
type Result struct {
	Constant bool
	Value    gridstore.Value
	Meta     gridstore.Metadata
	Parents  []cellref.Key
}

// Parser classifies expression text against a fixed-size rows x cols
// sheet, trying in order: SLEEP, range aggregate, binary arithmetic,
// single reference, single literal.
type Parser struct {
	Rows, Cols int32
	Sleeper    Sleeper
}

// NewParser builds a Parser that sleeps for real.
func NewParser(rows, cols int32) *Parser {
	return &Parser{Rows: rows, Cols: cols, Sleeper: WallSleeper{}}
}

// Parse classifies expr. A literal SLEEP blocks for real inside Parse
// itself, so its side effect happens exactly once, at command time;
// everything else is pure classification with no side effects.
func (p *Parser) Parse(expr string) (Result, status.Status) {
	expr = strings.TrimSpace(expr)
	if inner, ok := functionArg(expr, "SLEEP"); ok {
		return p.parseSleep(inner)
	}
	for _, name := range []struct {
		prefix string
		op     opcode.Code
	}{
		{"SUM", opcode.Sum}, {"AVG", opcode.Avg}, {"MIN", opcode.Min},
		{"MAX", opcode.Max}, {"STDEV", opcode.Stdev},
	} {
		if inner, ok := functionArg(expr, name.prefix); ok {
			return p.parseAggregate(inner, name.op)
		}
	}
	if r, st, matched := p.parseBinaryArith(expr); matched {
		return r, st
	}
	if row, col, ok := cellref.ParseReference(expr, p.Rows, p.Cols); ok {
		return Result{
			Meta:    gridstore.Metadata{Opcode: opcode.Ref, Parent1: int32(cellref.Pack(row, col, p.Cols)), Parent2: opcode.None},
			Parents: []cellref.Key{cellref.Pack(row, col, p.Cols)},
		}, status.Ok
	}
	if n, ok := parseLiteral(expr); ok {
		return Result{Constant: true, Value: gridstore.OK(n)}, status.Ok
	}
	return Result{}, status.Unrecognized
}

// functionArg reports whether expr is "<prefix>(<inner>)" and returns
// inner trimmed.
func functionArg(expr, prefix string) (inner string, ok bool) {
	if !strings.HasPrefix(expr, prefix+"(") || !strings.HasSuffix(expr, ")") {
		return "", false
	}
	return strings.TrimSpace(expr[len(prefix)+1 : len(expr)-1]), true
}

// parseLiteral parses a signed decimal integer, the same shape as
// strconv.ParseInt with base 10 and bit size 32.
func parseLiteral(s string) (int32, bool) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(n), true
}

func (p *Parser) parseSleep(inner string) (Result, status.Status) {
	if n, ok := parseLiteral(inner); ok {
		seconds := n
		if seconds < 0 {
			seconds = 0
		}
		p.Sleeper.Sleep(seconds)
		return Result{Constant: true, Value: gridstore.OK(n)}, status.Ok
	}
	if row, col, ok := cellref.ParseReference(inner, p.Rows, p.Cols); ok {
		key := cellref.Pack(row, col, p.Cols)
		return Result{
			Meta:    gridstore.Metadata{Opcode: opcode.SleepRef, Parent1: int32(key), Parent2: opcode.None},
			Parents: []cellref.Key{key},
		}, status.Ok
	}
	return Result{}, status.Unrecognized
}

func (p *Parser) parseAggregate(inner string, op opcode.Code) (Result, status.Status) {
	sr, sc, er, ec, ok := cellref.ParseRange(inner, p.Rows, p.Cols)
	if !ok {
		return Result{}, status.InvalidRange
	}
	start := cellref.Pack(sr, sc, p.Cols)
	end := cellref.Pack(er, ec, p.Cols)
	return Result{
		Meta: gridstore.Metadata{Opcode: op, Parent1: int32(start), Parent2: int32(end)},
	}, status.Ok
}

// operatorIndex scans expr starting at index 1 (skipping a possible
// leading minus sign on a negative left literal) for the first +-*/.
func operatorIndex(expr string) int {
	for i := 1; i < len(expr); i++ {
		switch expr[i] {
		case '+', '-', '*', '/':
			return i
		}
	}
	return -1
}

// parseBinaryArith attempts the lhs-OP-rhs classification. matched is
// false when expr contains no top-level operator at all, signaling the
// caller to fall through to the single-reference/single-literal rules
// instead of failing outright.
func (p *Parser) parseBinaryArith(expr string) (Result, status.Status, bool) {
	i := operatorIndex(expr)
	if i < 0 {
		return Result{}, status.Ok, false
	}
	op := opcode.ArithOp(expr[i])
	left, right := expr[:i], expr[i+1:]
	if left == "" || right == "" {
		return Result{}, status.Unrecognized, true
	}

	leftLit, leftIsLit := parseLiteral(left)
	rightLit, rightIsLit := parseLiteral(right)

	var leftKey, rightKey cellref.Key
	leftIsRef, rightIsRef := false, false
	if !leftIsLit {
		row, col, ok := cellref.ParseReference(left, p.Rows, p.Cols)
		if !ok {
			return Result{}, status.InvalidCell, true
		}
		leftKey, leftIsRef = cellref.Pack(row, col, p.Cols), true
	}
	if !rightIsLit {
		row, col, ok := cellref.ParseReference(right, p.Rows, p.Cols)
		if !ok {
			return Result{}, status.InvalidCell, true
		}
		rightKey, rightIsRef = cellref.Pack(row, col, p.Cols), true
	}

	if !leftIsRef && !rightIsRef {
		// Literal-literal: fold at parse time, no metadata, no edges.
		return Result{Constant: true, Value: applyArith(op, leftLit, rightLit)}, status.Ok, true
	}

	base := opcode.ArithBase(op)
	var parents []cellref.Key
	meta := gridstore.Metadata{Opcode: base}
	switch {
	case leftIsRef && rightIsRef:
		meta.Opcode += opcode.OffsetBothRefs
		meta.Parent1, meta.Parent2 = int32(leftKey), int32(rightKey)
		parents = []cellref.Key{leftKey, rightKey}
	case leftIsRef:
		meta.Opcode += opcode.OffsetLeftRef
		meta.Parent1, meta.Parent2 = int32(leftKey), rightLit
		parents = []cellref.Key{leftKey}
	case rightIsRef:
		meta.Opcode += opcode.OffsetRightRef
		meta.Parent1, meta.Parent2 = leftLit, int32(rightKey)
		parents = []cellref.Key{rightKey}
	}
	return Result{Meta: meta, Parents: parents}, status.Ok, true
}
