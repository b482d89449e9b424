// Package formula implements the formula parser and evaluator: the
// classifier that turns an expression string into an opcode and parents,
// and the evaluator that turns an opcode and parents back into a value.
package formula

import (
	"math"
	"time"

	"github.com/arjunmenon/termsheet/internal/cellref"
	"github.com/arjunmenon/termsheet/internal/gridstore"
	"github.com/arjunmenon/termsheet/internal/opcode"
)

// Sleeper is injected so tests can avoid real wall-clock blocking.
type Sleeper interface {
	Sleep(seconds int32)
}

// WallSleeper blocks for real wall-clock time.
type WallSleeper struct{}

func (WallSleeper) Sleep(seconds int32) {
	if seconds <= 0 {
		return
	}
	time.Sleep(time.Duration(seconds) * time.Second)
}

// applyArith performs one of + - * / over two int32 operands with
// two's-complement wraparound (Go's native behavior for int32, no special
// handling needed) and integer division truncating toward zero (Go's
// native behavior too). Division by zero yields Error.
func applyArith(op opcode.ArithOp, a, b int32) gridstore.Value {
	switch op {
	case opcode.OpAdd:
		return gridstore.OK(a + b)
	case opcode.OpSub:
		return gridstore.OK(a - b)
	case opcode.OpMul:
		return gridstore.OK(a * b)
	case opcode.OpDiv:
		if b == 0 {
			return gridstore.ErrValue
		}
		return gridstore.OK(a / b)
	}
	return gridstore.ErrValue
}

// Evaluator computes a cell's value from its opcode and parents, reading
// current inputs from the store.
type Evaluator struct {
	Store   *gridstore.Store
	Sleeper Sleeper
}

// NewEvaluator builds an Evaluator backed by store, sleeping for real.
func NewEvaluator(store *gridstore.Store) *Evaluator {
	return &Evaluator{Store: store, Sleeper: WallSleeper{}}
}

// Evaluate computes the value a formula cell should hold given its
// metadata. It never mutates the store itself; the caller is responsible
// for writing the result back.
func (e *Evaluator) Evaluate(m gridstore.Metadata) gridstore.Value {
	c := m.Opcode
	switch {
	case c.IsRef():
		return e.Store.GetKey(cellref.Key(m.Parent1))
	case c.IsSleepRef():
		parent := e.Store.GetKey(cellref.Key(m.Parent1))
		if parent.Err {
			return gridstore.ErrValue
		}
		e.Sleeper.Sleep(parent.N)
		return gridstore.OK(parent.N)
	case c.IsArith():
		return e.evalArith(m)
	case c.IsRangeAggregate():
		return e.evalAggregate(m)
	}
	return gridstore.ErrValue
}

// evalArith resolves the two operands per the opcode's offset (which
// side, if any, is a cell reference) and applies the operator.
func (e *Evaluator) evalArith(m gridstore.Metadata) gridstore.Value {
	op, ok := opcode.ArithOpOf(m.Opcode.Base() * 10)
	if !ok {
		return gridstore.ErrValue
	}

	left, leftErr := e.operand(m.Parent1, m.Opcode.Rem() == opcode.OffsetBothRefs || m.Opcode.Rem() == opcode.OffsetLeftRef)
	if leftErr {
		return gridstore.ErrValue
	}
	right, rightErr := e.operand(m.Parent2, m.Opcode.Rem() == opcode.OffsetBothRefs || m.Opcode.Rem() == opcode.OffsetRightRef)
	if rightErr {
		return gridstore.ErrValue
	}
	return applyArith(op, left, right)
}

// operand resolves one arithmetic operand: if isRef, slot holds a cell
// key and the current value is fetched (propagating Error); otherwise
// slot already holds the literal value directly.
func (e *Evaluator) operand(slot int32, isRef bool) (value int32, isError bool) {
	if !isRef {
		return slot, false
	}
	v := e.Store.GetKey(cellref.Key(slot))
	if v.Err {
		return 0, true
	}
	return v.N, false
}

// evalAggregate computes SUM/AVG/MIN/MAX/STDEV over the inclusive
// rectangle [Parent1, Parent2].
func (e *Evaluator) evalAggregate(m gridstore.Metadata) gridstore.Value {
	cols := e.Store.Cols()
	sr, sc := cellref.Unpack(cellref.Key(m.Parent1), cols)
	er, ec := cellref.Unpack(cellref.Key(m.Parent2), cols)

	count := int64(0)
	var sum int64
	var min, max int32
	first := true
	for r := sr; r <= er; r++ {
		for c := sc; c <= ec; c++ {
			v := e.Store.Get(r, c)
			if v.Err {
				return gridstore.ErrValue
			}
			sum += int64(v.N)
			if first {
				min, max = v.N, v.N
				first = false
			} else {
				if v.N < min {
					min = v.N
				}
				if v.N > max {
					max = v.N
				}
			}
			count++
		}
	}
	if count == 0 {
		return gridstore.ErrValue
	}

	switch m.Opcode {
	case opcode.Sum:
		return gridstore.OK(int32(sum))
	case opcode.Avg:
		return gridstore.OK(int32(sum / count))
	case opcode.Min:
		return gridstore.OK(min)
	case opcode.Max:
		return gridstore.OK(max)
	case opcode.Stdev:
		mean := int32(sum / count)
		var sq float64
		for r := sr; r <= er; r++ {
			for c := sc; c <= ec; c++ {
				d := float64(e.Store.Get(r, c).N - mean)
				sq += d * d
			}
		}
		variance := sq / float64(count)
		return gridstore.OK(int32(roundHalfAwayFromZero(math.Sqrt(variance))))
	}
	return gridstore.ErrValue
}

// roundHalfAwayFromZero matches math.Round's own tie-breaking, which is
// the rounding rule STDEV uses when converting back to an integer.
func roundHalfAwayFromZero(f float64) float64 {
	return math.Round(f)
}
