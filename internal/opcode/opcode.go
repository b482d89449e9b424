// Package opcode holds the numeric classifier scheme shared by the
// dependency graph and the formula parser/evaluator, kept separate from
// both so that neither has to import the other.
package opcode

// Code is the small integer stored in a cell's metadata record that tells
// the evaluator (and the graph) how to treat its parents.
type Code int16

// Arithmetic bases. The evaluator adds an Offset* to pick the operand
// shape; see Rem and Base.
const (
	BaseAdd Code = 10
	BaseSub Code = 20
	BaseDiv Code = 30
	BaseMul Code = 40
)

// Offsets added to an arithmetic base depending on which operand(s) are
// cell references rather than literals.
const (
	OffsetBothRefs Code = 0
	OffsetLeftRef  Code = 2
	OffsetRightRef Code = 3
)

// Ref is a plain single-cell reference: "copy the parent's value".
const Ref Code = 82

// SleepRef is SLEEP(x) where x is a cell reference. SLEEP over a literal
// needs no metadata at all: the parser sleeps once at parse time and the
// cell becomes a constant (see internal/formula).
const SleepRef Code = 92

// Range aggregate opcodes. These double as their own Rem (Rem()==Code
// since they are all below 10 after reducing, matched on the raw value).
const (
	Sum   Code = 5
	Avg   Code = 6
	Min   Code = 7
	Max   Code = 8
	Stdev Code = 9
)

// None marks "no parent" / "no metadata" using the -1 sentinel.
const None int32 = -1

// Rem returns the low decimal digit of an opcode, which selects the
// operand shape for arithmetic and range opcodes alike.
func (c Code) Rem() Code { return c % 10 }

// Base returns the high digits of an opcode (its arithmetic family, or
// the sleep/ref "msb" used to disambiguate Rem()==2 between a plain left-ref
// add/sub/mul/div and a sleep-over-ref).
func (c Code) Base() Code { return c / 10 }

// IsRangeAggregate reports whether c is one of Sum/Avg/Min/Max/Stdev.
func (c Code) IsRangeAggregate() bool {
	switch c {
	case Sum, Avg, Min, Max, Stdev:
		return true
	}
	return false
}

// IsArith reports whether c is a binary-arithmetic opcode (add/sub/mul/div
// with any ref/literal offset).
func (c Code) IsArith() bool {
	switch c.Base() {
	case BaseAdd / 10, BaseSub / 10, BaseDiv / 10, BaseMul / 10:
		return c.Rem() == OffsetBothRefs || c.Rem() == OffsetLeftRef || c.Rem() == OffsetRightRef
	}
	return false
}

// IsRef reports whether c is a plain reference copy.
func (c Code) IsRef() bool { return c == Ref }

// IsSleepRef reports whether c is SLEEP over a cell reference.
func (c Code) IsSleepRef() bool { return c == SleepRef }

// ArithOp identifies which of + - * / an arithmetic base encodes.
type ArithOp byte

const (
	OpAdd ArithOp = '+'
	OpSub ArithOp = '-'
	OpMul ArithOp = '*'
	OpDiv ArithOp = '/'
)

// ArithBase maps an operator byte to its base opcode value.
func ArithBase(op ArithOp) Code {
	switch op {
	case OpAdd:
		return BaseAdd
	case OpSub:
		return BaseSub
	case OpMul:
		return BaseMul
	case OpDiv:
		return BaseDiv
	}
	return 0
}

// ArithOpOf returns the operator a base opcode encodes, and ok=false if c
// is not one of the four recognized bases.
func ArithOpOf(base Code) (ArithOp, bool) {
	switch base {
	case BaseAdd:
		return OpAdd, true
	case BaseSub:
		return OpSub, true
	case BaseMul:
		return OpMul, true
	case BaseDiv:
		return OpDiv, true
	}
	return 0, false
}
