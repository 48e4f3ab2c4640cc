/*
 * Copyright 2023 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ir

import (
    `math/bits`
)

// ConstProp folds immediate-only computations and applies algebraic
// identities, one forward visit per block. Folded instructions are
// forwarded with ReplaceUsesWith, never removed.
type ConstProp struct{}

/* packages a W-bit result as an immediate of the matching width */
func narrow(is32 bool, v uint64) Value {
    if is32 {
        return Imm32(uint32(v))
    } else {
        return Imm64(v)
    }
}

// foldCommutative handles the shared shape of AND / OR / EOR / MUL:
// immediate-only folding, operand normalization so the immediate sits in
// the right slot, and one-level reassociation over a same-opcode chain.
// It reports whether the per-operator identities still need to run.
func (ConstProp) foldCommutative(p *Inst, is32 bool, fn func(uint64, uint64) uint64) bool {
    lhs := p.Arg(0)
    rhs := p.Arg(1)

    /* both immediates, evaluate directly */
    if lhs.IsImmediate() && rhs.IsImmediate() {
        p.ReplaceUsesWith(narrow(is32, fn(lhs.AsU64(), rhs.AsU64())))
        return false
    }

    /* immediate on the left: either reassociate into a same-opcode chain
     * ending in an immediate, or swap the operands into canonical order */
    if lhs.IsImmediate() && !rhs.IsImmediate() {
        if q := rhs.Inst(); q.Opcode() == p.Opcode() && q.Arg(1).IsImmediate() {
            p.SetArg(0, q.Arg(0))
            p.SetArg(1, narrow(is32, fn(lhs.AsU64(), q.Arg(1).AsU64())))
        } else {
            p.SetArg(0, rhs)
            p.SetArg(1, lhs)
        }
    }

    /* immediate on the right: reassociate only */
    if !lhs.IsImmediate() && rhs.IsImmediate() {
        if q := lhs.Inst(); q.Opcode() == p.Opcode() && q.Arg(1).IsImmediate() {
            p.SetArg(0, q.Arg(0))
            p.SetArg(1, narrow(is32, fn(rhs.AsU64(), q.Arg(1).AsU64())))
        }
    }

    return true
}

// foldAND folds AND operations based on the following:
//
//   1. imm_x & imm_y -> result
//   2. x & 0 -> 0
//   3. x & y -> x (where y has all bits set to 1)
//
func (self ConstProp) foldAND(p *Inst, is32 bool) {
    if self.foldCommutative(p, is32, func(a uint64, b uint64) uint64 { return a & b }) {
        if rhs := p.Arg(1); rhs.IsZero() {
            p.ReplaceUsesWith(narrow(is32, 0))
        } else if rhs.HasAllBitsSet() {
            p.ReplaceUsesWith(p.Arg(0))
        }
    }
}

// foldOR folds OR operations based on the following:
//
//   1. imm_x | imm_y -> result
//   2. x | 0 -> x
//
func (self ConstProp) foldOR(p *Inst, is32 bool) {
    if self.foldCommutative(p, is32, func(a uint64, b uint64) uint64 { return a | b }) {
        if p.Arg(1).IsZero() {
            p.ReplaceUsesWith(p.Arg(0))
        }
    }
}

// foldEOR folds EOR operations based on the following:
//
//   1. imm_x ^ imm_y -> result
//   2. x ^ 0 -> x
//
func (self ConstProp) foldEOR(p *Inst, is32 bool) {
    if self.foldCommutative(p, is32, func(a uint64, b uint64) uint64 { return a ^ b }) {
        if p.Arg(1).IsZero() {
            p.ReplaceUsesWith(p.Arg(0))
        }
    }
}

// foldMultiply folds MUL operations based on the following:
//
//   1. imm_x * imm_y -> result
//   2. x * 0 -> 0
//   3. x * 1 -> x
//
func (self ConstProp) foldMultiply(p *Inst, is32 bool) {
    if self.foldCommutative(p, is32, func(a uint64, b uint64) uint64 { return a * b }) {
        if rhs := p.Arg(1); rhs.IsZero() {
            p.ReplaceUsesWith(narrow(is32, 0))
        } else if rhs.IsUnsignedImmediate(1) {
            p.ReplaceUsesWith(p.Arg(0))
        }
    }
}

// foldNOT folds NOT operations if the operand is an immediate.
func (ConstProp) foldNOT(p *Inst, is32 bool) {
    if v := p.Arg(0); v.IsImmediate() {
        p.ReplaceUsesWith(narrow(is32, ^v.AsU64()))
    }
}

// foldDivide folds division operations based on the following:
//
//   1. x / 0 -> 0 (the guest architecture defines division by zero to
//      yield zero, it never traps)
//   2. imm_x / imm_y -> result
//   3. x / 1 -> x
//
func (ConstProp) foldDivide(p *Inst, is32 bool, signed bool) {
    rhs := p.Arg(1)

    /* guest semantics, not a trap */
    if rhs.IsZero() {
        p.ReplaceUsesWith(narrow(is32, 0))
        return
    }

    /* evaluate or strip the trivial divisor */
    if lhs := p.Arg(0); lhs.IsImmediate() && rhs.IsImmediate() {
        if signed {
            p.ReplaceUsesWith(narrow(is32, uint64(lhs.AsS64() / rhs.AsS64())))
        } else {
            p.ReplaceUsesWith(narrow(is32, lhs.AsU64() / rhs.AsU64()))
        }
    } else if rhs.IsUnsignedImmediate(1) {
        p.ReplaceUsesWith(lhs)
    }
}

// foldShifts only handles the carry plumbing: a dead carry-in argument is
// cleared to false when nothing consumes the produced carry, and a shift
// by an immediate zero passes both operand and carry-in straight through.
// Everything else stays for the backend to lower.
func (ConstProp) foldShifts(p *Inst) {
    carry := p.Carry()

    /* the 32-bit variants carry 3 arguments, the 64-bit ones only 2 */
    if p.NumArgs() == 3 && carry == nil {
        p.SetArg(2, Imm1(false))
    }

    /* only a zero shift amount folds */
    if !p.Arg(1).IsZero() {
        return
    }

    /* the carry out of a zero shift is the carry in */
    if carry != nil {
        carry.ReplaceUsesWith(p.Arg(2))
    }
    p.ReplaceUsesWith(p.Arg(0))
}

func (ConstProp) foldLeastSignificantByte(p *Inst) {
    if p.AreAllArgsImmediates() {
        p.ReplaceUsesWith(Imm8(uint8(p.Arg(0).AsU64())))
    }
}

func (ConstProp) foldLeastSignificantHalf(p *Inst) {
    if p.AreAllArgsImmediates() {
        p.ReplaceUsesWith(Imm16(uint16(p.Arg(0).AsU64())))
    }
}

func (ConstProp) foldLeastSignificantWord(p *Inst) {
    if p.AreAllArgsImmediates() {
        p.ReplaceUsesWith(Imm32(uint32(p.Arg(0).AsU64())))
    }
}

func (ConstProp) foldMostSignificantBit(p *Inst) {
    if p.AreAllArgsImmediates() {
        p.ReplaceUsesWith(Imm1(p.Arg(0).AsU64() >> 31 != 0))
    }
}

// foldMostSignificantWord extracts the high half, and rewrites any carry
// consumer to the top bit of the extracted word.
func (ConstProp) foldMostSignificantWord(p *Inst) {
    carry := p.Carry()

    if !p.AreAllArgsImmediates() {
        return
    }

    v := p.Arg(0).AsU64()
    if carry != nil {
        carry.ReplaceUsesWith(Imm1(v >> 63 != 0))
    }
    p.ReplaceUsesWith(Imm32(uint32(v >> 32)))
}

func (ConstProp) foldSignExtendToWord(p *Inst) {
    if p.AreAllArgsImmediates() {
        p.ReplaceUsesWith(Imm32(uint32(p.Arg(0).AsS64())))
    }
}

func (ConstProp) foldSignExtendToLong(p *Inst) {
    if p.AreAllArgsImmediates() {
        p.ReplaceUsesWith(Imm64(uint64(p.Arg(0).AsS64())))
    }
}

func (ConstProp) foldZeroExtendToWord(p *Inst) {
    if p.AreAllArgsImmediates() {
        p.ReplaceUsesWith(Imm32(uint32(p.Arg(0).AsU64())))
    }
}

func (ConstProp) foldZeroExtendToLong(p *Inst) {
    if p.AreAllArgsImmediates() {
        p.ReplaceUsesWith(Imm64(p.Arg(0).AsU64()))
    }
}

func (ConstProp) foldByteReverse(p *Inst, op Opcode) {
    if v := p.Arg(0); v.IsImmediate() {
        switch op {
            case ByteReverseHalf : p.ReplaceUsesWith(Imm16(bits.ReverseBytes16(uint16(v.AsU64()))))
            case ByteReverseWord : p.ReplaceUsesWith(Imm32(bits.ReverseBytes32(uint32(v.AsU64()))))
            default              : p.ReplaceUsesWith(Imm64(bits.ReverseBytes64(v.AsU64())))
        }
    }
}

// Apply visits every instruction exactly once, in program order.
func (self ConstProp) Apply(bb *Block) {
    for _, p := range bb.Insts() {
        if !p.Replaced() {
            self.fold(p)
        }
    }
}

func (self ConstProp) fold(p *Inst) {
    switch op := p.Opcode(); op {
        default: {
            /* not a foldable opcode */
        }

        /* bitwise, arithmetic */
        case And32, And64                 : self.foldAND(p, op == And32)
        case Or32, Or64                   : self.foldOR(p, op == Or32)
        case Eor32, Eor64                 : self.foldEOR(p, op == Eor32)
        case Not32, Not64                 : self.foldNOT(p, op == Not32)
        case Mul32, Mul64                 : self.foldMultiply(p, op == Mul32)
        case SignedDiv32, SignedDiv64     : self.foldDivide(p, op == SignedDiv32, true)
        case UnsignedDiv32, UnsignedDiv64 : self.foldDivide(p, op == UnsignedDiv32, false)

        /* shifts and rotates */
        case LogicalShiftLeft32     , LogicalShiftLeft64     : self.foldShifts(p)
        case LogicalShiftRight32    , LogicalShiftRight64    : self.foldShifts(p)
        case ArithmeticShiftRight32 , ArithmeticShiftRight64 : self.foldShifts(p)
        case RotateRight32          , RotateRight64          : self.foldShifts(p)

        /* narrowing extractions */
        case LeastSignificantByte : self.foldLeastSignificantByte(p)
        case LeastSignificantHalf : self.foldLeastSignificantHalf(p)
        case LeastSignificantWord : self.foldLeastSignificantWord(p)
        case MostSignificantBit   : self.foldMostSignificantBit(p)
        case MostSignificantWord  : self.foldMostSignificantWord(p)

        /* extensions */
        case SignExtendByteToWord, SignExtendHalfToWord                       : self.foldSignExtendToWord(p)
        case SignExtendByteToLong, SignExtendHalfToLong, SignExtendWordToLong : self.foldSignExtendToLong(p)
        case ZeroExtendByteToWord, ZeroExtendHalfToWord                       : self.foldZeroExtendToWord(p)
        case ZeroExtendByteToLong, ZeroExtendHalfToLong, ZeroExtendWordToLong : self.foldZeroExtendToLong(p)

        /* byte reversals */
        case ByteReverseHalf, ByteReverseWord, ByteReverseDual : self.foldByteReverse(p, op)
    }
}
