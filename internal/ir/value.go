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
    `fmt`
)

// Value is one argument slot of an instruction: either empty, an immediate
// of a specific width, or a reference to an instruction defined earlier in
// the same block.
//
// A Value obtained from Inst.Arg() is always fully resolved: if the
// referenced instruction has been replaced, the replacement is observed
// instead.
type Value struct {
    t Type
    v uint64
    p *Inst
}

// None is the empty argument slot.
var None = Value{}

func Imm1(v bool) Value {
    if v {
        return Value { t: U1, v: 1 }
    } else {
        return Value { t: U1, v: 0 }
    }
}

func Imm8(v uint8) Value {
    return Value { t: U8, v: uint64(v) }
}

func Imm16(v uint16) Value {
    return Value { t: U16, v: uint64(v) }
}

func Imm32(v uint32) Value {
    return Value { t: U32, v: uint64(v) }
}

func Imm64(v uint64) Value {
    return Value { t: U64, v: v }
}

// InstValue wraps an instruction as an argument value.
func InstValue(p *Inst) Value {
    if p == nil {
        panic("ir: nil instruction reference")
    } else {
        return Value { p: p }
    }
}

// resolve chases replacement pointers until it reaches either an immediate
// or an instruction that has not been replaced. Replacement is monotonic,
// so this terminates.
func (self Value) resolve() Value {
    for self.p != nil && self.p.repl != nil {
        self = *self.p.repl
    }
    return self
}

func (self Value) IsEmpty() bool {
    return self.p == nil && self.t == Void
}

func (self Value) IsImmediate() bool {
    return self.p == nil && self.t != Void
}

func (self Value) IsInst() bool {
    return self.p != nil
}

// Inst returns the referenced instruction.
func (self Value) Inst() *Inst {
    if self.p == nil {
        panic("ir: value is not an instruction reference")
    } else {
        return self.p
    }
}

// Type reports the value type: the immediate's own type, or the result
// type of the referenced instruction.
func (self Value) Type() Type {
    if self.p != nil {
        return self.p.Type()
    } else {
        return self.t
    }
}

func (self Value) IsZero() bool {
    return self.IsImmediate() && self.v & self.t.Mask() == 0
}

// HasAllBitsSet checks that every meaningful bit of the immediate is set.
func (self Value) HasAllBitsSet() bool {
    return self.IsImmediate() && self.v & self.t.Mask() == self.t.Mask()
}

func (self Value) IsUnsignedImmediate(v uint64) bool {
    return self.IsImmediate() && self.v & self.t.Mask() == v
}

// AsU64 reads the immediate zero-extended to 64 bits.
func (self Value) AsU64() uint64 {
    if !self.IsImmediate() {
        panic("ir: value is not an immediate")
    } else {
        return self.v & self.t.Mask()
    }
}

// AsS64 reads the immediate sign-extended from its own width to 64 bits.
func (self Value) AsS64() int64 {
    if !self.IsImmediate() {
        panic("ir: value is not an immediate")
    } else if nb := self.t.Bits(); nb == 64 {
        return int64(self.v)
    } else {
        return int64(self.v & self.t.Mask()) << (64 - nb) >> (64 - nb)
    }
}

func (self Value) String() string {
    if self.IsEmpty() {
        return "_"
    } else if self.p != nil {
        return fmt.Sprintf("%%%d", self.p.seq)
    } else {
        return fmt.Sprintf("%s $%#x", self.t, self.v & self.t.Mask())
    }
}
