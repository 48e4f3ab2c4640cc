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
    `strings`
)

// Inst is a single SSA instruction. It is owned by the Block arena it was
// appended to, and stays physically present even after being folded away:
// replacement is a forwarding pointer, not a removal.
type Inst struct {
    op    Opcode
    seq   int
    args  []Value
    uses  int32
    carry *Inst
    repl  *Value
}

func (self *Inst) Opcode() Opcode {
    return self.op
}

func (self *Inst) Type() Type {
    return self.op.Type()
}

func (self *Inst) NumArgs() int {
    return len(self.args)
}

// Arg reads one argument slot, observing the latest replacement of any
// instruction referenced through it.
func (self *Inst) Arg(i int) Value {
    if i < 0 || i >= len(self.args) {
        panic(fmt.Sprintf("ir: argument index out of range for %s: %d", self.op, i))
    } else {
        return self.args[i].resolve()
    }
}

// SetArg rewrites one argument slot, keeping use counts balanced.
func (self *Inst) SetArg(i int, v Value) {
    if i < 0 || i >= len(self.args) {
        panic(fmt.Sprintf("ir: argument index out of range for %s: %d", self.op, i))
    } else {
        release(self.args[i])
        retain(v)
        self.args[i] = v
    }
}

// AreAllArgsImmediates also accounts for replacements: a folded operand
// reads as its immediate replacement.
func (self *Inst) AreAllArgsImmediates() bool {
    for i := range self.args {
        if !self.args[i].resolve().IsImmediate() {
            return false
        }
    }
    return true
}

func (self *Inst) UseCount() int {
    return int(self.uses)
}

func (self *Inst) HasUses() bool {
    return self.uses > 0
}

// DecUses consumes one outstanding use of this instruction.
func (self *Inst) DecUses() {
    if self.uses <= 0 {
        panic(fmt.Sprintf("ir: use count underflow on %s", self.op))
    } else {
        self.uses--
    }
}

// Carry returns the associated carry-extraction pseudo-op, or nil if there
// is none or it has already been replaced.
func (self *Inst) Carry() *Inst {
    if self.carry != nil && self.carry.repl == nil {
        return self.carry
    } else {
        return nil
    }
}

func (self *Inst) Replaced() bool {
    return self.repl != nil
}

// Replacement returns the fully resolved forwarding value, if any.
func (self *Inst) Replacement() (Value, bool) {
    if self.repl == nil {
        return None, false
    } else {
        return self.repl.resolve(), true
    }
}

// ReplaceUsesWith forwards all future argument reads through this
// instruction to v. Replacement is monotonic: an instruction is replaced
// at most once, after which it is a pure pass-through.
//
// Outstanding uses migrate to the replacement target so that use counts
// stay conserved, and the arguments of the replaced instruction are
// released since it will never be emitted.
func (self *Inst) ReplaceUsesWith(v Value) {
    if self.repl != nil {
        panic(fmt.Sprintf("ir: instruction already replaced: %s", self.op))
    }

    /* the replaced instruction will not consume its operands anymore */
    for i := range self.args {
        release(self.args[i])
    }

    /* migrate the remaining uses onto the target */
    if v = v.resolve(); v.p != nil {
        v.p.uses += self.uses
        self.uses = 0
    }

    self.repl = &v
}

func (self *Inst) String() string {
    nb := len(self.args)
    buf := make([]string, 0, nb)

    /* dump the arguments */
    for i := range self.args {
        buf = append(buf, self.args[i].resolve().String())
    }

    /* folded instructions read as their replacement */
    if self.repl != nil {
        return fmt.Sprintf("%%%d = %s ; replaced by %s", self.seq, self.op, self.repl.resolve())
    }

    /* join them together */
    return fmt.Sprintf(
        "%%%d = %s %s",
        self.seq,
        self.op,
        strings.Join(buf, ", "),
    )
}

func retain(v Value) {
    if v = v.resolve(); v.p != nil {
        v.p.uses++
    }
}

func release(v Value) {
    if v = v.resolve(); v.p != nil {
        v.p.DecUses()
    }
}
