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

// Block is a straight-line sequence of instructions, stored as an
// append-only arena. Instructions are never removed from the arena, folded
// ones just become pass-throughs.
type Block struct {
    ins []*Inst
}

func NewBlock() *Block {
    return new(Block)
}

// Append validates the operands against the opcode descriptor table, wires
// up use counts, and attaches carry pseudo-ops to their primary.
func (self *Block) Append(op Opcode, args ...Value) *Inst {
    desc := &_OpcodeTab[op]
    want := len(desc.args)

    /* check the argument count */
    if len(args) != want {
        panic(fmt.Sprintf("ir: invalid number of arguments for %s: %d", op, len(args)))
    }

    /* check the argument types */
    for i, v := range args {
        if tt := desc.args[i]; tt != _T_any && v.Type() != tt {
            panic(fmt.Sprintf("ir: invalid type of argument %d for %s: %s", i, op, v.Type()))
        }
    }

    /* build the instruction */
    p := &Inst {
        op   : op,
        seq  : len(self.ins),
        args : args,
    }

    /* account for every place it is consumed */
    for _, v := range args {
        retain(v)
    }

    /* carry extraction attaches to the instruction it reads from */
    if op == GetCarryFromOp {
        q := args[0].Inst()
        if q.carry != nil {
            panic(fmt.Sprintf("ir: duplicate carry pseudo-op on %s", q.op))
        }
        q.carry = p
    }

    self.ins = append(self.ins, p)
    return p
}

func (self *Block) NumInsts() int {
    return len(self.ins)
}

func (self *Block) InstAt(i int) *Inst {
    return self.ins[i]
}

// Insts exposes the arena in program order.
func (self *Block) Insts() []*Inst {
    return self.ins
}

func (self *Block) String() string {
    nb := len(self.ins)
    buf := make([]string, 0, nb)

    /* dump every instruction */
    for _, p := range self.ins {
        buf = append(buf, "  " + p.String())
    }

    /* join them together */
    return fmt.Sprintf(
        "block {\n%s\n}",
        strings.Join(buf, "\n"),
    )
}
