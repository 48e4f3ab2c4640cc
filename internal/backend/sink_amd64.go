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

package backend

import (
    `github.com/C113293EBC5A43AE99DEA56C40CEE2A6/dynarmic/internal/abi`
    `github.com/chenzhuoyu/iasm/x86_64`
    `github.com/klauspost/cpuid/v2`
)

const (
    _SlotSize = 16 // one spill slot fits a full vector register
)

var (
    hasAVX = cpuid.CPU.Has(cpuid.AVX)
)

// Assembler is the production CodeSink. Spill slots live in the JIT state
// block addressed off R15, each slot 16 bytes so vector values spill
// without a second slot class.
type Assembler struct {
    p    *x86_64.Program
    offs int32
}

func NewAssembler(p *x86_64.Program, spillOffs int32) *Assembler {
    return &Assembler {
        p    : p,
        offs : spillOffs,
    }
}

func (self *Assembler) slot(loc abi.HostLoc) *x86_64.MemoryOperand {
    return x86_64.Ptr(x86_64.R15, self.offs + int32(loc.SpillIndex()) * _SlotSize)
}

func (self *Assembler) MoveRegReg(to abi.HostLoc, from abi.HostLoc) {
    self.p.MOVQ(from.Reg64(), to.Reg64())
}

func (self *Assembler) MoveRegSpill(to abi.HostLoc, from abi.HostLoc) {
    self.p.MOVQ(self.slot(from), to.Reg64())
}

func (self *Assembler) MoveSpillReg(to abi.HostLoc, from abi.HostLoc) {
    self.p.MOVQ(from.Reg64(), self.slot(to))
}

func (self *Assembler) MoveVecVec(to abi.HostLoc, from abi.HostLoc) {
    if hasAVX {
        self.p.VMOVDQU(from.XMM(), to.XMM())
    } else {
        self.p.MOVDQU(from.XMM(), to.XMM())
    }
}

func (self *Assembler) MoveVecSpill(to abi.HostLoc, from abi.HostLoc) {
    if hasAVX {
        self.p.VMOVDQU(self.slot(from), to.XMM())
    } else {
        self.p.MOVDQU(self.slot(from), to.XMM())
    }
}

func (self *Assembler) MoveSpillVec(to abi.HostLoc, from abi.HostLoc) {
    if hasAVX {
        self.p.VMOVDQU(from.XMM(), self.slot(to))
    } else {
        self.p.MOVDQU(from.XMM(), self.slot(to))
    }
}

func (self *Assembler) Exchange(a abi.HostLoc, b abi.HostLoc) {
    self.p.XCHGQ(a.Reg64(), b.Reg64())
}

func (self *Assembler) LoadImmediate(r abi.HostLoc, v uint64) {
    if v == 0 {
        self.p.XORL(x86_64.Register32(r.Reg64()), x86_64.Register32(r.Reg64()))
    } else {
        self.p.MOVQ(int64(v), r.Reg64())
    }
}
