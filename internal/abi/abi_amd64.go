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

package abi

import (
    `fmt`

    `github.com/chenzhuoyu/iasm/x86_64`
)

// HostLoc identifies one place a value can live on the host: a general
// purpose register, a vector register, or a numbered spill slot.
type HostLoc uint8

const (
    RAX HostLoc = iota
    RCX
    RDX
    RBX
    RSP
    RBP
    RSI
    RDI
    R8
    R9
    R10
    R11
    R12
    R13
    R14
    R15
    XMM0
    XMM1
    XMM2
    XMM3
    XMM4
    XMM5
    XMM6
    XMM7
    XMM8
    XMM9
    XMM10
    XMM11
    XMM12
    XMM13
    XMM14
    XMM15
    _L_spill
)

var _Reg64Tab = [16]x86_64.Register64 {
    x86_64.RAX, x86_64.RCX, x86_64.RDX, x86_64.RBX,
    x86_64.RSP, x86_64.RBP, x86_64.RSI, x86_64.RDI,
    x86_64.R8 , x86_64.R9 , x86_64.R10, x86_64.R11,
    x86_64.R12, x86_64.R13, x86_64.R14, x86_64.R15,
}

var _XMMTab = [16]x86_64.XMMRegister {
    x86_64.XMM0 , x86_64.XMM1 , x86_64.XMM2 , x86_64.XMM3,
    x86_64.XMM4 , x86_64.XMM5 , x86_64.XMM6 , x86_64.XMM7,
    x86_64.XMM8 , x86_64.XMM9 , x86_64.XMM10, x86_64.XMM11,
    x86_64.XMM12, x86_64.XMM13, x86_64.XMM14, x86_64.XMM15,
}

// Spill addresses spill slot i as a HostLoc.
func Spill(i int) HostLoc {
    if i < 0 || i > int(0xff - _L_spill) {
        panic(fmt.Sprintf("abi: spill slot out of range: %d", i))
    } else {
        return _L_spill + HostLoc(i)
    }
}

func (self HostLoc) IsGPR() bool {
    return self < XMM0
}

func (self HostLoc) IsXMM() bool {
    return self >= XMM0 && self < _L_spill
}

func (self HostLoc) IsRegister() bool {
    return self < _L_spill
}

func (self HostLoc) IsSpill() bool {
    return self >= _L_spill
}

func (self HostLoc) SpillIndex() int {
    if !self.IsSpill() {
        panic("abi: host location is not a spill slot")
    } else {
        return int(self - _L_spill)
    }
}

// Reg64 converts a GPR location to its assembler register.
func (self HostLoc) Reg64() x86_64.Register64 {
    if !self.IsGPR() {
        panic("abi: host location is not a general purpose register")
    } else {
        return _Reg64Tab[self]
    }
}

// XMM converts a vector location to its assembler register.
func (self HostLoc) XMM() x86_64.XMMRegister {
    if !self.IsXMM() {
        panic("abi: host location is not a vector register")
    } else {
        return _XMMTab[self - XMM0]
    }
}

func (self HostLoc) String() string {
    switch {
        case self.IsGPR()   : return self.Reg64().String()
        case self.IsXMM()   : return self.XMM().String()
        default             : return fmt.Sprintf("spill[%d]", self.SpillIndex())
    }
}

// ABI configures the allocator for one host calling convention. The
// preference orders put callee-saved registers first so short-lived values
// avoid the registers a host call would sweep.
type ABI struct {
    GPRs        []HostLoc
    XMMs        []HostLoc
    Args        []HostLoc
    Ret         HostLoc
    CallerSaved []HostLoc
    SpillSlots  int
}

// SystemV is the System V AMD64 calling convention. RSP is the host stack
// pointer and R15 holds the JIT state pointer, neither is allocatable.
// RBP is kept for the host frame chain.
func SystemV() *ABI {
    return &ABI {
        Ret  : RAX,
        Args : []HostLoc { RDI, RSI, RDX, RCX },
        GPRs : []HostLoc {
            RBX, R12, R13, R14,
            RAX, RCX, RDX, RSI, RDI, R8, R9, R10, R11,
        },
        XMMs : []HostLoc {
            XMM0 , XMM1 , XMM2 , XMM3 , XMM4 , XMM5 , XMM6 , XMM7,
            XMM8 , XMM9 , XMM10, XMM11, XMM12, XMM13, XMM14, XMM15,
        },
        CallerSaved : []HostLoc {
            RAX, RCX, RDX, RSI, RDI, R8, R9, R10, R11,
            XMM0 , XMM1 , XMM2 , XMM3 , XMM4 , XMM5 , XMM6 , XMM7,
            XMM8 , XMM9 , XMM10, XMM11, XMM12, XMM13, XMM14, XMM15,
        },
    }
}
