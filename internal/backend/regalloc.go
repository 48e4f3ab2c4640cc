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
    `fmt`

    `github.com/C113293EBC5A43AE99DEA56C40CEE2A6/dynarmic/internal/abi`
    `github.com/C113293EBC5A43AE99DEA56C40CEE2A6/dynarmic/internal/ir`
    `github.com/C113293EBC5A43AE99DEA56C40CEE2A6/dynarmic/internal/opts`
    `github.com/davecgh/go-spew/spew`
)

// OpArg is an operand the emitter can consume directly: either a host
// register or a spill slot read as memory.
type OpArg struct {
    loc abi.HostLoc
}

func (self OpArg) Loc() abi.HostLoc {
    return self.loc
}

func (self OpArg) IsMem() bool {
    return self.loc.IsSpill()
}

func (self OpArg) String() string {
    return self.loc.String()
}

// RegAlloc maps IR values onto host locations one instruction at a time.
// Between operations every live value has exactly one home and no location
// is locked; within an operation the emitter requests operands and the
// allocator emits whatever moves, exchanges and spills are needed to
// satisfy them.
//
// Every failure mode here is a bug in the emitter driving the allocator,
// so they all panic.
type RegAlloc struct {
    code CodeSink
    abi  *abi.ABI
    opts opts.Options
    info []LocInfo
}

func NewRegAlloc(code CodeSink, a *abi.ABI) *RegAlloc {
    return NewRegAllocOpts(code, a, opts.GetDefaultOptions())
}

func NewRegAllocOpts(code CodeSink, a *abi.ABI, o opts.Options) *RegAlloc {
    slots := a.SpillSlots

    /* fall back to the configured default */
    if slots <= 0 {
        slots = o.MaxSpillSlots()
    }

    /* the table covers registers and spill slots alike */
    return &RegAlloc {
        code : code,
        abi  : a,
        opts : o,
        info : make([]LocInfo, int(abi.Spill(0)) + slots),
    }
}

func (self *RegAlloc) locInfo(loc abi.HostLoc) *LocInfo {
    if int(loc) >= len(self.info) {
        panic(fmt.Sprintf("regalloc: invalid host location: %s", loc))
    } else {
        return &self.info[loc]
    }
}

/** Public Interface **/

// Use materializes v as a register or spill-memory operand and locks it
// for the current operation.
func (self *RegAlloc) Use(v ir.Value, desired []abi.HostLoc) OpArg {
    if v.IsImmediate() {
        return OpArg { self.loadImmediate(v, self.ScratchReg(desired)) }
    }

    p := v.Inst()
    cur := self.location(p)

    /* already somewhere acceptable, or readable from its spill slot */
    if hostLocIn(cur, desired) || cur.IsSpill() {
        self.locInfo(cur).Lock()
        p.DecUses()
        return OpArg { cur }
    }

    /* the home is locked by another operand of this operation, take a copy */
    if self.locInfo(cur).IsLocked() {
        return OpArg { self.useInstScratchReg(p, desired) }
    }

    /* swap it into an acceptable register */
    dst := self.selectARegister(desired)
    self.exchange(dst, cur)
    self.locInfo(dst).Lock()
    p.DecUses()
    return OpArg { dst }
}

// UseReg is Use constrained to produce a register.
func (self *RegAlloc) UseReg(v ir.Value, desired []abi.HostLoc) abi.HostLoc {
    if v.IsImmediate() {
        return self.loadImmediate(v, self.ScratchReg(desired))
    } else {
        return self.useInstReg(v.Inst(), desired)
    }
}

// UseScratchReg reads v into a register the operation may clobber. The
// binding of v is preserved elsewhere if it still has uses.
func (self *RegAlloc) UseScratchReg(v ir.Value, desired []abi.HostLoc) abi.HostLoc {
    if v.IsImmediate() {
        return self.loadImmediate(v, self.ScratchReg(desired))
    } else {
        return self.useInstScratchReg(v.Inst(), desired)
    }
}

// ScratchReg claims a register for writing, spilling whatever lived there.
func (self *RegAlloc) ScratchReg(desired []abi.HostLoc) abi.HostLoc {
    loc := self.selectARegister(desired)

    /* evict the previous occupant */
    if self.locInfo(loc).IsOccupied() {
        self.spillRegister(loc)
    }

    self.locInfo(loc).Lock()
    return loc
}

// DefineValue binds p to a host location. Every instruction is defined
// exactly once.
func (self *RegAlloc) DefineValue(p *ir.Inst, loc abi.HostLoc) {
    if _, ok := self.valueLocation(p); ok {
        panic(fmt.Sprintf("regalloc: instruction defined twice: %s", p))
    } else {
        self.locInfo(loc).AddValue(p)
    }
}

// RegisterAddDef defines p as a pass-through of use: they share a home.
// Immediates are materialized into a fresh scratch register instead.
func (self *RegAlloc) RegisterAddDef(p *ir.Inst, use ir.Value) {
    if _, ok := self.valueLocation(p); ok {
        panic(fmt.Sprintf("regalloc: instruction defined twice: %s", p))
    }

    /* immediates get their own register */
    if use.IsImmediate() {
        loc := self.ScratchReg(self.abi.GPRs)
        self.DefineValue(p, loc)
        self.loadImmediate(use, loc)
        return
    }

    q := use.Inst()
    q.DecUses()
    self.DefineValue(p, self.location(q))
}

// UseDef produces the read operand of use and a write register for def in
// one request, for two-address host instructions. When use is at its last
// use and its home register is idle, the home is claimed for def directly,
// saving a move.
func (self *RegAlloc) UseDef(use ir.Value, def *ir.Inst, desired []abi.HostLoc) (OpArg, abi.HostLoc) {
    if _, ok := self.valueLocation(def); ok {
        panic(fmt.Sprintf("regalloc: instruction defined twice: %s", def))
    }

    /* reuse the dying value's home when possible */
    if !use.IsImmediate() {
        if p := use.Inst(); self.isLastUse(p) {
            if cur := self.location(p); self.locInfo(cur).IsIdle() {
                if cur.IsSpill() {
                    self.locInfo(cur).Lock()
                    p.DecUses()
                    dst := self.ScratchReg(desired)
                    self.DefineValue(def, dst)
                    return OpArg { cur }, dst
                } else {
                    self.locInfo(cur).Lock()
                    p.DecUses()
                    self.DefineValue(def, cur)
                    return OpArg { cur }, cur
                }
            }
        }
    }

    /* general case: read anywhere, write a fresh scratch */
    op := self.Use(use, self.abi.GPRs)
    dst := self.ScratchReg(desired)
    self.DefineValue(def, dst)
    return op, dst
}

// HostCall marshals up to len(abi.Args) argument values into the calling
// convention's argument registers, claims the return register for the
// result, and scratches the rest of the caller-saved set so everything
// live in it lands in spill slots before the call.
func (self *RegAlloc) HostCall(result *ir.Inst, args ...ir.Value) {
    if len(args) > len(self.abi.Args) {
        panic(fmt.Sprintf("regalloc: too many host call arguments: %d", len(args)))
    }

    /* the return register carries the result */
    if result != nil {
        self.DefineValue(result, self.ScratchReg([]abi.HostLoc { self.abi.Ret }))
    } else {
        self.ScratchReg([]abi.HostLoc { self.abi.Ret })
    }

    /* marshal the arguments, scratching the unused argument registers too */
    for i, loc := range self.abi.Args {
        if i < len(args) && !args[i].IsEmpty() {
            self.UseScratchReg(args[i], []abi.HostLoc { loc })
        } else {
            self.ScratchReg([]abi.HostLoc { loc })
        }
    }

    /* sweep the remaining caller-saved registers */
    for _, loc := range self.abi.CallerSaved {
        if loc != self.abi.Ret && !hostLocIn(loc, self.abi.Args) {
            self.ScratchReg([]abi.HostLoc { loc })
        }
    }
}

// EndOfAllocScope releases every lock and reaps exhausted values. This is
// the boundary at which the allocator invariants must hold.
func (self *RegAlloc) EndOfAllocScope() {
    for i := range self.info {
        self.info[i].EndOfAllocScope()
    }

    /* optional state dump */
    if self.opts.DebugRegAlloc {
        println(self.Dump())
    }
}

// AssertNoMoreUses checks that nothing is left bound anywhere, which must
// be the case after the last instruction of a block.
func (self *RegAlloc) AssertNoMoreUses() {
    for i := range self.info {
        if !self.info[i].IsEmpty() {
            panic("regalloc: values remain bound after the end of block: " + self.Dump())
        }
    }
}

// Reset clears all state between blocks.
func (self *RegAlloc) Reset() {
    for i := range self.info {
        self.info[i] = LocInfo{}
    }
}

// Dump renders the host location table for diagnostics.
func (self *RegAlloc) Dump() string {
    return spew.Sdump(self.info)
}

/** Value Tracking **/

// valueLocation scans for the slot holding p. Live values have exactly
// one home, so the first hit is the only one.
func (self *RegAlloc) valueLocation(p *ir.Inst) (abi.HostLoc, bool) {
    for i := range self.info {
        if self.info[i].ContainsValue(p) {
            return abi.HostLoc(i), true
        }
    }
    return 0, false
}

func (self *RegAlloc) location(p *ir.Inst) abi.HostLoc {
    if loc, ok := self.valueLocation(p); !ok {
        panic(fmt.Sprintf("regalloc: use of undefined value: %s", p))
    } else {
        return loc
    }
}

func (self *RegAlloc) isLastUse(p *ir.Inst) bool {
    if p.UseCount() != 1 {
        return false
    } else if loc, ok := self.valueLocation(p); !ok {
        return false
    } else {
        return len(self.locInfo(loc).values) == 1
    }
}

/** Register Selection **/

// selectARegister picks a candidate from desired: locked locations are
// not candidates at all, and unoccupied ones win over occupied ones. The
// preference order of the desired list breaks ties.
func (self *RegAlloc) selectARegister(desired []abi.HostLoc) abi.HostLoc {
    none := true

    /* prefer a location nothing lives in */
    for _, loc := range desired {
        if !self.locInfo(loc).IsLocked() {
            if none = false; !self.locInfo(loc).IsOccupied() {
                return loc
            }
        }
    }

    /* locking every candidate at once is an emitter bug */
    if none {
        panic("regalloc: all candidate registers are locked")
    }

    /* fall back to the first unlocked one */
    for _, loc := range desired {
        if !self.locInfo(loc).IsLocked() {
            return loc
        }
    }
    panic("unreachable")
}

/** Use Implementation **/

func (self *RegAlloc) useInstReg(p *ir.Inst, desired []abi.HostLoc) abi.HostLoc {
    cur := self.location(p)

    /* already acceptable */
    if hostLocIn(cur, desired) && cur.IsRegister() {
        self.locInfo(cur).Lock()
        p.DecUses()
        return cur
    }

    /* locked home: leave it alone and take a copy */
    if self.locInfo(cur).IsLocked() {
        return self.useInstScratchReg(p, desired)
    }

    /* bring the value over, preserving whatever sat in the target */
    dst := self.selectARegister(desired)
    if sameHostLocClass(dst, cur) {
        self.exchange(dst, cur)
    } else {
        self.moveOutOfTheWay(dst)
        self.move(dst, cur)
    }

    self.locInfo(dst).Lock()
    p.DecUses()
    return dst
}

func (self *RegAlloc) useInstScratchReg(p *ir.Inst, desired []abi.HostLoc) abi.HostLoc {
    if !p.HasUses() {
        panic(fmt.Sprintf("regalloc: instruction used too many times: %s", p))
    }

    cur := self.location(p)
    dst := self.selectARegister(desired)

    /* evict the occupant; if that occupant is the value itself this also
     * preserves a copy for its remaining uses */
    if self.locInfo(dst).IsOccupied() {
        self.spillRegister(dst)
    }

    /* reading back from a spill slot keeps the slot as the home */
    if cur.IsSpill() {
        self.emitMove(dst, cur)
        self.locInfo(dst).Lock()
        p.DecUses()
        return dst
    }

    /* copy the bits unless the register already holds them */
    if cur != dst {
        self.emitMove(dst, cur)
    }

    *self.locInfo(dst) = LocInfo{}
    self.locInfo(dst).Lock()
    p.DecUses()
    return dst
}

/** Move and Spill Machinery **/

// move transfers the bindings of from into the empty location to, along
// with the underlying bits.
func (self *RegAlloc) move(to abi.HostLoc, from abi.HostLoc) {
    if !self.locInfo(to).IsEmpty() || self.locInfo(from).IsLocked() {
        panic(fmt.Sprintf("regalloc: invalid move: %s <- %s", to, from))
    }

    /* moving nothing is a no-op */
    if self.locInfo(from).IsEmpty() {
        return
    }

    *self.locInfo(to) = *self.locInfo(from)
    *self.locInfo(from) = LocInfo{}
    self.emitMove(to, from)
}

// exchange swaps two locations of the same register class, degenerating
// to a move when either side is empty.
func (self *RegAlloc) exchange(a abi.HostLoc, b abi.HostLoc) {
    if self.locInfo(a).IsLocked() || self.locInfo(b).IsLocked() {
        panic(fmt.Sprintf("regalloc: invalid exchange: %s <-> %s", a, b))
    }

    /* either side empty degenerates to a move */
    if self.locInfo(a).IsEmpty() {
        self.move(a, b)
        return
    }
    if self.locInfo(b).IsEmpty() {
        self.move(b, a)
        return
    }

    /* the selection policy never leaves two vector values to swap */
    if a.IsXMM() && b.IsXMM() {
        panic("regalloc: exchanging vector registers is unnecessary")
    }
    if !a.IsGPR() || !b.IsGPR() {
        panic(fmt.Sprintf("regalloc: invalid exchange: %s <-> %s", a, b))
    }

    tmp := *self.locInfo(a)
    *self.locInfo(a) = *self.locInfo(b)
    *self.locInfo(b) = tmp
    self.code.Exchange(a, b)
}

// spillRegister moves the contents of an occupied, unlocked register to
// the first free spill slot, bindings included.
func (self *RegAlloc) spillRegister(loc abi.HostLoc) {
    if !loc.IsRegister() {
        panic(fmt.Sprintf("regalloc: only registers can be spilled: %s", loc))
    }
    if !self.locInfo(loc).IsOccupied() {
        panic(fmt.Sprintf("regalloc: no need to spill an unoccupied register: %s", loc))
    }
    if self.locInfo(loc).IsLocked() {
        panic(fmt.Sprintf("regalloc: locked registers cannot be spilled: %s", loc))
    }

    slot := self.findFreeSpill()
    self.emitMove(slot, loc)
    *self.locInfo(slot) = *self.locInfo(loc)
    *self.locInfo(loc) = LocInfo{}
}

func (self *RegAlloc) findFreeSpill() abi.HostLoc {
    for i := int(abi.Spill(0)); i < len(self.info); i++ {
        if self.info[i].IsEmpty() {
            return abi.HostLoc(i)
        }
    }
    panic("regalloc: out of spill slots")
}

func (self *RegAlloc) moveOutOfTheWay(loc abi.HostLoc) {
    if self.locInfo(loc).IsLocked() {
        panic(fmt.Sprintf("regalloc: cannot clear a locked register: %s", loc))
    }
    if self.locInfo(loc).IsOccupied() {
        self.spillRegister(loc)
    }
}

// emitMove issues the raw copy for one to/from pair, with no binding
// changes.
func (self *RegAlloc) emitMove(to abi.HostLoc, from abi.HostLoc) {
    switch {
        case to.IsGPR()   && from.IsGPR()   : self.code.MoveRegReg(to, from)
        case to.IsGPR()   && from.IsSpill() : self.code.MoveRegSpill(to, from)
        case to.IsSpill() && from.IsGPR()   : self.code.MoveSpillReg(to, from)
        case to.IsXMM()   && from.IsXMM()   : self.code.MoveVecVec(to, from)
        case to.IsXMM()   && from.IsSpill() : self.code.MoveVecSpill(to, from)
        case to.IsSpill() && from.IsXMM()   : self.code.MoveSpillVec(to, from)
        default                             : panic(fmt.Sprintf("regalloc: invalid move: %s <- %s", to, from))
    }
}

// loadImmediate materializes an immediate into a claimed register, using
// the zero idiom for zero.
func (self *RegAlloc) loadImmediate(v ir.Value, loc abi.HostLoc) abi.HostLoc {
    if !v.IsImmediate() {
        panic("regalloc: value is not an immediate")
    }
    self.code.LoadImmediate(loc, v.AsU64())
    return loc
}

func sameHostLocClass(a abi.HostLoc, b abi.HostLoc) bool {
    return (a.IsGPR() && b.IsGPR()) || (a.IsXMM() && b.IsXMM()) || (a.IsSpill() && b.IsSpill())
}

func hostLocIn(loc abi.HostLoc, set []abi.HostLoc) bool {
    for _, v := range set {
        if v == loc {
            return true
        }
    }
    return false
}
