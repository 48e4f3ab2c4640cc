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
    `testing`

    `github.com/C113293EBC5A43AE99DEA56C40CEE2A6/dynarmic/internal/abi`
    `github.com/C113293EBC5A43AE99DEA56C40CEE2A6/dynarmic/internal/ir`
    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
)

func testABI(slots int, gprs ...abi.HostLoc) *abi.ABI {
    return &abi.ABI {
        GPRs       : gprs,
        Ret        : abi.RAX,
        Args       : []abi.HostLoc { abi.RDI, abi.RSI, abi.RDX, abi.RCX },
        SpillSlots : slots,
    }
}

/* value appends a producer with the requested number of pending uses */
func value(bb *ir.Block, uses int) *ir.Inst {
    p := bb.Append(ir.GetGuestReg32, ir.Imm8(0))
    for i := 0; i < uses; i++ {
        bb.Append(ir.SetGuestReg32, ir.Imm8(1), ir.InstValue(p))
    }
    return p
}

func TestRegAlloc_DefineThenUse(t *testing.T) {
    bb := ir.NewBlock()
    sink := new(Recorder)
    ra := NewRegAlloc(sink, testABI(4, abi.RBX, abi.R12))

    x := value(bb, 1)
    loc := ra.ScratchReg(ra.abi.GPRs)
    ra.DefineValue(x, loc)
    ra.EndOfAllocScope()

    /* using it where it lives moves nothing */
    got := ra.UseReg(ir.InstValue(x), ra.abi.GPRs)
    assert.Equal(t, loc, got)
    assert.Empty(t, sink.Ops)
    ra.EndOfAllocScope()

    /* the last use was consumed, nothing stays bound */
    ra.AssertNoMoreUses()
}

func TestRegAlloc_ImmediateLoads(t *testing.T) {
    sink := new(Recorder)
    ra := NewRegAlloc(sink, testABI(4, abi.RBX, abi.R12))

    r0 := ra.UseReg(ir.Imm32(0), ra.abi.GPRs)
    r1 := ra.UseReg(ir.Imm64(0x1234), ra.abi.GPRs)
    ra.EndOfAllocScope()

    require.Len(t, sink.Ops, 2)
    assert.Equal(t, Directive { Op: "loadimm", To: r0, Imm: 0 }, sink.Ops[0])
    assert.Equal(t, Directive { Op: "loadimm", To: r1, Imm: 0x1234 }, sink.Ops[1])
    ra.AssertNoMoreUses()
}

func TestRegAlloc_SpillRoundTrip(t *testing.T) {
    bb := ir.NewBlock()
    sink := new(Recorder)
    ra := NewRegAlloc(sink, testABI(4, abi.RBX, abi.R12))

    v1 := value(bb, 2)
    v2 := value(bb, 2)
    v3 := value(bb, 2)

    /* define three simultaneously live values into two registers */
    for _, p := range []*ir.Inst { v1, v2, v3 } {
        ra.DefineValue(p, ra.ScratchReg(ra.abi.GPRs))
        ra.EndOfAllocScope()
    }

    /* one of them must have gone to a spill slot */
    spilled := 0
    for _, p := range []*ir.Inst { v1, v2, v3 } {
        if loc, ok := ra.valueLocation(p); ok && loc.IsSpill() {
            spilled++
        }
    }
    assert.Equal(t, 1, spilled)

    /* every value must come back into a register on demand */
    for _, p := range []*ir.Inst { v1, v2, v3 } {
        got := ra.UseReg(ir.InstValue(p), ra.abi.GPRs)
        require.True(t, got.IsGPR())
        require.True(t, ra.locInfo(got).ContainsValue(p))
        ra.EndOfAllocScope()
    }
}

func TestRegAlloc_UseSpillInPlace(t *testing.T) {
    bb := ir.NewBlock()
    sink := new(Recorder)
    ra := NewRegAlloc(sink, testABI(4, abi.RBX))

    v1 := value(bb, 2)
    v2 := value(bb, 1)

    /* v1 gets evicted into a slot by v2 */
    ra.DefineValue(v1, ra.ScratchReg(ra.abi.GPRs))
    ra.EndOfAllocScope()
    ra.DefineValue(v2, ra.ScratchReg(ra.abi.GPRs))
    ra.EndOfAllocScope()

    loc, ok := ra.valueLocation(v1)
    require.True(t, ok)
    require.True(t, loc.IsSpill())

    /* a plain Use reads the slot as a memory operand, no reload */
    n := len(sink.Ops)
    op := ra.Use(ir.InstValue(v1), ra.abi.GPRs)
    require.True(t, op.IsMem())
    assert.Equal(t, loc, op.Loc())
    assert.Len(t, sink.Ops, n)
    ra.EndOfAllocScope()
}

func TestRegAlloc_UseExchanges(t *testing.T) {
    bb := ir.NewBlock()
    sink := new(Recorder)
    ra := NewRegAlloc(sink, testABI(4, abi.RBX, abi.R12))

    v1 := value(bb, 2)
    v2 := value(bb, 2)
    ra.DefineValue(v1, ra.ScratchReg([]abi.HostLoc { abi.RBX }))
    ra.EndOfAllocScope()
    ra.DefineValue(v2, ra.ScratchReg([]abi.HostLoc { abi.R12 }))
    ra.EndOfAllocScope()

    /* forcing v2 into v1's register swaps the two */
    got := ra.UseReg(ir.InstValue(v2), []abi.HostLoc { abi.RBX })
    require.Equal(t, abi.RBX, got)
    require.Equal(t, Directive { Op: "xchg", To: abi.RBX, From: abi.R12 }, sink.Ops[len(sink.Ops) - 1])

    loc1, _ := ra.valueLocation(v1)
    assert.Equal(t, abi.R12, loc1)
    ra.EndOfAllocScope()
}

func TestRegAlloc_UseScratchPreservesBinding(t *testing.T) {
    bb := ir.NewBlock()
    sink := new(Recorder)
    ra := NewRegAlloc(sink, testABI(4, abi.RBX))

    v1 := value(bb, 2)
    ra.DefineValue(v1, ra.ScratchReg(ra.abi.GPRs))
    ra.EndOfAllocScope()

    /* scratching the home of a still-live value saves a copy first */
    got := ra.UseScratchReg(ir.InstValue(v1), ra.abi.GPRs)
    require.Equal(t, abi.RBX, got)
    require.True(t, ra.locInfo(got).IsScratch())
    ra.EndOfAllocScope()

    loc, ok := ra.valueLocation(v1)
    require.True(t, ok)
    require.True(t, loc.IsSpill())
}

func TestRegAlloc_UseDefReusesDyingHome(t *testing.T) {
    bb := ir.NewBlock()
    sink := new(Recorder)
    ra := NewRegAlloc(sink, testABI(4, abi.RBX, abi.R12))

    x := value(bb, 1)
    y := value(bb, 1)
    ra.DefineValue(x, ra.ScratchReg(ra.abi.GPRs))
    ra.EndOfAllocScope()

    /* the last use of x donates its register to y */
    n := len(sink.Ops)
    op, def := ra.UseDef(ir.InstValue(x), y, ra.abi.GPRs)
    assert.Equal(t, op.Loc(), def)
    assert.Len(t, sink.Ops, n)
    ra.EndOfAllocScope()

    loc, ok := ra.valueLocation(y)
    require.True(t, ok)
    assert.Equal(t, def, loc)
    _, ok = ra.valueLocation(x)
    require.False(t, ok)
}

func TestRegAlloc_UseDefKeepsLiveValue(t *testing.T) {
    bb := ir.NewBlock()
    sink := new(Recorder)
    ra := NewRegAlloc(sink, testABI(4, abi.RBX, abi.R12))

    x := value(bb, 2)
    y := value(bb, 1)
    ra.DefineValue(x, ra.ScratchReg(ra.abi.GPRs))
    ra.EndOfAllocScope()

    /* x lives on, so y must land somewhere else */
    op, def := ra.UseDef(ir.InstValue(x), y, ra.abi.GPRs)
    require.NotEqual(t, op.Loc(), def)
    ra.EndOfAllocScope()

    locx, ok := ra.valueLocation(x)
    require.True(t, ok)
    assert.Equal(t, op.Loc(), locx)
}

func TestRegAlloc_RegisterAddDef(t *testing.T) {
    bb := ir.NewBlock()
    sink := new(Recorder)
    ra := NewRegAlloc(sink, testABI(4, abi.RBX, abi.R12))

    x := value(bb, 2)
    y := value(bb, 1)
    ra.DefineValue(x, ra.ScratchReg(ra.abi.GPRs))
    ra.EndOfAllocScope()

    /* a pass-through definition shares the home of its operand */
    ra.RegisterAddDef(y, ir.InstValue(x))
    ra.EndOfAllocScope()

    locx, _ := ra.valueLocation(x)
    locy, ok := ra.valueLocation(y)
    require.True(t, ok)
    assert.Equal(t, locx, locy)

    /* an immediate pass-through materializes into its own register */
    z := value(bb, 1)
    ra.RegisterAddDef(z, ir.Imm32(7))
    ra.EndOfAllocScope()

    locz, ok := ra.valueLocation(z)
    require.True(t, ok)
    require.NotEqual(t, locx, locz)
    assert.Equal(t, Directive { Op: "loadimm", To: locz, Imm: 7 }, sink.Ops[len(sink.Ops) - 1])
}

func TestRegAlloc_HostCallCallerSaveSweep(t *testing.T) {
    bb := ir.NewBlock()
    sink := new(Recorder)
    a := abi.SystemV()
    a.SpillSlots = 16
    ra := NewRegAlloc(sink, a)

    /* park a live value in every caller-saved general purpose register */
    saved := make(map[abi.HostLoc]*ir.Inst)
    for _, loc := range []abi.HostLoc { abi.RAX, abi.RCX, abi.RDX, abi.RSI, abi.RDI, abi.R8, abi.R9, abi.R10, abi.R11 } {
        p := value(bb, 2)
        ra.DefineValue(p, ra.ScratchReg([]abi.HostLoc { loc }))
        ra.EndOfAllocScope()
        saved[loc] = p
    }

    /* arguments are the values already sitting in the argument registers */
    arg0 := saved[abi.RDI]
    arg1 := saved[abi.RSI]
    result := value(bb, 1)
    ra.HostCall(result, ir.InstValue(arg0), ir.InstValue(arg1), ir.None, ir.None)
    ra.EndOfAllocScope()

    /* the result owns the return register */
    loc, ok := ra.valueLocation(result)
    require.True(t, ok)
    assert.Equal(t, a.Ret, loc)

    /* everything else caller-saved was swept into spill slots */
    for reg, p := range saved {
        loc, ok := ra.valueLocation(p)
        require.True(t, ok, "value from %s lost", reg)
        require.True(t, loc.IsSpill(), "value from %s still in %s", reg, loc)
    }

    /* no stale bindings linger in the swept registers */
    for _, reg := range a.CallerSaved {
        if reg != a.Ret {
            require.True(t, ra.locInfo(reg).IsEmpty(), "%s not empty", reg)
        }
    }
}

func TestRegAlloc_FailureModes(t *testing.T) {
    bb := ir.NewBlock()
    sink := new(Recorder)
    ra := NewRegAlloc(sink, testABI(1, abi.RBX))

    /* use of a value that was never defined */
    u := value(bb, 1)
    require.Panics(t, func() { ra.UseReg(ir.InstValue(u), ra.abi.GPRs) })

    /* double definition */
    x := value(bb, 3)
    ra.DefineValue(x, ra.ScratchReg(ra.abi.GPRs))
    require.Panics(t, func() { ra.DefineValue(x, abi.R12) })
    ra.EndOfAllocScope()

    /* locking every candidate at once */
    ra.UseReg(ir.InstValue(x), ra.abi.GPRs)
    require.Panics(t, func() { ra.ScratchReg(ra.abi.GPRs) })
    ra.EndOfAllocScope()

    /* spill exhaustion: one register, one slot, three live values */
    y := value(bb, 1)
    z := value(bb, 1)
    ra.DefineValue(y, ra.ScratchReg(ra.abi.GPRs))
    ra.EndOfAllocScope()
    require.Panics(t, func() {
        ra.DefineValue(z, ra.ScratchReg(ra.abi.GPRs))
        ra.EndOfAllocScope()
        ra.ScratchReg(ra.abi.GPRs)
    })
}

func TestRegAlloc_OveruseCaught(t *testing.T) {
    bb := ir.NewBlock()
    sink := new(Recorder)
    ra := NewRegAlloc(sink, testABI(4, abi.RBX, abi.R12))

    x := value(bb, 1)
    ra.DefineValue(x, ra.ScratchReg(ra.abi.GPRs))
    ra.EndOfAllocScope()

    /* the single use is fine, the second one trips the counter */
    ra.UseReg(ir.InstValue(x), ra.abi.GPRs)
    require.Panics(t, func() { ra.UseScratchReg(ir.InstValue(x), ra.abi.GPRs) })
}

func TestRegAlloc_ResetAndAssert(t *testing.T) {
    bb := ir.NewBlock()
    sink := new(Recorder)
    ra := NewRegAlloc(sink, testABI(4, abi.RBX, abi.R12))

    x := value(bb, 2)
    ra.DefineValue(x, ra.ScratchReg(ra.abi.GPRs))
    ra.EndOfAllocScope()

    require.Panics(t, func() { ra.AssertNoMoreUses() })
    ra.Reset()
    ra.AssertNoMoreUses()
}
