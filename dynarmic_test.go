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

package dynarmic

import (
    `testing`

    `github.com/C113293EBC5A43AE99DEA56C40CEE2A6/dynarmic/internal/ir`
    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
)

func TestPipeline_OptimizesInOrder(t *testing.T) {
    mkblock := func() (*ir.Block, *ir.Inst) {
        bb := ir.NewBlock()
        p := bb.Append(ir.UnsignedDiv32, ir.Imm32(42), ir.Imm32(0))
        bb.Append(ir.SetGuestReg32, ir.Imm8(0), ir.InstValue(p))
        return bb, p
    }

    b1, p1 := mkblock()
    b2, p2 := mkblock()

    var order []*ir.Block
    pl := NewPipeline()
    pl.Push(b1)
    pl.Push(b2)
    pl.Run(func(bb *ir.Block) { order = append(order, bb) })

    require.Equal(t, []*ir.Block { b1, b2 }, order)
    require.True(t, p1.Replaced())
    require.True(t, p2.Replaced())
}

func TestGuard_RecoversInvariantViolations(t *testing.T) {
    err := Guard(func() {
        bb := ir.NewBlock()
        bb.Append(ir.And32, ir.Imm32(1))
    })
    require.Error(t, err)
    assert.IsType(t, InvariantError{}, err)

    require.NoError(t, Guard(func() {}))
}

func TestBuildOptions(t *testing.T) {
    o := BuildOptions(WithSpillSlots(16), WithRegAllocDebug(true))
    assert.Equal(t, 16, o.SpillSlots)
    assert.True(t, o.DebugRegAlloc)
}
