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
    `testing`

    `github.com/chenzhuoyu/iasm/x86_64`
    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
)

func TestHostLoc_Classes(t *testing.T) {
    require.True(t, RAX.IsGPR())
    require.True(t, R15.IsGPR())
    require.True(t, XMM0.IsXMM())
    require.True(t, XMM15.IsXMM())
    require.True(t, Spill(0).IsSpill())
    require.False(t, Spill(0).IsRegister())
    assert.Equal(t, 3, Spill(3).SpillIndex())
    assert.Equal(t, x86_64.RBX, RBX.Reg64())
    assert.Equal(t, x86_64.XMM7, XMM7.XMM())
    require.Panics(t, func() { XMM0.Reg64() })
    require.Panics(t, func() { RAX.XMM() })
    require.Panics(t, func() { RAX.SpillIndex() })
}

func TestSystemV_ReservedRegisters(t *testing.T) {
    a := SystemV()

    /* the host stack pointer, frame pointer and JIT state pointer must
     * never be handed out */
    for _, loc := range a.GPRs {
        require.NotEqual(t, RSP, loc)
        require.NotEqual(t, RBP, loc)
        require.NotEqual(t, R15, loc)
    }

    /* callee-saved registers come first in the preference order */
    assert.Equal(t, []HostLoc { RBX, R12, R13, R14 }, a.GPRs[:4])
    assert.Equal(t, RAX, a.Ret)
    assert.Equal(t, []HostLoc { RDI, RSI, RDX, RCX }, a.Args)
}
