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

// Verifier recomputes every use count from the arena and checks it against
// the declared counter. A mismatch means some pass lost track of a
// consumer, which the allocator would later turn into a miscompile.
type Verifier struct{}

func (Verifier) Apply(bb *Block) {
    uses := make(map[*Inst]int32, bb.NumInsts())

    /* count every live consumer slot */
    for _, p := range bb.Insts() {
        if !p.Replaced() {
            for i := 0; i < p.NumArgs(); i++ {
                if v := p.Arg(i); v.IsInst() {
                    uses[v.Inst()]++
                }
            }
        }
    }

    /* compare with the declared counters */
    for _, p := range bb.Insts() {
        if !p.Replaced() {
            if n := uses[p]; n != int32(p.UseCount()) {
                panic(fmt.Sprintf("ir: use count mismatch on %s: declared %d, found %d", p, p.UseCount(), n))
            }
        }
    }
}
