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

// Package dynarmic fronts the translator backend core: block-local IR
// optimization and linear-scan register allocation over host locations.
// Decoding guest instructions into IR and emitting the final host code
// around the allocator's moves are the caller's business.
package dynarmic

import (
    `github.com/C113293EBC5A43AE99DEA56C40CEE2A6/dynarmic/internal/ir`
    `github.com/oleiade/lane`
)

// Optimize runs the block-local pass pipeline over a single block.
func Optimize(bb *ir.Block) {
    ir.Optimize(bb)
}

// Pipeline batches blocks pending optimization. Blocks are drained in
// FIFO order so the hot entry block of a translation unit is processed
// first.
type Pipeline struct {
    q *lane.Queue
}

func NewPipeline() *Pipeline {
    return &Pipeline {
        q: lane.NewQueue(),
    }
}

func (self *Pipeline) Push(bb *ir.Block) {
    self.q.Enqueue(bb)
}

// Run optimizes every pending block, invoking fn on each as it completes.
func (self *Pipeline) Run(fn func(*ir.Block)) {
    for !self.q.Empty() {
        bb := self.q.Dequeue().(*ir.Block)
        ir.Optimize(bb)

        /* hand the block over for allocation and emission */
        if fn != nil {
            fn(bb)
        }
    }
}
