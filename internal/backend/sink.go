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
)

// CodeSink receives the data movement the allocator decides on. It has no
// back-channel: every primitive is an infallible append to the code
// stream.
type CodeSink interface {
    MoveRegReg(to abi.HostLoc, from abi.HostLoc)
    MoveRegSpill(to abi.HostLoc, from abi.HostLoc)
    MoveSpillReg(to abi.HostLoc, from abi.HostLoc)
    MoveVecVec(to abi.HostLoc, from abi.HostLoc)
    MoveVecSpill(to abi.HostLoc, from abi.HostLoc)
    MoveSpillVec(to abi.HostLoc, from abi.HostLoc)
    Exchange(a abi.HostLoc, b abi.HostLoc)
    LoadImmediate(r abi.HostLoc, v uint64)
}

// Directive is one recorded sink call, for tests and dumps.
type Directive struct {
    Op   string
    To   abi.HostLoc
    From abi.HostLoc
    Imm  uint64
}

func (self Directive) String() string {
    if self.Op == "loadimm" {
        return fmt.Sprintf("loadimm %s, %#x", self.To, self.Imm)
    } else {
        return fmt.Sprintf("%s %s, %s", self.Op, self.To, self.From)
    }
}

// Recorder is a CodeSink that just records what it was asked to emit.
type Recorder struct {
    Ops []Directive
}

func (self *Recorder) record(op string, to abi.HostLoc, from abi.HostLoc, imm uint64) {
    self.Ops = append(self.Ops, Directive { Op: op, To: to, From: from, Imm: imm })
}

func (self *Recorder) MoveRegReg   (to abi.HostLoc, from abi.HostLoc) { self.record("mov"    , to, from, 0) }
func (self *Recorder) MoveRegSpill (to abi.HostLoc, from abi.HostLoc) { self.record("load"   , to, from, 0) }
func (self *Recorder) MoveSpillReg (to abi.HostLoc, from abi.HostLoc) { self.record("store"  , to, from, 0) }
func (self *Recorder) MoveVecVec   (to abi.HostLoc, from abi.HostLoc) { self.record("movv"   , to, from, 0) }
func (self *Recorder) MoveVecSpill (to abi.HostLoc, from abi.HostLoc) { self.record("loadv"  , to, from, 0) }
func (self *Recorder) MoveSpillVec (to abi.HostLoc, from abi.HostLoc) { self.record("storev" , to, from, 0) }
func (self *Recorder) Exchange     (a abi.HostLoc, b abi.HostLoc)     { self.record("xchg"   , a, b, 0) }
func (self *Recorder) LoadImmediate(r abi.HostLoc, v uint64)          { self.record("loadimm", r, 0, v) }
