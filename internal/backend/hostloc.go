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
    `github.com/C113293EBC5A43AE99DEA56C40CEE2A6/dynarmic/internal/ir`
)

// LocInfo is the state of one host location. It is in exactly one of four
// states at any time:
//
//   Empty   - no bound values, not locked
//   Idle    - bound values with outstanding uses, not locked
//   Use     - locked while holding values: the current operation reads it
//   Scratch - locked while empty: the current operation writes it
//
// Locking an empty location always yields Scratch, never Use.
type LocInfo struct {
    locked  bool
    scratch bool
    values  []*ir.Inst
}

func (self *LocInfo) IsEmpty() bool {
    return !self.locked && len(self.values) == 0
}

func (self *LocInfo) IsIdle() bool {
    return !self.locked && len(self.values) != 0
}

func (self *LocInfo) IsUse() bool {
    return self.locked && !self.scratch
}

func (self *LocInfo) IsScratch() bool {
    return self.locked && self.scratch
}

func (self *LocInfo) IsLocked() bool {
    return self.locked
}

func (self *LocInfo) IsOccupied() bool {
    return len(self.values) != 0
}

func (self *LocInfo) ContainsValue(p *ir.Inst) bool {
    for _, v := range self.values {
        if v == p {
            return true
        }
    }
    return false
}

func (self *LocInfo) AddValue(p *ir.Inst) {
    self.values = append(self.values, p)
}

// Lock pins the location for the operation being assembled. Locking is
// idempotent within a scope.
func (self *LocInfo) Lock() {
    if !self.locked && len(self.values) == 0 {
        self.scratch = true
    }
    self.locked = true
}

// EndOfAllocScope releases the lock and reaps values whose uses are
// exhausted. A Scratch location that received a definition during the
// operation becomes Idle, otherwise it returns to Empty.
func (self *LocInfo) EndOfAllocScope() {
    n := 0

    /* keep the values that still have consumers */
    for _, v := range self.values {
        if v.HasUses() {
            self.values[n] = v
            n++
        }
    }

    /* release the lock */
    self.values = self.values[:n]
    self.locked = false
    self.scratch = false
}
