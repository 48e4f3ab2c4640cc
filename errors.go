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
    `fmt`
)

// InvariantError describes a violated invariant recovered at the facade
// boundary. The core panics on invariant violations; Guard converts such
// a panic into this error for callers that prefer to contain a
// miscompiled block rather than crash.
type InvariantError struct {
    Cause interface{}
}

func (self InvariantError) Error() string {
    return fmt.Sprintf("InvariantError: %v", self.Cause)
}

// Guard runs fn, converting a panic out of the backend core into an
// InvariantError.
func Guard(fn func()) (err error) {
    defer func() {
        if v := recover(); v != nil {
            err = InvariantError { Cause: v }
        }
    }()
    fn()
    return
}
