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
    `github.com/C113293EBC5A43AE99DEA56C40CEE2A6/dynarmic/internal/opts`
)

// Option sets a backend tunable.
type Option func(*opts.Options)

// WithSpillSlots bounds the spill area available to one allocator
// instance. The default also honors DYNARMIC_SPILL_SLOTS.
func WithSpillSlots(n int) Option {
    return func(o *opts.Options) {
        o.SpillSlots = n
    }
}

// WithRegAllocDebug dumps the host location table at every allocation
// scope boundary. The default also honors DYNARMIC_DEBUG_REGALLOC.
func WithRegAllocDebug(v bool) Option {
    return func(o *opts.Options) {
        o.DebugRegAlloc = v
    }
}

// BuildOptions folds a list of options over the defaults.
func BuildOptions(options ...Option) opts.Options {
    ret := opts.GetDefaultOptions()
    for _, fn := range options {
        fn(&ret)
    }
    return ret
}
