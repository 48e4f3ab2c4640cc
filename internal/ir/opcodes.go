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

// Opcode identifies one IR operation. The 32-bit shift variants carry a
// third carry-in argument, their 64-bit counterparts do not.
type Opcode uint8

const (
    GetGuestReg32 Opcode = iota
    GetGuestReg64
    SetGuestReg32
    SetGuestReg64
    And32
    And64
    Or32
    Or64
    Eor32
    Eor64
    Not32
    Not64
    Mul32
    Mul64
    SignedDiv32
    SignedDiv64
    UnsignedDiv32
    UnsignedDiv64
    LogicalShiftLeft32
    LogicalShiftLeft64
    LogicalShiftRight32
    LogicalShiftRight64
    ArithmeticShiftRight32
    ArithmeticShiftRight64
    RotateRight32
    RotateRight64
    LeastSignificantByte
    LeastSignificantHalf
    LeastSignificantWord
    MostSignificantBit
    MostSignificantWord
    SignExtendByteToWord
    SignExtendHalfToWord
    SignExtendByteToLong
    SignExtendHalfToLong
    SignExtendWordToLong
    ZeroExtendByteToWord
    ZeroExtendHalfToWord
    ZeroExtendByteToLong
    ZeroExtendHalfToLong
    ZeroExtendWordToLong
    ByteReverseHalf
    ByteReverseWord
    ByteReverseDual
    GetCarryFromOp
    _OpCount
)

type _OpcodeDesc struct {
    name string
    rets Type
    args []Type
}

var _OpcodeTab = [_OpCount]_OpcodeDesc {
    GetGuestReg32          : { name: "get_guest_reg32"         , rets: U32  , args: []Type { U8 } },
    GetGuestReg64          : { name: "get_guest_reg64"         , rets: U64  , args: []Type { U8 } },
    SetGuestReg32          : { name: "set_guest_reg32"         , rets: Void , args: []Type { U8, U32 } },
    SetGuestReg64          : { name: "set_guest_reg64"         , rets: Void , args: []Type { U8, U64 } },
    And32                  : { name: "and32"                   , rets: U32  , args: []Type { U32, U32 } },
    And64                  : { name: "and64"                   , rets: U64  , args: []Type { U64, U64 } },
    Or32                   : { name: "or32"                    , rets: U32  , args: []Type { U32, U32 } },
    Or64                   : { name: "or64"                    , rets: U64  , args: []Type { U64, U64 } },
    Eor32                  : { name: "eor32"                   , rets: U32  , args: []Type { U32, U32 } },
    Eor64                  : { name: "eor64"                   , rets: U64  , args: []Type { U64, U64 } },
    Not32                  : { name: "not32"                   , rets: U32  , args: []Type { U32 } },
    Not64                  : { name: "not64"                   , rets: U64  , args: []Type { U64 } },
    Mul32                  : { name: "mul32"                   , rets: U32  , args: []Type { U32, U32 } },
    Mul64                  : { name: "mul64"                   , rets: U64  , args: []Type { U64, U64 } },
    SignedDiv32            : { name: "signed_div32"            , rets: U32  , args: []Type { U32, U32 } },
    SignedDiv64            : { name: "signed_div64"            , rets: U64  , args: []Type { U64, U64 } },
    UnsignedDiv32          : { name: "unsigned_div32"          , rets: U32  , args: []Type { U32, U32 } },
    UnsignedDiv64          : { name: "unsigned_div64"          , rets: U64  , args: []Type { U64, U64 } },
    LogicalShiftLeft32     : { name: "logical_shift_left32"    , rets: U32  , args: []Type { U32, U8, U1 } },
    LogicalShiftLeft64     : { name: "logical_shift_left64"    , rets: U64  , args: []Type { U64, U8 } },
    LogicalShiftRight32    : { name: "logical_shift_right32"   , rets: U32  , args: []Type { U32, U8, U1 } },
    LogicalShiftRight64    : { name: "logical_shift_right64"   , rets: U64  , args: []Type { U64, U8 } },
    ArithmeticShiftRight32 : { name: "arithmetic_shift_right32", rets: U32  , args: []Type { U32, U8, U1 } },
    ArithmeticShiftRight64 : { name: "arithmetic_shift_right64", rets: U64  , args: []Type { U64, U8 } },
    RotateRight32          : { name: "rotate_right32"          , rets: U32  , args: []Type { U32, U8, U1 } },
    RotateRight64          : { name: "rotate_right64"          , rets: U64  , args: []Type { U64, U8 } },
    LeastSignificantByte   : { name: "least_significant_byte"  , rets: U8   , args: []Type { U32 } },
    LeastSignificantHalf   : { name: "least_significant_half"  , rets: U16  , args: []Type { U32 } },
    LeastSignificantWord   : { name: "least_significant_word"  , rets: U32  , args: []Type { U64 } },
    MostSignificantBit     : { name: "most_significant_bit"    , rets: U1   , args: []Type { U32 } },
    MostSignificantWord    : { name: "most_significant_word"   , rets: U32  , args: []Type { U64 } },
    SignExtendByteToWord   : { name: "sign_extend_byte_to_word", rets: U32  , args: []Type { U8 } },
    SignExtendHalfToWord   : { name: "sign_extend_half_to_word", rets: U32  , args: []Type { U16 } },
    SignExtendByteToLong   : { name: "sign_extend_byte_to_long", rets: U64  , args: []Type { U8 } },
    SignExtendHalfToLong   : { name: "sign_extend_half_to_long", rets: U64  , args: []Type { U16 } },
    SignExtendWordToLong   : { name: "sign_extend_word_to_long", rets: U64  , args: []Type { U32 } },
    ZeroExtendByteToWord   : { name: "zero_extend_byte_to_word", rets: U32  , args: []Type { U8 } },
    ZeroExtendHalfToWord   : { name: "zero_extend_half_to_word", rets: U32  , args: []Type { U16 } },
    ZeroExtendByteToLong   : { name: "zero_extend_byte_to_long", rets: U64  , args: []Type { U8 } },
    ZeroExtendHalfToLong   : { name: "zero_extend_half_to_long", rets: U64  , args: []Type { U16 } },
    ZeroExtendWordToLong   : { name: "zero_extend_word_to_long", rets: U64  , args: []Type { U32 } },
    ByteReverseHalf        : { name: "byte_reverse_half"       , rets: U16  , args: []Type { U16 } },
    ByteReverseWord        : { name: "byte_reverse_word"       , rets: U32  , args: []Type { U32 } },
    ByteReverseDual        : { name: "byte_reverse_dual"       , rets: U64  , args: []Type { U64 } },
    GetCarryFromOp         : { name: "get_carry_from_op"       , rets: U1   , args: []Type { _T_any } },
}

func (self Opcode) Name() string {
    return _OpcodeTab[self].name
}

func (self Opcode) Type() Type {
    return _OpcodeTab[self].rets
}

func (self Opcode) NumArgs() int {
    return len(_OpcodeTab[self].args)
}

func (self Opcode) String() string {
    return self.Name()
}
