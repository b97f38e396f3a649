package wasm

// WebAssembly binary format magic number and version.
const (
	// Magic is the WebAssembly binary magic number ("\0asm" in little-endian).
	Magic uint32 = 0x6D736100

	// Version is the supported WebAssembly binary format version.
	Version uint32 = 0x01

	// HeaderSize is the length of the magic number plus version.
	HeaderSize = 8
)

// Control flow opcodes
const (
	OpUnreachable byte = 0x00
	OpNop         byte = 0x01
	OpBlock       byte = 0x02
	OpLoop        byte = 0x03
	OpIf          byte = 0x04
	OpElse        byte = 0x05
	OpTry         byte = 0x06 // Exception handling
	OpCatch       byte = 0x07 // Exception handling
	OpThrow       byte = 0x08 // Exception handling
	OpRethrow     byte = 0x09 // Exception handling
	OpThrowRef    byte = 0x0A // Exception handling
	OpEnd         byte = 0x0B
	OpBr          byte = 0x0C
	OpBrIf        byte = 0x0D
	OpBrTable     byte = 0x0E
	OpReturn      byte = 0x0F
	OpDelegate    byte = 0x18 // Exception handling
	OpCatchAll    byte = 0x19 // Exception handling
	OpTryTable    byte = 0x1F // Exception handling (new)
)

// MaxBrTableLabels bounds the label vector accepted by BrTableLen. A larger
// count means the bytes at the position are not a br_table.
const MaxBrTableLabels = 1 << 16
