// Package wasm holds the few pieces of the WebAssembly binary format the
// repair pipeline reads directly: the module header, opcode values and the
// LEB128 encoding of br_table immediates.
//
// It is not a parser. Whether a module is valid is decided by an external
// tool; this package only checks the header before a run and measures a
// br_table instruction for the patch audit trail.
//
//	if err := wasm.CheckHeader(data); err != nil {
//	    return err
//	}
//	n, err := wasm.BrTableLen(data, start)
package wasm
