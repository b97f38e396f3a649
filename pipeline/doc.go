// Package pipeline repairs and optimizes WebAssembly modules end to end.
//
// Driver.Run loads a module, drives repair.Loop with a toolchain.Validator
// until the module validates, optimizes the result with wasm-opt and
// commits it to the output path. Intermediate files are removed on every
// exit path:
//
//	<input>.fixed.wasm   scratch image checked by the validator
//	<output>.opt.tmp     optimizer output, renamed onto <output> on success
//
// A source map next to the input (<input>.map) is copied alongside the
// output when present.
//
// Concurrent runs must not share an input path, since the scratch path is
// derived from it. RunAll enforces this for batches.
package pipeline
