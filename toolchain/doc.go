// Package toolchain wraps the external binaryen tools used by the pipeline.
//
// Every invocation goes through a Runner, which blocks until the process
// exits and returns its full stdout and stderr. ExecRunner runs real
// processes; tests substitute a fake.
//
// Validator writes a module image to a scratch file and asks wasm-opt or
// wasm-dis whether it parses. Optimizer runs wasm-opt at the optimization
// level chosen by a Tier. Probe checks that a tool is installed and recent
// enough.
package toolchain
