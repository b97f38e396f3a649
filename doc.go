// Package wasmrepair repairs WebAssembly modules that binaryen rejects
// because of malformed br_table instructions, then optimizes them.
//
// # Architecture Overview
//
//	wasmrepair/
//	├── cmd/wasm-repair/  CLI: repair, batch, locate, doctor
//	├── pipeline/         Driver: load, repair loop, optimize, commit output
//	├── repair/           Signatures, backward marker scan, neutralizer, fix-point loop
//	├── toolchain/        External validator and optimizer processes, tool probing
//	├── diag/             Validator output to byte offset policies
//	├── config/           TOML file, environment and build-context tier
//	├── wasm/             Header check, opcodes, br_table length
//	└── errors/           Structured error types
//
// # Repair
//
// The validator reports the byte offset where decoding failed. The repair
// loop scans backward from that offset for the br_table opcode (0x0E),
// refusing spans longer than 30 bytes, and overwrites the whole range with
// unreachable (0x00). It validates again until the module is clean, so a
// module with k malformed instructions takes k patches and k+1 validations.
// The module length never changes.
//
//	d, err := pipeline.New(cfg, toolchain.ExecRunner{})
//	if err != nil {
//	    return err
//	}
//	report, err := d.Run(ctx, "libOCP.so", "dist/libOCP.so")
//
// # Optimization Tier
//
// The tier is read once from the environment: DEBUG runs -O0 --debuginfo,
// CI runs -O4, anything else -O1.
package wasmrepair
