package wasm

import (
	"encoding/binary"
	"fmt"
)

// CheckHeader verifies the magic number and binary version of a module.
func CheckHeader(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("module too short: %d bytes", len(data))
	}
	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != Magic {
		return fmt.Errorf("invalid magic number: 0x%08X", magic)
	}
	if version := binary.LittleEndian.Uint32(data[4:8]); version != Version {
		return fmt.Errorf("unsupported binary version: %d", version)
	}
	return nil
}
