// Package repair neutralizes malformed instructions in a WebAssembly binary.
//
// A Signature describes one known defect class: the opcode byte that starts
// the malformed instruction, the trap byte written over it, and an upper
// bound on how long the instruction can plausibly be. The built-in
// SignatureBrTable covers br_table instructions with corrupt immediates.
//
// Loop drives a Validator to a fix point. Each finding is located by a
// backward scan for the marker byte and the span [start, offset] is filled
// with the trap byte. The buffer length never changes.
//
//	loop := &repair.Loop{Validator: v, Signature: repair.SignatureBrTable}
//	session, err := loop.Run(ctx, repair.NewBuffer(data))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(len(session.Patches), "patches")
package repair
