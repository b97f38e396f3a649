package pipeline

import (
	"context"
	"os"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-repair/errors"
)

// Verify compiles module in-process with wazero as a smoke check of the
// optimizer output. wazero has no exception handling support, so modules
// using it fail here even when they are valid; callers treat the result as
// advisory.
func Verify(ctx context.Context, module []byte) error {
	cfg := wazero.NewRuntimeConfigInterpreter().WithCoreFeatures(api.CoreFeaturesV2)
	rt := wazero.NewRuntimeWithConfig(ctx, cfg)
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, module)
	if err != nil {
		return errors.Wrap(errors.PhaseOptimize, errors.KindInvalidInput, err, "compile optimized module")
	}
	return compiled.Close(ctx)
}

// VerifyFile runs Verify on the module at path.
func VerifyFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.IO("read optimized module", path, err)
	}
	return Verify(ctx, data)
}
