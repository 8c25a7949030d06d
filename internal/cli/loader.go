package cli

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/tallyhq/tally/internal/compiler"
	"github.com/tallyhq/tally/internal/habit"
)

// LoadConfigFile reads a CUE habit definition file and compiles it into
// domain configs. The file must contain a top-level habits struct:
//
//	habits: {
//		read: {
//			name: "Read"
//			kind: "formation"
//			goal: 5
//		}
//	}
func LoadConfigFile(path string) ([]habit.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("cannot read %s", path), err)
	}

	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, WrapExitError(ExitFailure, fmt.Sprintf("cannot parse %s", path), err)
	}

	configs, err := compiler.CompileConfigs(value)
	if err != nil {
		return nil, WrapExitError(ExitFailure, fmt.Sprintf("cannot compile %s", path), err)
	}
	return configs, nil
}
