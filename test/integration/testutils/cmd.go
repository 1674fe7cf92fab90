package testutils

import (
	"bytes"
	"context"
	"os"
	"os/exec"
)

// RunHkxbatchArgs executes an hkxbatch binary with the given arguments. env is added
// on top of the current environment.
func RunHkxbatchArgs(ctx context.Context, env []string, binary string, args []string, nolog bool) (stdout, stderr []byte, err error) {
	var outData, errData bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = &outData
	cmd.Stderr = &errData

	// In exec.Cmd the last duplicated key wins.
	cmd.Env = append(os.Environ(), env...)
	if nolog {
		cmd.Env = append(cmd.Env, "HKXBATCH_NO_LOG=true")
	}

	err = cmd.Run()

	return outData.Bytes(), errData.Bytes(), err
}
