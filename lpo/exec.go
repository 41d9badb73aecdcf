package lpo

// Helpers shared by the backends that run an external solver binary on an
// MPS file.

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// workDir creates the directory holding the files exchanged with a solver
// binary and returns it with a cleanup function that honors keep.
// In case of failure, function returns an error.
func workDir(parent, pattern string, keep bool) (string, func(), error) {
	dir, err := os.MkdirTemp(parent, pattern)
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to create working directory")
	}

	cleanup := func() {
		if keep {
			log().Info("solver files kept", "dir", dir)
			return
		}
		if err := os.RemoveAll(dir); err != nil {
			log().Warn("failed to remove solver files", "dir", dir, "err", err)
		}
	}
	return dir, cleanup, nil
}

// runSolver runs the solver binary and returns its combined output. A
// cancelled or expired context is reported as the context's error.
// In case of failure, function returns an error.
func runSolver(ctx context.Context, dir, path string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = dir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	log().Debug("running solver", "path", path, "args", strings.Join(args, " "))
	err := cmd.Run()
	if ctx.Err() != nil {
		return out.String(), ctx.Err()
	}
	if err != nil {
		return out.String(), errors.Wrapf(err, "exec of %s failed: %s", path, tail(out.String(), 200))
	}
	return out.String(), nil
}

// tail returns at most the last n bytes of s.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
