// Package docker implements build.Platform by driving the docker CLI.
package docker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/k8zenv/internal/build"
	"github.com/imamik/k8zenv/internal/environment"
)

// pollInterval is how often the abort predicate is checked during a build.
const pollInterval = 2 * time.Second

// Runner executes one CLI invocation.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Builder builds images with `docker build` and pushes them with `docker push`.
type Builder struct {
	Binary  string
	Timeout time.Duration
	Log     logr.Logger
	Run     Runner
}

// NewBuilder returns a Builder using the docker binary found in PATH.
func NewBuilder(timeout time.Duration, log logr.Logger) *Builder {
	return &Builder{
		Binary:  "docker",
		Timeout: timeout,
		Log:     log.WithName("docker"),
		Run:     execRunner,
	}
}

// Name identifies the platform.
func (b *Builder) Name() string { return "docker" }

// Build builds and pushes the image of bld. It returns an error wrapping
// build.ErrAborted when isAborted reports true while the build runs.
func (b *Builder) Build(ctx context.Context, bld *environment.Build, isAborted func() bool) error {
	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	if isAborted != nil {
		go watchAbort(ctx, cancel, isAborted)
	}

	image := bld.Image.FullImageNameWithTag()
	log := b.Log.WithValues("image", image)

	log.Info("building image")
	if out, err := b.Run(ctx, b.Binary, buildArgs(bld)...); err != nil {
		return b.wrap(ctx, "build", out, err)
	}

	log.Info("pushing image")
	if out, err := b.Run(ctx, b.Binary, "push", image); err != nil {
		return b.wrap(ctx, "push", out, err)
	}

	return nil
}

// wrap maps an interrupted run to build.ErrAborted. Both the abort predicate
// and a canceled parent context interrupt; a timeout is a failure.
func (b *Builder) wrap(ctx context.Context, stage string, out []byte, err error) error {
	cause := context.Cause(ctx)
	if errors.Is(cause, build.ErrAborted) || errors.Is(cause, context.Canceled) {
		return fmt.Errorf("docker %s interrupted: %w", stage, build.ErrAborted)
	}
	return fmt.Errorf("docker %s failed: %w: %s", stage, err, bytes.TrimSpace(out))
}

func watchAbort(ctx context.Context, cancel context.CancelCauseFunc, isAborted func() bool) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if isAborted() {
			cancel(build.ErrAborted)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func buildArgs(bld *environment.Build) []string {
	root := bld.GitRepository.RootPath
	if root == "" {
		root = "."
	}
	dockerfile := bld.GitRepository.DockerfilePath
	if dockerfile == "" {
		dockerfile = "Dockerfile"
	}

	args := []string{
		"build",
		"--tag", bld.Image.FullImageNameWithTag(),
		"--file", filepath.Join(root, dockerfile),
	}
	if bld.Image.CommitID != "" {
		args = append(args, "--label", "org.opencontainers.image.revision="+bld.Image.CommitID)
	}
	if bld.DisableCache {
		args = append(args, "--no-cache")
	}

	keys := make([]string, 0, len(bld.Environment))
	for k := range bld.Environment {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--build-arg", k+"="+bld.Environment[k])
	}

	return append(args, root)
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	// #nosec G204
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}
