package build

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/imamik/k8zenv/internal/environment"
	"github.com/imamik/k8zenv/internal/metrics"
	"github.com/imamik/k8zenv/internal/progress"
)

// Options tune a build run.
type Options struct {
	ForceBuild bool
	ForcePush  bool
}

// ContainerRegistry stores built images.
type ContainerRegistry interface {
	Name() string
	CreateRegistry(ctx context.Context) error
	CreateRepository(ctx context.Context, name string, retentionSeconds uint32) error
	DoesImageExist(ctx context.Context, image environment.Image) bool
}

// Platform builds one image. Implementations poll isAborted while building
// and return an error wrapping ErrAborted when it reports true.
type Platform interface {
	Name() string
	Build(ctx context.Context, b *environment.Build, isAborted func() bool) error
}

// Pipeline drives a registry and a build platform over a set of applications.
type Pipeline struct {
	Registry         ContainerRegistry
	Platform         Platform
	Listeners        progress.Listeners
	Log              logr.Logger
	RetentionSeconds uint32
	ExecutionID      string
	Metrics          *metrics.Metrics
}

// BuildAndPush builds every application whose action is create. It stops at
// the first failure and returns it as an *Error.
func (p *Pipeline) BuildAndPush(ctx context.Context, apps []*environment.Application, opts Options, isAborted func() bool) error {
	var toBuild []*environment.Application
	for _, app := range apps {
		if app.Action() == environment.ActionCreate {
			toBuild = append(toBuild, app)
		}
	}
	if len(toBuild) == 0 {
		return nil
	}

	log := p.Log.WithValues("registry", p.Registry.Name(), "platform", p.Platform.Name())

	if err := p.Registry.CreateRegistry(ctx); err != nil {
		return fmt.Errorf("failed to set up registry %s: %w", p.Registry.Name(), err)
	}

	for _, app := range toBuild {
		if app.Build == nil {
			return fmt.Errorf("application %s has no build definition", app.Name())
		}
		image := app.Build.Image

		if !opts.ForceBuild && p.Registry.DoesImageExist(ctx, image) {
			log.V(1).Info("image already present, skipping build", "image", image.FullImageNameWithTag())
			p.Metrics.RecordBuild("skipped")
			continue
		}

		if err := p.Registry.CreateRepository(ctx, image.RepositoryName(), p.RetentionSeconds); err != nil {
			return fmt.Errorf("failed to create repository %s: %w", image.RepositoryName(), err)
		}

		buildErr := p.Platform.Build(ctx, app.Build, isAborted)
		result := p.report(log, app, buildErr)
		if result != nil {
			return result
		}
	}

	return nil
}

// report emits the progress message for one build outcome and converts a
// platform error into an *Error.
func (p *Pipeline) report(log logr.Logger, app *environment.Application, buildErr error) error {
	image := app.Build.Image
	name := image.FullImageNameWithTag()

	var (
		msg    string
		level  = progress.LevelError
		result error
	)
	switch {
	case buildErr == nil:
		msg = fmt.Sprintf("Container image %s is built and ready to use", name)
		level = progress.LevelInfo
		p.Metrics.RecordBuild("built")
	case errors.Is(buildErr, ErrAborted):
		msg = fmt.Sprintf("Container image %s build has been canceled", name)
		result = &Error{Kind: KindAborted, Image: image, Err: buildErr}
		p.Metrics.RecordBuild("aborted")
	default:
		msg = fmt.Sprintf("Container image %s failed to be build: %v", name, buildErr)
		result = &Error{Kind: KindFailed, Image: image, Err: buildErr}
		p.Metrics.RecordBuild("failed")
	}

	p.Listeners.Notify(environment.ActionCreate, progress.OutcomeInProgress, progress.NewInfo(app, level, msg, p.ExecutionID))
	log.Info(msg, "application", app.Name())

	return result
}
