package transaction

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/imamik/k8zenv/internal/build"
	"github.com/imamik/k8zenv/internal/environment"
)

// callLog records collaborator calls across fakes in order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (c *callLog) add(call string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
}

func (c *callLog) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

type fakeKubernetes struct {
	log  *callLog
	errs map[string]error
}

func (k *fakeKubernetes) call(name string) error {
	k.log.add(name)
	return k.errs[name]
}

func (k *fakeKubernetes) OnCreate(context.Context) error { return k.call("on_create") }
func (k *fakeKubernetes) OnPause(context.Context) error { return k.call("on_pause") }
func (k *fakeKubernetes) OnDelete(context.Context) error { return k.call("on_delete") }
func (k *fakeKubernetes) OnCreateError(context.Context) error { return k.call("on_create_error") }
func (k *fakeKubernetes) OnPauseError(context.Context) error { return k.call("on_pause_error") }
func (k *fakeKubernetes) OnDeleteError(context.Context) error { return k.call("on_delete_error") }

type fakeBuilder struct {
	log  *callLog
	err  error
	opts []build.Options
	// during runs while the build is in flight.
	during func()
}

func (b *fakeBuilder) BuildAndPush(_ context.Context, _ []*environment.Application, opts build.Options, _ func() bool) error {
	b.log.add("build")
	b.opts = append(b.opts, opts)
	if b.during != nil {
		b.during()
	}
	return b.err
}

type fakeExecutor struct {
	log *callLog
	err error
}

func (e *fakeExecutor) Apply(_ context.Context, _ *environment.Environment, action environment.Action) error {
	e.log.add("apply:" + action.String())
	return e.err
}

type fixture struct {
	log        *callLog
	kubernetes *fakeKubernetes
	builder    *fakeBuilder
	executor   *fakeExecutor
	steps      []StepName
}

func newFixture() *fixture {
	log := &callLog{}
	return &fixture{
		log:        log,
		kubernetes: &fakeKubernetes{log: log, errs: map[string]error{}},
		builder:    &fakeBuilder{log: log},
		executor:   &fakeExecutor{log: log},
	}
}

func (f *fixture) config() Config {
	return Config{
		Kubernetes:   f.kubernetes,
		Builder:      f.builder,
		Executor:     f.executor,
		ExecutionID:  "exec-1",
		OnStepChange: func(s StepName) { f.steps = append(f.steps, s) },
	}
}

func newEnvironment(action environment.Action) *environment.Environment {
	return environment.New(uuid.New(), uuid.New(), uuid.New(), action)
}

func service(name string) environment.Identity {
	return environment.Identity{UUID: uuid.New(), DisplayName: name, ServiceAction: environment.ActionCreate}
}
