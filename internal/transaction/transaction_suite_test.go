package transaction

import (
	"context"
	"errors"
	"testing"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/imamik/k8zenv/internal/environment"
	"github.com/imamik/k8zenv/internal/progress"
)

// TestTransactionSuite is the entry point for the Ginkgo specs.
func TestTransactionSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Transaction Suite")
}

var suiteLog logr.Logger

var _ = BeforeSuite(func() {
	suiteLog = zap.New(zap.WriteTo(GinkgoWriter), zap.UseDevMode(true))
})

var _ = Describe("Transaction", func() {
	var (
		f   *fixture
		rec *progress.Recorder
		tx  *Transaction
		ctx context.Context
	)

	BeforeEach(func() {
		f = newFixture()
		rec = &progress.Recorder{}
		ctx = context.Background()

		cfg := f.config()
		cfg.Log = suiteLog
		cfg.Listeners = progress.Listeners{rec, progress.NewLogListener(suiteLog)}

		var err error
		tx, err = New(cfg)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("executing steps", func() {
		It("runs a prefix of the pushed steps when one fails", func() {
			env := newEnvironment(environment.ActionCreate)
			f.executor.err = errors.New("apply failed")

			tx.CreateKubernetes()
			tx.DeployEnvironment(env)
			tx.PauseKubernetes()

			res := tx.Commit(ctx)

			Expect(res.IsError()).To(BeTrue())
			executed := tx.ExecutedSteps()
			Expect(executed).To(HaveLen(3))
			for i, step := range executed {
				Expect(step.Name).To(Equal(tx.PendingSteps()[i].Name))
			}
			Expect(f.log.all()).NotTo(ContainElement("on_pause"))
		})

		It("reports the current step to the observer before running it", func() {
			tx.DeleteKubernetes()

			Expect(tx.Commit(ctx).IsOk()).To(BeTrue())
			Expect(f.steps).To(Equal([]StepName{StepWaiting, StepDeleteInfra}))
			Expect(tx.CurrentStep()).To(Equal(StepDeleteInfra))
		})
	})

	Describe("rolling back", func() {
		It("compensates only infrastructure steps that were executed", func() {
			f.kubernetes.errs["on_delete"] = errors.New("delete failed")

			tx.CreateKubernetes()
			tx.DeleteKubernetes()
			tx.PauseKubernetes()

			Expect(tx.Commit(ctx).IsError()).To(BeTrue())
			Expect(f.log.all()).To(Equal([]string{
				"on_create", "on_delete", "on_create_error", "on_delete_error",
			}))
		})

		It("returns the original failure when the compensation fails too", func() {
			original := errors.New("pause failed")
			f.kubernetes.errs["on_pause"] = original
			f.kubernetes.errs["on_pause_error"] = errors.New("unpause failed")

			tx.PauseKubernetes()
			res := tx.Commit(ctx)

			Expect(res.Err).To(BeIdenticalTo(original))
		})
	})

	Describe("canceling", func() {
		It("never calls the builder once aborted", func() {
			aborted := false
			cfg := f.config()
			cfg.IsAborted = func() bool { return aborted }
			cfg.Log = suiteLog
			var err error
			tx, err = New(cfg)
			Expect(err).NotTo(HaveOccurred())

			tx.CreateKubernetes()
			tx.DeployEnvironment(newEnvironment(environment.ActionCreate))
			aborted = true

			res := tx.Commit(ctx)

			Expect(res.IsCanceled()).To(BeTrue())
			Expect(f.log.all()).To(Equal([]string{"on_create"}))
		})

		DescribeTable("cancellable step names",
			func(name StepName, want bool) {
				Expect(name.Cancellable()).To(Equal(want))
			},
			Entry("waiting", StepWaiting, true),
			Entry("build environment", StepBuildEnvironment, true),
			Entry("create infra", StepCreateInfra, false),
			Entry("delete infra", StepDeleteInfra, false),
			Entry("pause infra", StepPauseInfra, false),
			Entry("deploy environment", StepDeployEnvironment, false),
			Entry("pause environment", StepPauseEnvironment, false),
			Entry("delete environment", StepDeleteEnvironment, false),
		)
	})

	Describe("partial environment failure", func() {
		It("reports the services that were not processed in database, application, router order", func() {
			env := newEnvironment(environment.ActionPause)
			routerA := &environment.Router{Identity: service("router-a")}
			appB := &environment.Application{Identity: service("app-b")}
			dbC := &environment.Database{Identity: service("db-c")}
			dbD := &environment.Database{Identity: service("db-d")}
			env.Routers = []*environment.Router{routerA}
			env.Applications = []*environment.Application{appB}
			env.Databases = []*environment.Database{dbC, dbD}
			f.executor.err = NewExecutorError(errors.New("timeout"), dbC.LongID())

			tx.PauseEnvironment(env)
			Expect(tx.Commit(ctx).IsError()).To(BeTrue())

			var names []string
			for _, ev := range rec.Events() {
				Expect(ev.Action).To(Equal(environment.ActionPause))
				Expect(ev.Outcome).To(Equal(progress.OutcomeError))
				names = append(names, ev.Info.Scope.Name)
			}
			Expect(names).To(Equal([]string{"db-d", "app-b", "router-a"}))
		})

		It("emits nothing when every service was processed", func() {
			env := newEnvironment(environment.ActionCreate)
			app := &environment.Application{Identity: service("app")}
			env.Applications = []*environment.Application{app}
			f.executor.err = NewExecutorError(errors.New("late failure"), app.LongID())

			tx.DeployEnvironment(env)
			Expect(tx.Commit(ctx).IsError()).To(BeTrue())
			Expect(rec.Events()).To(BeEmpty())
		})
	})
})
