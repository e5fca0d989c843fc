package async

import (
	"context"
	"errors"
	"fmt"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunParallel executes tasks and waits for all of them to complete.
// Every task error is wrapped with the task name and joined into the
// returned error; nil is returned when all tasks succeed.
//
// When sequential is true the tasks run one after the other in slice order,
// stopping at the first failure. This is useful for debugging and for
// environments where concurrent Helm operations are undesirable.
//
// Example:
//
//	tasks := []Task{
//	    {Name: "cert-manager", Func: installCertManager},
//	    {Name: "metrics-server", Func: installMetricsServer},
//	}
//	if err := RunParallel(ctx, tasks, false); err != nil {
//	    return err
//	}
func RunParallel(ctx context.Context, tasks []Task, sequential bool) error {
	if len(tasks) == 0 {
		return nil
	}

	if sequential {
		for _, task := range tasks {
			if err := task.Func(ctx); err != nil {
				return fmt.Errorf("%s: %w", task.Name, err)
			}
		}
		return nil
	}

	type result struct {
		index int
		err   error
	}

	resultChan := make(chan result, len(tasks))

	for i, task := range tasks {
		go func() {
			resultChan <- result{index: i, err: task.Func(ctx)}
		}()
	}

	// Collect in task order so the joined error is deterministic.
	errs := make([]error, len(tasks))
	for range len(tasks) {
		res := <-resultChan
		if res.err != nil {
			errs[res.index] = fmt.Errorf("%s: %w", tasks[res.index].Name, res.err)
		}
	}

	return errors.Join(errs...)
}
