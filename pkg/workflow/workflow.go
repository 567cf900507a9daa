// Package workflow runs short sequences of reversible steps. Link
// mutations use it so a failure partway through unwinds the rows already
// written instead of leaving a dangling association.
package workflow

import (
	"context"
	"fmt"

	pkgerrors "github.com/linkcart/b2b-backend/pkg/errors"
	"github.com/linkcart/b2b-backend/pkg/logger"
)

// Step is one unit of work with an optional compensating action.
type Step struct {
	Name string

	Run func(ctx context.Context) error

	// Compensate reverses a completed Run. Nil means the step needs no
	// reversal. Compensation failures are fatal: they surface to the
	// caller rather than being logged and dropped.
	Compensate func(ctx context.Context) error
}

// Runner executes steps in order, compensating completed steps in
// reverse when a later step fails.
type Runner struct {
	name string
	logg *logger.Logger
}

// NewRunner builds a runner labelled with the workflow name.
func NewRunner(name string, logg *logger.Logger) (*Runner, error) {
	if name == "" {
		return nil, fmt.Errorf("workflow name is required")
	}
	return &Runner{name: name, logg: logg}, nil
}

// Execute runs the steps sequentially. On a step failure the completed
// steps are compensated last-to-first and the original error is
// returned; if a compensation itself fails, that error wraps the
// original and wins.
func (r *Runner) Execute(ctx context.Context, steps ...Step) error {
	completed := make([]Step, 0, len(steps))

	for _, step := range steps {
		if step.Run == nil {
			return pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("workflow %s: step %q has no action", r.name, step.Name))
		}

		if err := step.Run(ctx); err != nil {
			if compErr := r.compensate(ctx, completed); compErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, compErr,
					fmt.Sprintf("workflow %s: step %q failed and compensation did not complete", r.name, step.Name))
			}
			return err
		}
		completed = append(completed, step)
	}

	return nil
}

func (r *Runner) compensate(ctx context.Context, completed []Step) error {
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.Compensate == nil {
			continue
		}
		if r.logg != nil {
			r.logg.Warn(r.logg.WithFields(ctx, map[string]any{
				"workflow": r.name,
				"step":     step.Name,
			}), "compensating completed step")
		}
		if err := step.Compensate(ctx); err != nil {
			return fmt.Errorf("compensate %q: %w", step.Name, err)
		}
	}
	return nil
}
