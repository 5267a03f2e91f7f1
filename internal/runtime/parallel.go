package runtime

import (
	"context"
	"sync"

	"github.com/alitto/pond/v2"

	"github.com/stepmill/stepmill/internal/jsonpath"
	"github.com/stepmill/stepmill/pkg/domain"
)

// execParallel runs every branch as an independent scope against a snapshot
// of the incoming event, joins on all of them, and returns the branch
// results ordered by declaration. The first branch error cancels the
// remaining branches and aborts the run.
func (x *execution) execParallel(ctx context.Context, name string, state *domain.State, event any) (any, error) {
	if len(state.Branches) == 0 {
		return nil, &domain.DefinitionError{
			StateName: name,
			Reason:    "Parallel state declares no branches",
		}
	}

	x.logger.Debug("starting parallel branches", "state", name, "branches", len(state.Branches))

	// A fault in any branch must abort siblings still in flight, so every
	// branch runs under a shared cancelable context and the first error
	// cancels the rest. The originating fault is tracked separately:
	// cancelled siblings report context.Canceled, which must not mask it.
	branchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var faultOnce sync.Once
	var fault error

	pool := pond.NewResultPool[any](len(state.Branches))
	defer pool.StopAndWait()

	group := pool.NewGroupContext(branchCtx)
	for _, branch := range state.Branches {
		snapshot, err := jsonpath.Clone(event)
		if err != nil {
			return nil, &domain.DefinitionError{StateName: name, Reason: err.Error()}
		}
		sub := branch
		group.SubmitErr(func() (any, error) {
			out, err := x.runScope(branchCtx, sub, snapshot)
			if err != nil {
				faultOnce.Do(func() {
					fault = err
					cancel()
				})
			}
			return out, err
		})
	}

	// Join barrier: results arrive in submission (declaration) order
	// regardless of completion timing.
	results, err := group.Wait()
	if err != nil {
		if fault != nil {
			return nil, fault
		}
		return nil, err
	}

	x.logger.Debug("parallel branches joined", "state", name)
	return routeResult(name, state, event, results)
}
