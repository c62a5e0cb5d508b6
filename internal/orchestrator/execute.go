package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"taskchat/internal/logging"
	"taskchat/internal/resolve"
	"taskchat/internal/tools"
	"taskchat/internal/types"
)

// outcome collects everything the Execute state produced, indexed by
// batch position so reply composition is deterministic regardless of
// completion order.
type outcome struct {
	results []*types.ToolResult
	tasks   []types.Task // successfully created, descriptor order
}

// execute dispatches create_task for every resolution. Descriptors
// without batch-local parent dependencies run concurrently; a child of
// a batch-created task runs in a later wave, once its parent's id is
// known. A failure on one descriptor never aborts the others.
//
// Tool calls are not transactional: on cancellation mid-batch the
// already-issued creations stand (at-most-once per artifact) and the
// remaining descriptors are reported as not attempted.
func (o *Orchestrator) execute(ctx context.Context, projectID string, resolutions []resolve.Resolution) outcome {
	n := len(resolutions)
	out := outcome{results: make([]*types.ToolResult, n)}

	// Wave assignment: a descriptor's wave is one past its batch
	// parent's. Resolution only points backward, so one forward pass
	// suffices and waves are acyclic by construction.
	waves := make([]int, n)
	maxWave := 0
	for i, r := range resolutions {
		if r.ParentIndex != resolve.NoParent {
			waves[i] = waves[r.ParentIndex] + 1
			if waves[i] > maxWave {
				maxWave = waves[i]
			}
		}
	}

	createdIDs := make([]string, n)

	for wave := 0; wave <= maxWave; wave++ {
		if err := ctx.Err(); err != nil {
			logging.OrchWarn("turn cancelled before wave %d, %s", wave, err)
			o.markUnattempted(out.results)
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		for i, r := range resolutions {
			if waves[i] != wave {
				continue
			}

			parentID := r.ParentID
			warnings := []string(nil)
			if r.ParentIndex != resolve.NoParent {
				parentID = createdIDs[r.ParentIndex]
				if parentID == "" {
					// Parent creation failed in an earlier wave; keep
					// the child rather than cascading the failure.
					warnings = append(warnings, "intended parent task was not created; task saved at root level")
				}
			}

			g.Go(func() error {
				res := o.registry.Execute(gctx, tools.ToolCreateTask, map[string]any{
					"project_id":  projectID,
					"title":       r.Desc.Title,
					"description": r.Desc.Description,
					"priority":    string(r.Desc.Priority),
					"order":       r.Desc.Order,
					"parent_id":   parentID,
				})
				res.Warnings = append(res.Warnings, warnings...)
				out.results[i] = res
				if res.Success {
					createdIDs[i] = res.CreatedID()
				}
				return nil
			})
		}
		// Registry.Execute never returns an error; Wait only fences the
		// wave so the next one sees every created id.
		_ = g.Wait()
	}

	for i, res := range out.results {
		if res == nil {
			continue
		}
		if res.Success {
			if task, ok := res.Payload["task"].(types.Task); ok {
				out.tasks = append(out.tasks, task)
			}
		} else {
			logging.OrchWarn("create_task for %q failed: %s", resolutions[i].Desc.Title, res.Message)
		}
	}
	return out
}

// markUnattempted fills the result slots the cancellation left empty.
func (o *Orchestrator) markUnattempted(results []*types.ToolResult) {
	for i, res := range results {
		if res == nil {
			results[i] = &types.ToolResult{Success: false, Message: "not attempted: turn cancelled"}
		}
	}
}
