package gateway

import (
	"context"

	"github.com/ogulcanaydogan/focusboard/pkg/integrations"
	"github.com/ogulcanaydogan/focusboard/pkg/model"
)

// TaskSync is the result of a task synchronisation.
type TaskSync struct {
	Tasks []integrations.Task `json:"tasks"`
	Usage model.UsageInfo     `json:"usage"`
}

// SyncTasks fetches the user's remote tasks under the enforced tasks quota.
func (g *Gateway) SyncTasks(ctx context.Context, userID string) (*TaskSync, error) {
	client, ok := g.integrations.Tasks()
	if !ok {
		return nil, model.Errorf(model.ErrNotFound, "tasks integration is not configured")
	}

	var tasks []integrations.Task
	usage, err := g.Enforced(ctx, userID, model.APITasks, func(ctx context.Context) error {
		var err error
		tasks, err = client.ListTasks(ctx)
		if err != nil {
			g.metrics.IncUpstreamError("tasks")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &TaskSync{Tasks: tasks, Usage: usage}, nil
}
