package integrations

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ogulcanaydogan/focusboard/pkg/model"
)

// DefaultTasksBaseURL is the Google Tasks v1 REST root.
const DefaultTasksBaseURL = "https://tasks.googleapis.com/tasks/v1"

// TasksConfig configures a TasksClient.
type TasksConfig struct {
	BaseURL    string
	Token      string
	TaskListID string
}

// Task is one entry of a remote task list.
type Task struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Status  string `json:"status"`
	Due     string `json:"due,omitempty"`
	Notes   string `json:"notes,omitempty"`
	Updated string `json:"updated,omitempty"`
}

// TasksClient lists tasks through the Google Tasks REST API.
type TasksClient struct {
	cfg    TasksConfig
	client *http.Client
}

// NewTasksClient creates a tasks client.
func NewTasksClient(cfg TasksConfig, httpClient *http.Client) *TasksClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultTasksBaseURL
	}
	if cfg.TaskListID == "" {
		cfg.TaskListID = "@default"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &TasksClient{cfg: cfg, client: newHTTPClient(httpClient)}
}

func (c *TasksClient) Name() string { return "google-tasks" }

func (c *TasksClient) APIType() model.APIType { return model.APITasks }

// ListTasks returns the tasks of the configured list.
func (c *TasksClient) ListTasks(ctx context.Context) ([]Task, error) {
	endpoint := fmt.Sprintf("%s/lists/%s/tasks", c.cfg.BaseURL, url.PathEscape(c.cfg.TaskListID))

	var out struct {
		Items []Task `json:"items"`
	}
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.Token}
	if err := doJSON(ctx, c.client, http.MethodGet, endpoint, headers, nil, &out); err != nil {
		return nil, fmt.Errorf("tasks list: %w", err)
	}
	if out.Items == nil {
		out.Items = []Task{}
	}
	return out.Items, nil
}
