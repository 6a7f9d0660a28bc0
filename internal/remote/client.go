package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"board-sync/internal/dto"
	"board-sync/internal/response"
)

// BackendError describes a failed backend call
type BackendError struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
}

// Error implements the error interface
func (e *BackendError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: backend returned %d (%s): %s", e.Op, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Client talks to the board API over HTTP and WebSocket. It is a stateless
// gateway: every call is a single round trip, failures are surfaced as
// *BackendError, and no retries happen at this layer.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a board API client. baseURL includes the API base path,
// e.g. "http://localhost:8080/api/board".
func NewClient(baseURL, token string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// ListFields returns the team's non-archived fields sorted by position.
// An empty board returns an empty slice, not an error.
func (c *Client) ListFields(ctx context.Context, teamID uuid.UUID) ([]dto.FieldResponse, error) {
	var fields []dto.FieldResponse
	err := c.do(ctx, "list fields", http.MethodGet,
		fmt.Sprintf("/teams/%s/fields", teamID), nil, &fields)
	if err != nil {
		return nil, err
	}
	return fields, nil
}

// ListTasks returns the team's tasks newest-created first
func (c *Client) ListTasks(ctx context.Context, teamID uuid.UUID) ([]dto.TaskResponse, error) {
	var tasks []dto.TaskResponse
	err := c.do(ctx, "list tasks", http.MethodGet,
		fmt.Sprintf("/teams/%s/tasks", teamID), nil, &tasks)
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateField creates a new field; position defaults to append-to-end server side
func (c *Client) CreateField(ctx context.Context, teamID uuid.UUID, req dto.CreateFieldRequest) (*dto.FieldResponse, error) {
	var field dto.FieldResponse
	err := c.do(ctx, "create field", http.MethodPost,
		fmt.Sprintf("/teams/%s/fields", teamID), req, &field)
	if err != nil {
		return nil, err
	}
	return &field, nil
}

// UpdateField applies a partial update and returns the updated record
func (c *Client) UpdateField(ctx context.Context, fieldID uuid.UUID, req dto.UpdateFieldRequest) (*dto.FieldResponse, error) {
	var field dto.FieldResponse
	err := c.do(ctx, "update field", http.MethodPatch,
		fmt.Sprintf("/fields/%s", fieldID), req, &field)
	if err != nil {
		return nil, err
	}
	return &field, nil
}

// ArchiveField soft-deletes a field. Tasks referencing it are not touched.
func (c *Client) ArchiveField(ctx context.Context, fieldID uuid.UUID) (*dto.FieldResponse, error) {
	var field dto.FieldResponse
	err := c.do(ctx, "archive field", http.MethodPost,
		fmt.Sprintf("/fields/%s/archive", fieldID), nil, &field)
	if err != nil {
		return nil, err
	}
	return &field, nil
}

// CreateTask creates a task in the given team
func (c *Client) CreateTask(ctx context.Context, teamID uuid.UUID, req dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	var task dto.TaskResponse
	err := c.do(ctx, "create task", http.MethodPost,
		fmt.Sprintf("/teams/%s/tasks", teamID), req, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask applies a partial update and returns the updated record
func (c *Client) UpdateTask(ctx context.Context, taskID uuid.UUID, req dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	var task dto.TaskResponse
	err := c.do(ctx, "update task", http.MethodPatch,
		fmt.Sprintf("/tasks/%s", taskID), req, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask permanently deletes a task
func (c *Client) DeleteTask(ctx context.Context, taskID uuid.UUID) error {
	return c.do(ctx, "delete task", http.MethodDelete,
		fmt.Sprintf("/tasks/%s", taskID), nil, nil)
}

// do performs one request/response round trip. out, when non-nil, receives
// the unwrapped "data" object of the success envelope.
func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &BackendError{Op: op, Message: fmt.Sprintf("marshal request: %v", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &BackendError{Op: op, Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Backend request failed",
			zap.String("op", op),
			zap.Error(err),
		)
		return &BackendError{Op: op, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &BackendError{Op: op, StatusCode: resp.StatusCode, Message: fmt.Sprintf("read response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody response.ErrorResponse
		if json.Unmarshal(raw, &errBody) == nil && errBody.Error.Message != "" {
			return &BackendError{
				Op:         op,
				StatusCode: resp.StatusCode,
				Code:       errBody.Error.Code,
				Message:    errBody.Error.Message,
			}
		}
		return &BackendError{Op: op, StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	if out == nil {
		return nil
	}

	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return &BackendError{Op: op, StatusCode: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return &BackendError{Op: op, StatusCode: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}
