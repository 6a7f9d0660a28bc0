package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"board-sync/internal/dto"
	"board-sync/internal/response"
	"board-sync/internal/service"
)

type TaskHandler struct {
	taskService service.TaskService
}

func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns all tasks of a team, newest first
func (h *TaskHandler) ListTasks(c *gin.Context) {
	teamID, ok := parseUUIDParam(c, "teamId")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), teamID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, tasks)
}

// CreateTask creates a new task on a team's board
func (h *TaskHandler) CreateTask(c *gin.Context) {
	teamID, ok := parseUUIDParam(c, "teamId")
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	ctx, ok := requestContextWithUser(c)
	if !ok {
		return
	}

	task, err := h.taskService.CreateTask(ctx, teamID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, task)
}

// UpdateTask applies a partial update to a task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	taskID, ok := parseUUIDParam(c, "taskId")
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), taskID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, task)
}

// DeleteTask permanently removes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID, ok := parseUUIDParam(c, "taskId")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), taskID); err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, gin.H{"deleted": true})
}
