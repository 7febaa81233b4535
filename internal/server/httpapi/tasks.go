package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/models"
	"github.com/dmitrijs2005/gophtasks/internal/view"
	"github.com/gin-gonic/gin"
)

type createTaskRequest struct {
	Text     string          `json:"text"`
	Priority models.Priority `json:"priority"`
	Tags     []string        `json:"tags"`
	DueDate  json.RawMessage `json:"dueDate"`
}

type deleteTaskResponse struct {
	Message     string       `json:"message"`
	DeletedTask *models.Task `json:"deletedTask"`
}

// handleListTasks returns the owner's tasks. Without query parameters the
// store order (newest first) is kept; category, q and sort go through the
// view engine.
func (s *Server) handleListTasks(c *gin.Context) {
	q := view.Query{
		Category: view.Category(c.Query("category")),
		Search:   c.Query("q"),
		SortBy:   view.SortKey(c.Query("sort")),
	}

	tasks, err := s.tasks.View(ctxOf(c), ownerID(c), q)
	if err != nil {
		fail(c, s.logger, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleTaskStats(c *gin.Context) {
	stats, err := s.tasks.Stats(ctxOf(c), ownerID(c))
	if err != nil {
		fail(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	body, ok := s.readBody(c, schemaTaskCreate)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := json.Unmarshal(body, &req); err != nil {
		fail(c, s.logger, asValidationError(err))
		return
	}

	due, err := models.ParseOptionalDate(req.DueDate)
	if err != nil {
		fail(c, s.logger, common.NewValidationError(models.FieldDueDate, err.Error()))
		return
	}

	task, err := s.tasks.Create(ctxOf(c), ownerID(c), models.NewTask{
		Text:     req.Text,
		Priority: req.Priority,
		Tags:     req.Tags,
		DueDate:  due,
	})
	if err != nil {
		fail(c, s.logger, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	body, ok := s.readBody(c, schemaTaskUpdate)
	if !ok {
		return
	}

	var patch models.TaskPatch
	if err := json.Unmarshal(body, &patch); err != nil {
		fail(c, s.logger, asValidationError(err))
		return
	}

	task, err := s.tasks.Update(ctxOf(c), ownerID(c), c.Param("id"), patch)
	if err != nil {
		fail(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	task, err := s.tasks.Delete(ctxOf(c), ownerID(c), c.Param("id"))
	if err != nil {
		fail(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, deleteTaskResponse{
		Message:     "Task deleted successfully",
		DeletedTask: task,
	})
}

// readBody reads the request body and validates it against schema. On
// failure the request is aborted and ok is false.
func (s *Server) readBody(c *gin.Context, schema string) ([]byte, bool) {
	body, err := c.GetRawData()
	if err != nil {
		abort(c, newBadRequestError(msgInvalidRequestBody))
		return nil, false
	}
	if err := s.schemas.validate(schema, body); err != nil {
		fail(c, s.logger, err)
		return nil, false
	}
	return body, true
}

func asValidationError(err error) error {
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return common.NewValidationError("", msgInvalidRequestBody)
}
