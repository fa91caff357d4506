package server

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jask/kanban/internal/assignee"
)

type columnRequest struct {
	Label string `json:"label"`
}

type taskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type moveRequest struct {
	To    string `json:"to"`
	Index *int   `json:"index"`
}

type assigneeRequest struct {
	Name assignee.Name `json:"name"`
}

type filterRequest struct {
	Keyword string `json:"keyword"`
}

type modalRequest struct {
	TaskID      int64  `json:"taskId"`
	ColumnLabel string `json:"columnLabel"`
}

func (s *Server) routes() {
	api := s.e.Group("/api")
	api.GET("/columns", s.listColumns)
	api.POST("/columns", s.addColumn)
	api.GET("/labels", s.listLabels)
	api.PATCH("/columns/:label", s.renameColumn)
	api.DELETE("/columns/:label", s.deleteColumn)

	api.POST("/columns/:label/tasks", s.addTask)
	api.GET("/columns/:label/tasks/:id", s.getTask)
	api.PATCH("/columns/:label/tasks/:id", s.editTask)
	api.DELETE("/columns/:label/tasks/:id", s.deleteTask)
	api.POST("/columns/:label/tasks/:id/move", s.moveTask)
	api.POST("/columns/:label/tasks/:id/assignees", s.addAssignee)
	api.DELETE("/columns/:label/tasks/:id/assignees/:name", s.removeAssignee)
	api.GET("/columns/:label/tasks/:id/unassigned", s.unassigned)

	api.GET("/assignees", s.listAssignees)
	api.PUT("/filter", s.updateFilter)

	api.GET("/modal", s.getModal)
	api.POST("/modal", s.openModal)
	api.DELETE("/modal", s.closeModal)

	s.e.GET("/stream", s.stream)
}

// pathParam returns a decoded path parameter. echo routes on URL.Path, which
// is already decoded, unless the request path needed RawPath (an escaped
// "/", for instance); only then are the params still escaped.
func pathParam(c echo.Context, name string) string {
	raw := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return raw
	}
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func taskID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid task id")
	}
	return id, nil
}

// applied maps a store result to a response: no-ops become 404.
func applied(c echo.Context, ok bool) error {
	if !ok {
		return c.NoContent(http.StatusNotFound)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) listColumns(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Columns())
}

func (s *Server) listLabels(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Labels())
}

func (s *Server) addColumn(c echo.Context) error {
	var req columnRequest
	if err := c.Bind(&req); err != nil || req.Label == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "label required")
	}
	return c.JSON(http.StatusCreated, columnRequest{Label: s.store.AddColumn(req.Label)})
}

func (s *Server) renameColumn(c echo.Context) error {
	var req columnRequest
	if err := c.Bind(&req); err != nil || req.Label == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "label required")
	}
	return applied(c, s.store.UpdateColumnLabel(pathParam(c, "label"), req.Label))
}

func (s *Server) deleteColumn(c echo.Context) error {
	return applied(c, s.store.DeleteColumn(pathParam(c, "label")))
}

func (s *Server) addTask(c echo.Context) error {
	var req taskRequest
	if err := c.Bind(&req); err != nil || req.Title == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "title required")
	}
	desc := ""
	if req.Description != nil {
		desc = *req.Description
	}
	task, ok := s.store.AddTask(*req.Title, desc, pathParam(c, "label"))
	if !ok {
		return c.NoContent(http.StatusNotFound)
	}
	return c.JSON(http.StatusCreated, task)
}

func (s *Server) getTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}
	task, ok := s.store.Task(id, pathParam(c, "label"))
	if !ok {
		return c.NoContent(http.StatusNotFound)
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) editTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}
	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	label := pathParam(c, "label")
	switch {
	case req.Title != nil && req.Description != nil:
		return applied(c, s.store.EditTask(label, id, *req.Title, *req.Description))
	case req.Title != nil:
		return applied(c, s.store.UpdateTaskTitle(id, label, *req.Title))
	case req.Description != nil:
		return applied(c, s.store.UpdateTaskDescription(id, label, *req.Description))
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "title or description required")
	}
}

func (s *Server) deleteTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}
	return applied(c, s.store.DeleteTask(id, pathParam(c, "label")))
}

func (s *Server) moveTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}
	var req moveRequest
	if err := c.Bind(&req); err != nil || req.To == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "destination column required")
	}
	from := pathParam(c, "label")
	if req.Index == nil {
		return applied(c, s.store.UpdateTaskLabel(id, from, req.To))
	}
	return applied(c, s.store.MoveTask(id, from, req.To, *req.Index))
}

func (s *Server) addAssignee(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}
	var req assigneeRequest
	if err := c.Bind(&req); err != nil || !req.Name.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown assignee")
	}
	return applied(c, s.store.AddAssignee(id, pathParam(c, "label"), req.Name))
}

func (s *Server) removeAssignee(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}
	return applied(c, s.store.RemoveAssignee(id, pathParam(c, "label"), assignee.Name(pathParam(c, "name"))))
}

func (s *Server) unassigned(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}
	task, ok := s.store.Task(id, pathParam(c, "label"))
	if !ok {
		return c.NoContent(http.StatusNotFound)
	}
	return c.JSON(http.StatusOK, assignee.Unassigned(task.Assignees))
}

func (s *Server) listAssignees(c echo.Context) error {
	return c.JSON(http.StatusOK, assignee.All())
}

func (s *Server) updateFilter(c echo.Context) error {
	var req filterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	s.store.UpdateFilter(req.Keyword)
	return c.JSON(http.StatusOK, filterRequest{Keyword: s.store.Filter()})
}

func (s *Server) getModal(c echo.Context) error {
	return c.JSON(http.StatusOK, s.modal.State())
}

func (s *Server) openModal(c echo.Context) error {
	var req modalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	s.modal.Open(req.TaskID, req.ColumnLabel)
	return c.JSON(http.StatusOK, s.modal.State())
}

func (s *Server) closeModal(c echo.Context) error {
	s.modal.Close()
	return c.NoContent(http.StatusNoContent)
}
