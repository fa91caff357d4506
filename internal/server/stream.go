package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	eventBoard = "board"
	eventModal = "modal"
)

// stream sends the current board and modal state, then a fresh copy of
// whichever changed until the client goes away.
func (s *Server) stream(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return c.String(http.StatusInternalServerError, "stream unsupported")
	}
	ctx := c.Request().Context()
	boardCh := s.boardEvents.Subscribe()
	defer s.boardEvents.Unsubscribe(boardCh)
	modalCh := s.modalEvents.Subscribe()
	defer s.modalEvents.Unsubscribe(modalCh)

	if err := s.writeEvent(c, eventBoard, s.store.Columns()); err != nil {
		return err
	}
	if err := s.writeEvent(c, eventModal, s.modal.State()); err != nil {
		return err
	}
	flusher.Flush()
	for {
		var err error
		select {
		case <-ctx.Done():
			return nil
		case <-boardCh:
			err = s.writeEvent(c, eventBoard, s.store.Columns())
		case <-modalCh:
			err = s.writeEvent(c, eventModal, s.modal.State())
		}
		if err != nil {
			return err
		}
		flusher.Flush()
	}
}

func (s *Server) writeEvent(c echo.Context, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.WithError(err).WithField("event", name).Error("marshal stream event")
		return err
	}
	if _, err := fmt.Fprintf(c.Response(), "event: %s\ndata: %s\n\n", name, data); err != nil {
		s.log.WithError(err).WithField("event", name).Debug("stream write failed")
		return err
	}
	return nil
}
