// Package http exposes the chat, locator and emergency flows as a JSON API
// so any front end (mobile app, web, test harness) can drive them.
package http

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"graminhealth/internal/chat"
	"graminhealth/internal/emergency"
	"graminhealth/internal/locator"
	"graminhealth/internal/registry"
	"graminhealth/pkg"
)

// Server bundles the dependencies required by the HTTP handlers.
type Server struct {
	Registry   *registry.Registry
	NewSession func() *chat.Session
	Locator    *locator.Locator
	Emergency  *emergency.Directory
	Logger     *log.Logger
}

// NewServer constructs a Server.
func NewServer(reg *registry.Registry, newSession func() *chat.Session, loc *locator.Locator, dir *emergency.Directory, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	}
	return &Server{
		Registry:   reg,
		NewSession: newSession,
		Locator:    loc,
		Emergency:  dir,
		Logger:     logger,
	}
}

// Register wires the routes onto an echo instance.
func (s *Server) Register(e *echo.Echo) {
	api := e.Group("/api")
	api.POST("/chat/sessions", s.createSession)
	api.GET("/chat/sessions/:id", s.getSession)
	api.DELETE("/chat/sessions/:id", s.deleteSession)
	api.POST("/chat/sessions/:id/messages", s.postMessage)
	api.POST("/locator/query", s.locatorQuery)
	api.GET("/emergency/contacts", s.emergencyContacts)
	api.POST("/emergency/dial", s.emergencyDial)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// createSession starts a fresh chat session. The response transcript
// already contains the welcome turn.
func (s *Server) createSession(c echo.Context) error {
	sess := s.NewSession()
	sess.Start()
	id := s.Registry.Add(sess)
	return c.JSON(http.StatusCreated, pkg.SessionResponse{
		SessionID:  id,
		Transcript: sess.Transcript(),
	})
}

func (s *Server) getSession(c echo.Context) error {
	sess, err := s.Registry.Get(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return c.JSON(http.StatusOK, pkg.SessionResponse{
		SessionID:  c.Param("id"),
		Transcript: sess.Transcript(),
	})
}

// deleteSession discards the session. The remote handle is dropped without
// any close negotiated with the backend.
func (s *Server) deleteSession(c echo.Context) error {
	s.Registry.Delete(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

// postMessage routes one user message through the session and returns the
// turns this call appended. Remote failures still answer 200: they are
// in-band error turns, not HTTP errors.
func (s *Server) postMessage(c echo.Context) error {
	sess, err := s.Registry.Get(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	var req pkg.ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Content) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty message")
	}
	appended := sess.Send(c.Request().Context(), req.Content)
	if len(appended) == 0 {
		chatSends.WithLabelValues("rejected").Inc()
		return echo.NewHTTPError(http.StatusConflict, "a send is already in flight")
	}
	last := appended[len(appended)-1]
	if last.IsError {
		chatSends.WithLabelValues("error").Inc()
	} else {
		chatSends.WithLabelValues("ok").Inc()
	}
	return c.JSON(http.StatusOK, pkg.SessionResponse{
		SessionID:  c.Param("id"),
		Transcript: appended,
	})
}

// locatorQuery runs one grounded search for the given coordinate. Empty
// results and remote failures both answer 200 with the corresponding
// display state; only an invalid coordinate is an HTTP error.
func (s *Server) locatorQuery(c echo.Context) error {
	var req pkg.LocateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	coord := pkg.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude}
	if err := coord.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	snap := s.Locator.Query(c.Request().Context(), coord)
	locatorQueries.WithLabelValues(string(snap.State)).Inc()
	resp := pkg.LocateResponse{
		State:   string(snap.State),
		Message: snap.Message,
	}
	if snap.Result != nil {
		resp.SummaryText = snap.Result.SummaryText
		resp.Facilities = snap.Result.Facilities
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) emergencyContacts(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Emergency.Contacts())
}

func (s *Server) emergencyDial(c echo.Context) error {
	var req pkg.DialRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.Emergency.Dial(req.Number); err != nil {
		if errors.Is(err, emergency.ErrUnknownNumber) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		s.Logger.Printf("dial failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "dial failed")
	}
	return c.NoContent(http.StatusNoContent)
}
