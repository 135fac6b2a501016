package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/complyhub/complyhub/internal/action"
)

//go:embed static
var staticFS embed.FS

type (
	Options struct {
		Address        string
		DisableReqLogs bool
		Shell          *Shell
		Logger         *slog.Logger
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
		log  *slog.Logger
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &server{
		opts: opts,
		app:  echo.New(),
		log:  log,
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.HidePort = true

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogMethod:  true,
			LogURI:     true,
			LogStatus:  true,
			LogLatency: true,
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				s.log.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency_ms", v.Latency.Milliseconds())
				return nil
			},
		}))
	}
	s.app.Use(middleware.Recover())

	s.app.HTTPErrorHandler = s.errorHandler

	s.app.GET("/", s.page)
	s.app.GET("/healthz", healthz)
	s.app.StaticFS("/static", echo.MustSubFS(staticFS, "static"))

	s.app.POST("/actions/:name", s.dispatch)
	s.app.GET("/tasks/:id", s.taskStatus)

	s.app.POST("/nav/page/:id", s.switchPage)
	s.app.POST("/nav/tab/:container/:tab", s.switchTab)
	s.app.POST("/nav/tab/:container/key/:key", s.moveTab)

	s.app.POST("/toasts/:id/dismiss", s.dismissToast)
	s.app.POST("/modals/:id/open", s.openModal)
	s.app.POST("/modals/:id/close", s.closeModal)
	s.app.POST("/modals/focus", s.focusNext)
	s.app.POST("/keys/escape", s.escape)
}

// Start serves until Stop is called.
func (s *server) Start() error {
	s.log.Info("dashboard listening", "address", s.opts.Address)
	if err := s.app.Start(s.opts.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (s *server) page(c echo.Context) error {
	return c.HTML(http.StatusOK, s.opts.Shell.HTML())
}

type ticketResponse struct {
	TaskID string `json:"task_id"`
	Action string `json:"action"`
	Style  string `json:"style"`
	State  string `json:"state"`
}

func (s *server) dispatch(c echo.Context) error {
	in, err := readInput(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed action input").SetInternal(err)
	}
	t, err := s.opts.Shell.Dispatch(c.Request().Context(), c.Param("name"), in)
	if err != nil {
		return err
	}
	code := http.StatusAccepted
	if t.Style == action.Instant {
		code = http.StatusOK
	}
	return c.JSON(code, ticketResponse{TaskID: t.ID, Action: t.Action, Style: t.Style.String(), State: t.State().String()})
}

// readInput accepts either a JSON object of strings or form fields.
func readInput(c echo.Context) (action.Input, error) {
	in := action.Input{}
	req := c.Request()
	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		if req.ContentLength == 0 {
			return in, nil
		}
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			return nil, err
		}
		return in, nil
	}
	form, err := c.FormParams()
	if err != nil {
		return nil, err
	}
	for k := range form {
		in[k] = form.Get(k)
	}
	return in, nil
}

func (s *server) taskStatus(c echo.Context) error {
	info, ok := s.opts.Shell.Task(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown task")
	}
	resp := echo.Map{"task_id": info.ID, "action": info.Key, "state": info.State.String()}
	if info.Err != nil {
		resp["error"] = info.Err.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *server) switchPage(c echo.Context) error {
	if !s.opts.Shell.SwitchPage(c.Param("id")) {
		return echo.NewHTTPError(http.StatusNotFound, "unknown page")
	}
	return c.JSON(http.StatusOK, echo.Map{"page": s.opts.Shell.ActivePage()})
}

func (s *server) switchTab(c echo.Context) error {
	if !s.opts.Shell.SwitchTab(c.Param("container"), c.Param("tab")) {
		return echo.NewHTTPError(http.StatusNotFound, "unknown tab")
	}
	return c.JSON(http.StatusOK, echo.Map{"tab": c.Param("tab")})
}

func (s *server) moveTab(c echo.Context) error {
	tab, ok := s.opts.Shell.MoveTab(c.Param("container"), c.Param("key"))
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, echo.Map{"tab": tab})
}

func (s *server) dismissToast(c echo.Context) error {
	if !s.opts.Shell.DismissToast(c.Param("id")) {
		return echo.NewHTTPError(http.StatusNotFound, "unknown toast")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *server) openModal(c echo.Context) error {
	focus, err := s.opts.Shell.OpenModal(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"modal": c.Param("id"), "focus": focus})
}

func (s *server) closeModal(c echo.Context) error {
	if !s.opts.Shell.CloseModal(c.Param("id")) {
		return echo.NewHTTPError(http.StatusNotFound, "modal not open")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *server) focusNext(c echo.Context) error {
	backward := c.QueryParam("shift") == "true"
	next, err := s.opts.Shell.FocusNext(c.QueryParam("current"), backward)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"focus": next})
}

func (s *server) escape(c echo.Context) error {
	id, ok := s.opts.Shell.Escape()
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, echo.Map{"closed": id})
}

// errorHandler maps action and shell errors onto status codes and a JSON
// body with an "error" message.
func (s *server) errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	body := echo.Map{"error": http.StatusText(http.StatusInternalServerError)}

	var (
		herr *echo.HTTPError
		ferr *action.FieldError
		cerr *action.ConfirmationError
	)
	switch {
	case errors.As(err, &herr):
		code = herr.Code
		body["error"] = herr.Message
	case errors.As(err, &ferr):
		code = http.StatusBadRequest
		body = echo.Map{"error": action.ErrInvalidInput.Error(), "field": ferr.Field, "message": ferr.Message}
	case errors.As(err, &cerr):
		code = http.StatusConflict
		body = echo.Map{"error": action.ErrConfirmationRequired.Error(), "prompt": cerr.Prompt}
	case errors.Is(err, action.ErrUnknownAction), errors.Is(err, ErrUnknownModal):
		code = http.StatusNotFound
		body["error"] = err.Error()
	case errors.Is(err, ErrNoModal):
		code = http.StatusConflict
		body["error"] = err.Error()
	default:
		s.log.Error("request failed", "path", c.Path(), "error", err)
	}

	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, body)
	}
	if err != nil {
		s.log.Error("writing error response", "error", err)
	}
}
