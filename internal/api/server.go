package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	task "go-llamaclick/internal/agents/task/actor"
	"go-llamaclick/pkg/logger"
	"go-llamaclick/pkg/messages"
	"go-llamaclick/pkg/metrics"
	"go-llamaclick/pkg/models"
)

const statusTimeout = 5 * time.Second

type command struct {
	Objective string `json:"objective"`
}

type newTask struct {
	ID string `json:"id"`
}

type getStatus struct {
	Status models.Status `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Server struct {
	ac     *actor.RootContext
	server *http.Server
	state  *requestsCache
}

// New wires the task routes. Every accepted objective gets its own task
// actor with a Manager built by build.
func New(ac *actor.RootContext, build task.ManagerFactory, addr string) *Server {
	s := &Server{ac: ac, state: newRequestsCache()}

	r := chi.NewRouter()
	r.Use(logMiddleware())

	r.Get("/status/{id}", s.status)
	r.Post("/new", func(w http.ResponseWriter, r *http.Request) {
		s.create(w, r, build)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	s.server = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.server.Handler }

func (s *Server) create(w http.ResponseWriter, r *http.Request, build task.ManagerFactory) {
	log.Debug().Msg("new request")
	cmd := command{}
	if err := unmarshalRequestBody(r, &cmd); err != nil {
		log.Debug().Err(err).Msg("cannot parse body")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "unable to parse body"})
		return
	}
	if strings.TrimSpace(cmd.Objective) == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "objective is required"})
		return
	}

	decider := func(reason interface{}) actor.Directive {
		log.Error().Msgf("handling failure for task actor. reason: %v", reason)
		return actor.StopDirective
	}
	strategy := actor.NewOneForOneStrategy(3, 10000, decider)

	props := actor.PropsFromProducer(task.New(s.ac, build), actor.WithSupervisor(strategy))
	pid := s.ac.Spawn(props)

	id := uuid.New()
	s.state.add(id, pid)
	s.ac.Send(pid, messages.NewObjective{RequestID: id, Objective: cmd.Objective})

	log.Debug().Str(logger.RequestTaskID, id.String()).Msg("task has been started")
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, newTask{ID: id.String()})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		log.Debug().Msg("cannot parse id")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "unable to parse id"})
		return
	}
	pid, ok := s.state.get(id)
	if !ok {
		log.Debug().Str(logger.RequestTaskID, idParam).Msg("cannot find id")
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, errorResponse{Error: "unknown task"})
		return
	}

	res, err := s.ac.RequestFuture(pid, messages.GetStatus{}, statusTimeout).Result()
	if err != nil {
		s.state.remove(id)
		log.Error().Str(logger.RequestTaskID, idParam).Err(err).Msg("unable to get status from actor")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Error: "task is unavailable"})
		return
	}

	status, ok := res.(models.Status)
	if !ok {
		log.Error().Str(logger.RequestTaskID, idParam).Msgf("unknown status from actor: %T", res)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Error: "unexpected status"})
		return
	}
	render.JSON(w, r, getStatus{status})
}

func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("http server starting")
	err := s.server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop shuts the HTTP server down and stops every task actor.
func (s *Server) Stop(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	for _, pid := range s.state.all() {
		s.ac.Stop(pid)
	}
	if err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func logMiddleware() func(http.Handler) http.Handler {
	c := alice.New()
	c = c.Append(hlog.NewHandler(log.Logger))
	c = c.Append(hlog.RemoteAddrHandler("ip"))
	c = c.Append(hlog.UserAgentHandler("agent"))
	c = c.Append(hlog.RefererHandler("referer"))
	c = c.Append(hlog.RequestIDHandler("req_id", "Request-Id"))
	c = c.Append(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("verb", r.Method).
			Stringer("url", r.URL).
			Int("size", size).
			Int("status", status).
			Int64("duration", duration.Milliseconds()).
			Msg("REQ")
	}))

	return c.Then
}

func unmarshalRequestBody(req *http.Request, output interface{}) error {
	if req.Body == nil {
		return errors.New("invalid body in request")
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, 1<<20))
	if err != nil {
		return err
	}
	if err = req.Body.Close(); err != nil {
		return err
	}
	return json.Unmarshal(body, output)
}
