package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/lalith-99/maintcal/internal/middleware"
	"github.com/lalith-99/maintcal/internal/optimizer"
	"github.com/lalith-99/maintcal/internal/service"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const streamWriteWait = 10 * time.Second

// Optimizer runs the solver for a tenant and installs its result.
type Optimizer interface {
	Run(ctx context.Context, tenant string, onProgress func(optimizer.Progress)) (*optimizer.Outcome, error)
}

// The stream carries no credentials or cookies and the tenant is only a data
// scope, so any origin may connect.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// OptimizeHandler holds the runner behind an interface so tests and other
// solvers can be swapped in. The bootstrapper is needed here as well as in
// the schedule handler: a tenant may call /optimize before it ever read a
// schedule, and the run needs the tenant's cloned config.
type OptimizeHandler struct {
	runner    Optimizer
	bootstrap *service.Bootstrapper
	logger    *zap.Logger
}

func NewOptimizeHandler(runner Optimizer, bootstrap *service.Bootstrapper, logger *zap.Logger) *OptimizeHandler {
	return &OptimizeHandler{runner: runner, bootstrap: bootstrap, logger: logger}
}

type optimizeResponse struct {
	*optimizer.Outcome
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// Run handles POST /v1/optimize. The run is synchronous.
func (h *OptimizeHandler) Run(c *gin.Context) {
	ctx := c.Request.Context()
	tenant := middleware.GetTenant(c)

	if err := h.bootstrap.EnsureTenantData(ctx, tenant); err != nil {
		writeError(c, h.logger, "failed to prepare tenant data", err)
		return
	}

	out, err := h.runner.Run(ctx, tenant, nil)
	if err != nil {
		writeError(c, h.logger, "optimizer run failed", err)
		return
	}
	c.JSON(http.StatusOK, optimizeResponse{Outcome: out, ElapsedSeconds: out.Elapsed.Seconds()})
}

// streamMessage is one websocket frame of GET /v1/optimize/stream.
type streamMessage struct {
	Type     string              `json:"type"` // progress, result or error
	Progress *optimizer.Progress `json:"progress,omitempty"`
	Result   *optimizeResponse   `json:"result,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// Stream handles GET /v1/optimize/stream. Progress updates are pushed as
// they arrive, followed by one result or error frame, then the socket is
// closed. Closing the socket from the client cancels the run.
func (h *OptimizeHandler) Stream(c *gin.Context) {
	tenant := middleware.GetTenant(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	g, ctx := errgroup.WithContext(c.Request.Context())
	done := make(chan struct{})

	// Reader: the client only ever closes; any read error cancels the run.
	g.Go(func() error {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				select {
				case <-done:
					return nil
				default:
					return errClientGone
				}
			}
		}
	})

	g.Go(func() error {
		defer conn.Close()
		defer close(done)

		send := func(msg streamMessage) error {
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			return conn.WriteJSON(msg)
		}

		if err := h.bootstrap.EnsureTenantData(ctx, tenant); err != nil {
			return send(streamMessage{Type: "error", Error: err.Error()})
		}

		var writeErr error
		out, err := h.runner.Run(ctx, tenant, func(p optimizer.Progress) {
			if writeErr != nil || p.Final != nil {
				return
			}
			writeErr = send(streamMessage{Type: "progress", Progress: &p})
		})
		if writeErr != nil {
			return writeErr
		}
		if err != nil {
			return send(streamMessage{Type: "error", Error: err.Error()})
		}

		_ = send(streamMessage{
			Type:   "result",
			Result: &optimizeResponse{Outcome: out, ElapsedSeconds: out.Elapsed.Seconds()},
		})
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"),
			time.Now().Add(streamWriteWait))
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errClientGone) {
		h.logger.Warn("optimizer stream ended with error", zap.String("tenant", tenant), zap.Error(err))
	}
}

var errClientGone = errors.New("client closed the stream")
