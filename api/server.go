package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nyejames/midi-lx/chamsys"
	"github.com/nyejames/midi-lx/organ"
)

// Desk is the part of the desk runtime the HTTP surface drives.
type Desk interface {
	SetDeskAddress(addr netip.Addr)
	UpdateMappings(t chamsys.SlotTable)
	Snapshot() (chamsys.Snapshot, bool)
	Stop()
}

// Organ is the part of the organ bridge the HTTP surface drives.
type Organ interface {
	SetStop(stop organ.Stop, on bool)
	States() map[organ.Stop]bool
}

// Server exposes the control API over HTTP. Either side may be nil.
type Server struct {
	desk   Desk
	organ  Organ
	logger *slog.Logger
	engine *gin.Engine
}

func NewServer(desk Desk, org Organ, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{desk: desk, organ: org, logger: logger, engine: gin.New()}
	s.engine.Use(gin.Recovery())
	s.engine.Use(s.logRequests)

	s.engine.GET("/api/status", s.getStatus)
	s.engine.PUT("/api/desk", s.putDesk)
	s.engine.PUT("/api/mappings", s.putMappings)
	s.engine.POST("/api/stop", s.postStop)
	s.engine.GET("/api/organ/stops", s.getStops)
	s.engine.POST("/api/organ/stops/:id/:state", s.postStopOrgan)
	return s
}

// Handler is the routed engine, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("api: listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Debug("api: request", "method", c.Request.Method, "path", c.FullPath(), "status", c.Writer.Status(), "took", time.Since(start))
}

type statusResponse struct {
	Desk     string            `json:"desk"`
	Local    string            `json:"local"`
	Framed   bool              `json:"framed"`
	PrevSlot uint8             `json:"prevSlot"`
	SeqFwd   uint8             `json:"seqFwd"`
	SeqBkwd  uint8             `json:"seqBkwd"`
	Mappings map[string]string `json:"mappings"`
}

func (s *Server) getStatus(c *gin.Context) {
	if s.desk == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "desk runtime not running"})
		return
	}
	snap, ok := s.desk.Snapshot()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "desk runtime stopped"})
		return
	}

	resp := statusResponse{
		Local:    snap.Local.String(),
		Framed:   snap.Framed,
		PrevSlot: snap.PrevSlot,
		SeqFwd:   snap.Seq.Forward,
		SeqBkwd:  snap.Seq.Backward,
		Mappings: make(map[string]string, len(snap.Mappings)),
	}
	if snap.Desk.Addr().IsValid() {
		resp.Desk = snap.Desk.String()
	}
	for note, action := range snap.Mappings {
		resp.Mappings[strconv.Itoa(int(note))] = action.String()
	}
	c.JSON(http.StatusOK, resp)
}

type deskRequest struct {
	IP string `json:"ip" binding:"required"`
}

func (s *Server) putDesk(c *gin.Context) {
	if s.desk == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "desk runtime not running"})
		return
	}
	var req deskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	addr, err := netip.ParseAddr(req.IP)
	if err != nil || !addr.Unmap().Is4() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("not an IPv4 address: %q", req.IP)})
		return
	}
	s.desk.SetDeskAddress(addr.Unmap())
	c.JSON(http.StatusOK, gin.H{"desk": addr.Unmap().String()})
}

// putMappings takes {"48": "activate", "50": "intensity"} and replaces the
// whole table.
func (s *Server) putMappings(c *gin.Context) {
	if s.desk == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "desk runtime not running"})
		return
	}
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	raw := make(map[int]string, len(req))
	for k, v := range req {
		note, err := strconv.Atoi(k)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("note %q is not a number", k)})
			return
		}
		raw[note] = v
	}
	table, err := chamsys.ParseSlotTable(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.desk.UpdateMappings(table)
	c.JSON(http.StatusOK, gin.H{"entries": len(table)})
}

func (s *Server) postStop(c *gin.Context) {
	if s.desk == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "desk runtime not running"})
		return
	}
	s.desk.Stop()
	c.JSON(http.StatusAccepted, gin.H{"stopping": true})
}

type stopResponse struct {
	ID    uint8  `json:"id"`
	Name  string `json:"name"`
	On    bool   `json:"on"`
	Known bool   `json:"known"`
}

func (s *Server) getStops(c *gin.Context) {
	if s.organ == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "organ bridge not running"})
		return
	}
	states := s.organ.States()
	stops := organ.Stops()
	resp := make([]stopResponse, 0, len(stops))
	for _, st := range stops {
		on, known := states[st]
		resp = append(resp, stopResponse{ID: st.ID(), Name: st.String(), On: on, Known: known})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) postStopOrgan(c *gin.Context) {
	if s.organ == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "organ bridge not running"})
		return
	}
	stop, ok := organ.ParseStop(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown stop %q", c.Param("id"))})
		return
	}
	var on bool
	switch c.Param("state") {
	case "on":
		on = true
	case "off":
		on = false
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "state must be on or off"})
		return
	}
	s.organ.SetStop(stop, on)
	c.JSON(http.StatusOK, stopResponse{ID: stop.ID(), Name: stop.String(), On: on, Known: true})
}
