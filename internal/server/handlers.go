package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/five82/spotwatch/internal/state"
)

type healthResponse struct {
	Status   string `json:"status"`
	RunID    string `json:"runId"`
	Polling  int    `json:"polling"`
	Stopped  int    `json:"stopped"`
	Rejected int    `json:"rejected"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// health reports 503 once no target is being polled any more.
func (s *Server) health(c *gin.Context) {
	snap := s.store.Snapshot()
	counts := snap.Counts()
	resp := healthResponse{
		Status:   "ok",
		RunID:    snap.RunID,
		Polling:  counts[state.PhasePolling],
		Stopped:  counts[state.PhaseStopped],
		Rejected: counts[state.PhaseRejected],
	}
	code := http.StatusOK
	if resp.Polling == 0 {
		resp.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}

// targets returns the snapshot, optionally filtered with ?phase=.
func (s *Server) targets(c *gin.Context) {
	snap := s.store.Snapshot()
	phase := c.Query("phase")
	if phase == "" {
		c.JSON(http.StatusOK, snap)
		return
	}
	switch state.Phase(phase) {
	case state.PhasePolling, state.PhaseStopped, state.PhaseRejected:
	default:
		c.JSON(http.StatusBadRequest, errorResponse{Error: "unknown phase " + phase})
		return
	}
	filtered := make([]state.TargetStatus, 0, len(snap.Targets))
	for _, t := range snap.Targets {
		if t.Phase == state.Phase(phase) {
			filtered = append(filtered, t)
		}
	}
	snap.Targets = filtered
	c.JSON(http.StatusOK, snap)
}
