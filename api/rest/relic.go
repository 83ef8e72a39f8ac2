package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/relicsave/api/sse"
	"github.com/kasuganosora/relicsave/game/item"
	"github.com/kasuganosora/relicsave/game/record"
	"github.com/kasuganosora/relicsave/game/session"
)

// RelicHandler edits the relics of the authenticated session.
type RelicHandler struct {
	*editor
}

// NewRelicHandler creates a new RelicHandler.
func NewRelicHandler(e *editor) *RelicHandler {
	return &RelicHandler{editor: e}
}

// List handles GET /api/relics. state filters by verdict state.
func (h *RelicHandler) List(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	relics := s.Relics()
	if state := item.State(c.Query("state")); state != "" {
		kept := relics[:0]
		for _, r := range relics {
			if r.Verdict.State == state {
				kept = append(kept, r)
			}
		}
		relics = kept
	}
	c.JSON(http.StatusOK, gin.H{"relics": relics})
}

// Get handles GET /api/relics/:handle.
func (h *RelicHandler) Get(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	handle, ok := handleParam(c)
	if !ok {
		return
	}
	r, err := s.Relic(handle)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"relic": r})
}

type addRequest struct {
	Kind item.Kind `json:"kind" binding:"required"`
}

// Add handles POST /api/relics.
func (h *RelicHandler) Add(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	start := time.Now()
	r, err := s.AddRelic(req.Kind)
	h.record(c, s, mutation{action: "relic.add", event: sse.EventRelicAdded, handle: r.Handle, request: req}, start, r, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"relic": r})
}

type modifyRequest struct {
	item.RelicPatch
	Favorite *bool `json:"favorite,omitempty"`
}

// Modify handles PATCH /api/relics/:handle.
func (h *RelicHandler) Modify(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	handle, ok := handleParam(c)
	if !ok {
		return
	}
	var req modifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	start := time.Now()
	r, err := h.modify(s, handle, req)
	h.record(c, s, mutation{action: "relic.modify", event: sse.EventRelicModified, handle: handle, request: req}, start, r, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"relic": r})
}

func (h *RelicHandler) modify(s *session.Session, handle record.Handle, req modifyRequest) (item.Relic, error) {
	if req.ID != nil || req.Effects != nil || req.Curses != nil {
		if _, err := s.ModifyRelic(handle, req.RelicPatch); err != nil {
			return item.Relic{}, err
		}
	}
	if req.Favorite != nil {
		if err := s.SetFavorite(handle, *req.Favorite); err != nil {
			return item.Relic{}, err
		}
	}
	return s.Relic(handle)
}

// Remove handles DELETE /api/relics/:handle.
func (h *RelicHandler) Remove(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	handle, ok := handleParam(c)
	if !ok {
		return
	}
	start := time.Now()
	err := s.RemoveRelic(handle)
	h.record(c, s, mutation{action: "relic.remove", event: sse.EventRelicRemoved, handle: handle}, start, gin.H{"handle": handle}, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Sweep handles POST /api/relics/sweep.
func (h *RelicHandler) Sweep(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	start := time.Now()
	sum := s.Sweep()
	if h.metrics != nil {
		h.metrics.RecordSweep(sum.Illegal + sum.CurseIllegal)
	}
	h.record(c, s, mutation{action: "relic.sweep", event: sse.EventSweep}, start, sum, nil)
	c.JSON(http.StatusOK, gin.H{"summary": sum})
}

// Suggestions handles GET /api/relics/:handle/suggestions?slot=N.
func (h *RelicHandler) Suggestions(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	handle, ok := handleParam(c)
	if !ok {
		return
	}
	slot, err := strconv.Atoi(c.Query("slot"))
	if err != nil {
		badRequest(c, "invalid slot")
		return
	}
	effects, err := s.Suggestions(handle, slot)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"handle": handle, "slot": slot, "effects": effects})
}

// PlanRepair handles GET /api/relics/:handle/repair.
func (h *RelicHandler) PlanRepair(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	handle, ok := handleParam(c)
	if !ok {
		return
	}
	fix, found, err := s.PlanRepair(handle)
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusOK, gin.H{"handle": handle, "fix": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"handle": handle, "fix": fix})
}

type repairRequest struct {
	Handle *record.Handle `json:"handle,omitempty"`
}

// Repair handles POST /api/relics/repair. Without a handle every illegal or
// strict-invalid relic is repaired.
func (h *RelicHandler) Repair(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req repairRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	start := time.Now()
	if req.Handle != nil {
		res, err := s.Repair(*req.Handle)
		h.record(c, s, mutation{action: "relic.repair", event: sse.EventRepair, handle: *req.Handle, request: req}, start, res, err)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": res})
		return
	}
	rep, err := s.RepairAll()
	h.record(c, s, mutation{action: "relic.repair_all", event: sse.EventRepair}, start, rep, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": rep})
}
