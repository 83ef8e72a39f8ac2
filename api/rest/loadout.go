package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/relicsave/api/sse"
	"github.com/kasuganosora/relicsave/game/record"
	"github.com/kasuganosora/relicsave/game/session"
)

// LoadoutHandler edits hero vessels and presets.
type LoadoutHandler struct {
	*editor
}

// NewLoadoutHandler creates a new LoadoutHandler.
func NewLoadoutHandler(e *editor) *LoadoutHandler {
	return &LoadoutHandler{editor: e}
}

// Heroes handles GET /api/heroes.
func (h *LoadoutHandler) Heroes(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"heroes": s.Heroes()})
}

// Hero handles GET /api/heroes/:hero.
func (h *LoadoutHandler) Hero(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	hero, ok := heroParam(c)
	if !ok {
		return
	}
	got, err := s.Hero(hero)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hero": got})
}

// Export handles GET /api/heroes/:hero/export.
func (h *LoadoutHandler) Export(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	hero, ok := heroParam(c)
	if !ok {
		return
	}
	exp, err := s.Export(hero)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exp)
}

type pushPresetRequest struct {
	Vessel uint32           `json:"vessel" binding:"required"`
	Relics [6]record.Handle `json:"relics"`
	Name   string           `json:"name"`
}

// PushPreset handles POST /api/heroes/:hero/presets.
func (h *LoadoutHandler) PushPreset(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	hero, ok := heroParam(c)
	if !ok {
		return
	}
	var req pushPresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	start := time.Now()
	p, err := s.PushPreset(hero, req.Vessel, req.Relics, req.Name)
	h.record(c, s, mutation{action: "preset.push", event: sse.EventLoadout, hero: hero, request: req}, start, p, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"preset": p})
}

// EquipPreset handles POST /api/heroes/:hero/presets/:index/equip.
func (h *LoadoutHandler) EquipPreset(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	hero, ok := heroParam(c)
	if !ok {
		return
	}
	index, ok := intParam(c, "index")
	if !ok {
		return
	}
	start := time.Now()
	err := s.EquipPreset(hero, index)
	h.respondHero(c, s, mutation{action: "preset.equip", event: sse.EventLoadout, hero: hero, request: gin.H{"index": index}}, start, err)
}

type slotRequest struct {
	Handle record.Handle `json:"handle"`
}

// ReplaceVesselRelic handles PUT /api/heroes/:hero/vessels/:vessel/slots/:slot.
// A zero handle clears the slot.
func (h *LoadoutHandler) ReplaceVesselRelic(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	hero, ok := heroParam(c)
	if !ok {
		return
	}
	vessel, err := strconv.ParseUint(c.Param("vessel"), 10, 32)
	if err != nil {
		badRequest(c, "invalid vessel")
		return
	}
	slot, ok := intParam(c, "slot")
	if !ok {
		return
	}
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	start := time.Now()
	err = s.ReplaceVesselRelic(hero, uint32(vessel), slot, req.Handle)
	m := mutation{
		action:  "vessel.slot",
		event:   sse.EventLoadout,
		handle:  req.Handle,
		hero:    hero,
		request: gin.H{"vessel": vessel, "slot": slot, "handle": req.Handle},
	}
	h.respondHero(c, s, m, start, err)
}

// ReplacePresetRelic handles PUT /api/heroes/:hero/presets/:index/slots/:slot.
func (h *LoadoutHandler) ReplacePresetRelic(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	hero, ok := heroParam(c)
	if !ok {
		return
	}
	index, ok := intParam(c, "index")
	if !ok {
		return
	}
	slot, ok := intParam(c, "slot")
	if !ok {
		return
	}
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	start := time.Now()
	err := s.ReplacePresetRelic(hero, index, slot, req.Handle)
	m := mutation{
		action:  "preset.slot",
		event:   sse.EventLoadout,
		handle:  req.Handle,
		hero:    hero,
		request: gin.H{"index": index, "slot": slot, "handle": req.Handle},
	}
	h.respondHero(c, s, m, start, err)
}

// respondHero records m and answers with the hero's updated loadout.
func (h *LoadoutHandler) respondHero(c *gin.Context, s *session.Session, m mutation, start time.Time, err error) {
	if err != nil {
		h.record(c, s, m, start, nil, err)
		respondError(c, err)
		return
	}
	got, herr := s.Hero(m.hero)
	h.record(c, s, m, start, got, herr)
	if herr != nil {
		respondError(c, herr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hero": got})
}
