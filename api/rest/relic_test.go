package rest

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/relicsave/game/item"
	"github.com/kasuganosora/relicsave/game/record"
	"github.com/kasuganosora/relicsave/game/session"
	"github.com/kasuganosora/relicsave/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type relicResponse struct {
	Relic item.Relic `json:"relic"`
}

func TestRelics_List(t *testing.T) {
	h := newHarness(t)
	tok := h.open(t).Token

	var all struct {
		Relics []item.Relic `json:"relics"`
	}
	w := h.do(http.MethodGet, "/api/relics", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &all)
	assert.Len(t, all.Relics, 6)

	var illegal struct {
		Relics []item.Relic `json:"relics"`
	}
	decode(t, h.do(http.MethodGet, "/api/relics?state=illegal", tok, nil), &illegal)
	assert.Len(t, illegal.Relics, 2)
	for _, r := range illegal.Relics {
		assert.Equal(t, item.Illegal, r.Verdict.State)
	}
}

func TestRelics_Get(t *testing.T) {
	h := newHarness(t)
	tok := h.open(t).Token

	var got relicResponse
	w := h.do(http.MethodGet, "/api/relics/0xC0800060", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &got)
	assert.Equal(t, testutil.HNormal, got.Relic.Handle)
	assert.Equal(t, []uint8{1}, got.Relic.EquippedBy)

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/relics/0xC0FFFFFF", tok, nil).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/relics/relic", tok, nil).Code)
}

func TestRelics_AddRemove(t *testing.T) {
	h := newHarness(t)
	tok := h.open(t).Token

	w := h.do(http.MethodPost, "/api/relics", tok, gin.H{"kind": "normal"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var added relicResponse
	decode(t, w, &added)
	assert.Equal(t, testutil.RelicNormal, added.Relic.ID)
	assert.True(t, added.Relic.Handle.IsRelic())

	w = h.do(http.MethodPost, "/api/relics", tok, gin.H{"kind": "legendary"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "unknown-kind", errorOf(t, w).Code)

	url := "/api/relics/" + added.Relic.Handle.String()
	require.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, url, tok, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, url, tok, nil).Code)
}

func TestRelics_RemoveEquipped(t *testing.T) {
	h := newHarness(t)
	tok := h.open(t).Token

	w := h.do(http.MethodDelete, "/api/relics/0xC0800060", tok, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "relic-equipped", errorOf(t, w).Code)
}

func TestRelics_Modify(t *testing.T) {
	h := newHarness(t)
	tok := h.open(t).Token

	w := h.do(http.MethodPatch, "/api/relics/0xC0800062", tok, gin.H{
		"id":       testutil.RelicBlue,
		"effects":  []uint32{testutil.EffB, testutil.Empty, testutil.Empty},
		"favorite": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got relicResponse
	decode(t, w, &got)
	assert.Equal(t, testutil.RelicBlue, got.Relic.ID)
	assert.Equal(t, testutil.EffB, got.Relic.Effects[0])
	assert.True(t, got.Relic.Favorite)
}

func TestRelics_SweepAndRepair(t *testing.T) {
	h := newHarness(t)
	tok := h.open(t).Token

	var swept struct {
		Summary item.Summary `json:"summary"`
	}
	w := h.do(http.MethodPost, "/api/relics/sweep", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &swept)
	assert.Equal(t, item.Summary{Relics: 6, Illegal: 2, StrictInvalid: 1}, swept.Summary)

	var plan struct {
		Fix *struct {
			ID uint32 `json:"id"`
		} `json:"fix"`
	}
	decode(t, h.do(http.MethodGet, "/api/relics/0xC0800062/repair", tok, nil), &plan)
	require.NotNil(t, plan.Fix)

	decode(t, h.do(http.MethodGet, "/api/relics/0xC0800060/repair", tok, nil), &plan)
	assert.Nil(t, plan.Fix)

	var single struct {
		Result session.RepairResult `json:"result"`
	}
	w = h.do(http.MethodPost, "/api/relics/repair", tok, gin.H{"handle": testutil.HMismatch})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &single)
	assert.Equal(t, testutil.RelicTriple, single.Result.From)
	assert.Equal(t, testutil.RelicNormal, single.Result.Fix.ID)

	var repaired struct {
		Report session.RepairReport `json:"report"`
	}
	w = h.do(http.MethodPost, "/api/relics/repair", tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &repaired)
	require.Len(t, repaired.Report.Repaired, 1)
	assert.Equal(t, testutil.HStrict, repaired.Report.Repaired[0].Handle)
	assert.Equal(t, []record.Handle{testutil.HUniqueDup}, repaired.Report.Failed)
}

func TestRelics_Suggestions(t *testing.T) {
	h := newHarness(t)
	tok := h.open(t).Token

	var resp struct {
		Effects []uint32 `json:"effects"`
	}
	w := h.do(http.MethodGet, "/api/relics/0xC0800060/suggestions?slot=1", tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &resp)
	assert.NotContains(t, resp.Effects, testutil.EffB)

	w = h.do(http.MethodGet, "/api/relics/0xC0800060/suggestions?slot=9", tok, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	e := errorOf(t, w)
	assert.Equal(t, "slot-invalid", e.Code)
	require.NotNil(t, e.Slot)
	assert.Equal(t, 9, *e.Slot)
}
