package rest

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/relicsave/game/saveerr"
)

// statusOf maps an editor error to its HTTP status.
func statusOf(err error) int {
	var (
		ve *saveerr.ValidationError
		ce *saveerr.CapacityError
		le *saveerr.LookupError
		se *saveerr.StructuralError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case errors.As(err, &ce):
		return http.StatusConflict
	case errors.As(err, &le), errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.As(err, &se):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error", "code"}, plus "slot" for slot-level
// validation failures. Internal errors hide their message.
func respondError(c *gin.Context, err error) {
	status := statusOf(err)
	code := saveerr.Code(err)
	if errors.Is(err, fs.ErrNotExist) {
		code = "not-found"
	}
	body := gin.H{"error": err.Error(), "code": code}
	if status == http.StatusInternalServerError {
		body["error"] = "internal error"
	}
	var ve *saveerr.ValidationError
	if errors.As(err, &ve) && ve.Slot >= 0 {
		body["slot"] = ve.Slot
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": "bad-request"})
}
