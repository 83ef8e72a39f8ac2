package saveerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_Message(t *testing.T) {
	assert.Equal(t, "color-mismatch (slot 2): want Red", Invalid("color-mismatch", 2, "want %s", "Red").Error())
	assert.Equal(t, "preset-empty", (&ValidationError{Code: "preset-empty", Slot: -1}).Error())
	assert.Equal(t, "conflict: effect", Invalid("conflict", -1, "effect").Error())
}

func TestErrors_As(t *testing.T) {
	err := fmt.Errorf("add relic: %w", &CapacityError{Resource: "inventory entry"})
	var ce *CapacityError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "inventory entry", ce.Resource)

	err = fmt.Errorf("remove: %w", &LookupError{Kind: "relic", ID: 0xC0800055})
	var le *LookupError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, le.Error(), "relic")

	assert.Equal(t, "structural error at 0x14: short", Structural(0x14, "short").Error())
}

func TestCode(t *testing.T) {
	assert.Equal(t, "", Code(nil))
	assert.Equal(t, "preset-duplicate", Code(fmt.Errorf("push: %w", Invalid("preset-duplicate", -1, "same"))))
	assert.Equal(t, "capacity", Code(&CapacityError{Resource: "preset area"}))
	assert.Equal(t, "not-found", Code(&LookupError{Kind: "hero", ID: 11}))
	assert.Equal(t, "structural", Code(Structural(0, "bad")))
	assert.Equal(t, "internal", Code(errors.New("disk")))
}
