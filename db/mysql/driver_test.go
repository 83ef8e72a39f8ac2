package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDSN(t *testing.T) {
	dsn, err := normalizeDSN("editor:secret@tcp(db:3306)/relicsave?charset=utf8mb4")
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
	assert.Contains(t, dsn, "tcp(db:3306)/relicsave")
}

func TestNormalizeDSN_Invalid(t *testing.T) {
	_, err := normalizeDSN("editor:secret@tcp(db:3306)relicsave")
	require.Error(t, err)
}
