package utils

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActorContextRoundTrip(t *testing.T) {
	ctx := SetActorContext(context.Background(), "drv-1", "tunde@example.com", "driver")

	id, ok := GetActorIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "drv-1", id)
	assert.Equal(t, "tunde@example.com", GetActorEmailFromContext(ctx))
	assert.Equal(t, "driver", GetActorRoleFromContext(ctx))
}

func TestActorContextMissing(t *testing.T) {
	id, ok := GetActorIDFromContext(context.Background())
	assert.False(t, ok)
	assert.Empty(t, id)
	assert.Empty(t, GetActorRoleFromContext(context.Background()))
}

func TestActorContextEmptyIDIsNotAuthenticated(t *testing.T) {
	ctx := SetActorContext(context.Background(), "", "", "")
	_, ok := GetActorIDFromContext(ctx)
	assert.False(t, ok)
}

func TestGenerateOrderNumber(t *testing.T) {
	n := GenerateOrderNumber()
	assert.True(t, strings.HasPrefix(n, "ORD-"))

	parts := strings.Split(n, "-")
	assert.Len(t, parts, 4)
	assert.Len(t, parts[1], 8) // date
	assert.Len(t, parts[2], 6) // time
	assert.Len(t, parts[3], 4) // random suffix
}

func TestGenerateTxRef(t *testing.T) {
	a := GenerateTxRef()
	b := GenerateTxRef()

	assert.True(t, strings.HasPrefix(a, "CHP-"))
	assert.NotEqual(t, a, b)
}
