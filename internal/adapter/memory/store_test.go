package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strays/internal/domain"
)

func TestAddParticipantAfterCancel(t *testing.T) {
	ctx := context.Background()
	events := New().Events()
	require.NoError(t, events.Create(ctx, &domain.Event{
		ID: "ev-1", Title: "Feeding drive", Location: "Cubbon Park", EventTime: time.Now().Add(24 * time.Hour),
	}))

	joined, err := events.AddParticipant(ctx, "ev-1", "u1")
	require.NoError(t, err)
	assert.True(t, joined)

	_, err = events.Cancel(ctx, "ev-1")
	require.NoError(t, err)

	joined, err = events.AddParticipant(ctx, "ev-1", "u2")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.False(t, joined)

	_, err = events.AddParticipant(ctx, "missing", "u2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
