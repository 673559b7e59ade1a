package ctxutil

import (
	"context"
	"testing"
	"time"

	"github.com/Spok95/school-words/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestUserRoundTrip(t *testing.T) {
	ctx := context.Background()
	_, ok := User(ctx)
	assert.False(t, ok)

	u := &models.User{ID: 7, Username: "ana"}
	got, ok := User(WithUser(ctx, u))
	assert.True(t, ok)
	assert.Same(t, u, got)

	_, ok = SessionID(WithSessionID(ctx, ""))
	assert.False(t, ok)
}

func TestWithDBTimeout_RespectsParentDeadline(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	ctx, cancel2 := WithDBTimeout(parent)
	defer cancel2()

	dl, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.LessOrEqual(t, time.Until(dl), 100*time.Millisecond)
}

func TestWithDBTimeout_Default(t *testing.T) {
	ctx, cancel := WithDBTimeout(context.Background())
	defer cancel()

	dl, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.InDelta(t, DefaultDBTimeout.Seconds(), time.Until(dl).Seconds(), 0.5)
}
