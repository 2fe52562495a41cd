package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestShareService_ShareAndResolve(t *testing.T) {
	f := newFixture(t, 20)
	f.mustIngest(t, "alice", "doc-1", animals)
	ctx := context.Background()
	_, err := f.answers.Answer(ctx, ask("alice", "doc-1", "What did the dog do?", 1))
	require.NoError(t, err)

	svc := NewShareService(f.history, f.shares)

	share, err := svc.Share(ctx, "alice", 1)
	require.NoError(t, err)
	assert.NotEmpty(t, share.Token)
	assert.Equal(t, "It ran.", share.Answer)
	assert.Equal(t, string(domain.ModelGPT35Turbo), share.Model)

	got, err := svc.Resolve(ctx, share.Token)
	require.NoError(t, err)
	assert.Equal(t, share.Answer, got.Answer)
	assert.Equal(t, "alice", got.OwnerID)
}

func TestShareService_Errors(t *testing.T) {
	f := newFixture(t, 20)
	f.mustIngest(t, "alice", "doc-1", animals)
	ctx := context.Background()
	_, err := f.answers.Answer(ctx, ask("alice", "doc-1", "dog?", 1))
	require.NoError(t, err)

	svc := NewShareService(f.history, f.shares)

	_, err = svc.Share(ctx, "alice", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "user turns cannot be shared")

	_, err = svc.Share(ctx, "alice", 2)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Share(ctx, "alice", -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Resolve(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Resolve(ctx, "no-such-token")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
