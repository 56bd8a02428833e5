package service

import (
	"testing"

	"github.com/pantheon-social/pantheon/internal/database/types"
	"github.com/pantheon-social/pantheon/internal/database/types/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngagementDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		actorID   uint64
		subjectID uint64
		action    enum.ActionType
		content   enum.ContentType
		want      float64
	}{
		{"comment on another user's reel", 1, 2, enum.ActionTypeComment, enum.ContentTypeReel, 3.0},
		{"like on another user's story", 1, 2, enum.ActionTypeLike, enum.ContentTypeStory, 1.0},
		{"share of another user's post", 1, 2, enum.ActionTypeShare, enum.ContentTypePost, 3.0},
		{"self-like carries no points", 7, 7, enum.ActionTypeLike, enum.ContentTypePost, 0},
		{"self-comment carries no points", 7, 7, enum.ActionTypeComment, enum.ContentTypeReel, 0},
		{"self-share carries no points", 7, 7, enum.ActionTypeShare, enum.ContentTypeStory, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			delta, err := engagementDelta(tt.actorID, tt.subjectID, tt.action, tt.content)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, delta, 0)
		})
	}
}

func TestEngagementDelta_UnknownCombination(t *testing.T) {
	t.Parallel()

	_, err := engagementDelta(1, 2, enum.ActionType(42), enum.ContentTypePost)
	require.ErrorIs(t, err, types.ErrUnknownEngagement)
}

func TestApplyEvent_InvalidSign(t *testing.T) {
	t.Parallel()

	s := &LedgerService{}

	for _, sign := range []int{0, 2, -2} {
		err := s.ApplyEvent(t.Context(), 1, 2, enum.ActionTypeLike, enum.ContentTypePost, 3, sign)
		require.ErrorIs(t, err, types.ErrInvalidSign)
	}
}

func TestApplyEvent_ShareNotReversible(t *testing.T) {
	t.Parallel()

	s := &LedgerService{}

	err := s.ApplyEvent(t.Context(), 1, 2, enum.ActionTypeShare, enum.ContentTypePost, 3, -1)
	require.ErrorIs(t, err, types.ErrShareNotReversible)
}
