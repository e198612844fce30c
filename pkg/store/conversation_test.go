package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"GlowCare/models"
)

func TestQuickConsultationStartsWaiting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, created, err := s.StartConversation(ctx, 7, nil)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.ConversationWaiting, conv.Status)
	assert.Nil(t, conv.ExpertID)
}

func TestQuickConsultationReusesWaiting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, created, err := s.StartConversation(ctx, 7, nil)
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := s.StartConversation(ctx, 7, nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestTargetedStartBindsActiveExpert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedExpert(t, s, 3, models.ExpertActive, time.Now())

	expertID := uint(3)
	conv, created, err := s.StartConversation(ctx, 7, &expertID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.ConversationActive, conv.Status)
	require.NotNil(t, conv.ExpertID)
	assert.Equal(t, expertID, *conv.ExpertID)
}

func TestTargetedStartIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedExpert(t, s, 3, models.ExpertActive, time.Now())

	expertID := uint(3)
	first, _, err := s.StartConversation(ctx, 7, &expertID)
	require.NoError(t, err)

	second, created, err := s.StartConversation(ctx, 7, &expertID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	// reuse still works once the expert goes busy; only new bindings
	// require an active expert
	require.NoError(t, s.SetExpertStatus(ctx, 3, models.ExpertBusy))
	third, created, err := s.StartConversation(ctx, 7, &expertID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, third.ID)
}

func TestTargetedStartRejectsNonActiveExpert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedExpert(t, s, 3, models.ExpertBusy, time.Now())

	expertID := uint(3)
	_, _, err := s.StartConversation(ctx, 7, &expertID)
	assert.ErrorIs(t, err, ErrExpertUnavailable)

	unknown := uint(99)
	_, _, err = s.StartConversation(ctx, 7, &unknown)
	assert.ErrorIs(t, err, ErrExpertUnavailable)
}

func TestStatusExpertInvariant(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedExpert(t, s, 3, models.ExpertActive, time.Now())

	conv, _, err := s.StartConversation(ctx, 7, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ConversationWaiting, conv.Status)
	assert.Nil(t, conv.ExpertID)

	accepted, err := s.AcceptConversation(ctx, conv.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, models.ConversationActive, accepted.Status)
	require.NotNil(t, accepted.ExpertID)
	assert.Equal(t, uint(3), *accepted.ExpertID)
}

func TestAcceptSecondExpertLoses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedExpert(t, s, 3, models.ExpertActive, time.Now())
	seedExpert(t, s, 4, models.ExpertActive, time.Now())

	conv, _, err := s.StartConversation(ctx, 7, nil)
	require.NoError(t, err)

	winner, err := s.AcceptConversation(ctx, conv.ID, 3)
	require.NoError(t, err)
	require.NotNil(t, winner.ExpertID)

	_, err = s.AcceptConversation(ctx, conv.ID, 4)
	assert.ErrorIs(t, err, ErrAlreadyAssigned)

	// the winner's binding survives the losing attempt
	got, err := s.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(3), *got.ExpertID)
	assert.Equal(t, models.ConversationActive, got.Status)
}

func TestAcceptConcurrentSingleWinner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, _, err := s.StartConversation(ctx, 7, nil)
	require.NoError(t, err)

	const experts = 8
	for i := 0; i < experts; i++ {
		seedExpert(t, s, uint(100+i), models.ExpertActive, time.Now())
	}
	var wg sync.WaitGroup
	results := make([]error, experts)
	for i := 0; i < experts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = s.AcceptConversation(ctx, conv.ID, uint(100+i))
		}(i)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, ErrAlreadyAssigned):
			losses++
		}
	}
	assert.Equal(t, 1, wins, "exactly one accept must succeed")
	assert.Equal(t, experts-1, losses)

	got, err := s.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConversationActive, got.Status)
	require.NotNil(t, got.ExpertID)
}

func TestAcceptMissingConversation(t *testing.T) {
	s := newTestStore(t)
	seedExpert(t, s, 3, models.ExpertActive, time.Now())

	_, err := s.AcceptConversation(context.Background(), 12345, 3)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NotErrorIs(t, err, ErrAlreadyAssigned)
}

func TestAcceptRejectsNonActiveExpert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedExpert(t, s, 3, models.ExpertBusy, time.Now())
	seedExpert(t, s, 4, models.ExpertOffline, time.Now().Add(-time.Hour))

	conv, _, err := s.StartConversation(ctx, 7, nil)
	require.NoError(t, err)

	// a busy expert, an offline (e.g. reaped) expert whose token is
	// still valid, and an unknown expert all fail the same way
	for _, expertUserID := range []uint{3, 4, 99} {
		_, err = s.AcceptConversation(ctx, conv.ID, expertUserID)
		assert.ErrorIs(t, err, ErrExpertUnavailable, "expert %d", expertUserID)
	}

	// the conversation is untouched and still claimable
	got, err := s.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConversationWaiting, got.Status)
	assert.Nil(t, got.ExpertID)
}

func TestCloseIsTerminal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedExpert(t, s, 3, models.ExpertActive, time.Now())

	conv, _, err := s.StartConversation(ctx, 7, nil)
	require.NoError(t, err)

	closed, err := s.CloseConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConversationClosed, closed.Status)

	// closing again is a no-op
	closed, err = s.CloseConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConversationClosed, closed.Status)

	// no writes after close; accepting a closed conversation names
	// the real reason, not a phantom assignee
	_, err = s.AppendMessage(ctx, conv.ID, models.RoleCustomer, 7, "hello?", "", "")
	assert.ErrorIs(t, err, ErrConversationClosed)
	_, err = s.AcceptConversation(ctx, conv.ID, 3)
	assert.ErrorIs(t, err, ErrConversationClosed)
}

func TestClosedConversationNotReused(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedExpert(t, s, 3, models.ExpertActive, time.Now())

	expertID := uint(3)
	first, _, err := s.StartConversation(ctx, 7, &expertID)
	require.NoError(t, err)
	_, err = s.CloseConversation(ctx, first.ID)
	require.NoError(t, err)

	second, created, err := s.StartConversation(ctx, 7, &expertID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestWaitingPoolOldestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedExpert(t, s, 3, models.ExpertActive, time.Now())

	var ids []uint
	for _, customer := range []uint{7, 8, 9} {
		conv, _, err := s.StartConversation(ctx, customer, nil)
		require.NoError(t, err)
		ids = append(ids, conv.ID)
	}

	pool, err := s.WaitingConversations(ctx)
	require.NoError(t, err)
	require.Len(t, pool, 3)
	for i, conv := range pool {
		assert.Equal(t, ids[i], conv.ID)
	}

	// accepted conversations leave the pool
	_, err = s.AcceptConversation(ctx, ids[0], 3)
	require.NoError(t, err)
	pool, err = s.WaitingConversations(ctx)
	require.NoError(t, err)
	assert.Len(t, pool, 2)
}
