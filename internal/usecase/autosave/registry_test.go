package autosave

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/workshop-backend/internal/clock"
	"github.com/wekeepgrowing/workshop-backend/internal/domain/writeup"
)

type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) LoadDraft(ctx context.Context, jobNumber string) (Draft, error) {
	args := m.Called(ctx, jobNumber)
	return args.Get(0).(Draft), args.Error(1)
}

func TestRegistry_OpenLoadsOnce(t *testing.T) {
	loader := new(MockLoader)
	loader.On("LoadDraft", mock.Anything, "J7").
		Return(Draft{Fields: writeup.SectionText{Fault: "Stored"}}, nil).Once()

	r := NewRegistry(loader, &recordingSaver{}, clock.Fake(time.Now()), DefaultDelays, zap.NewNop())

	first, err := r.Open(context.Background(), "J7")
	require.NoError(t, err)
	second, err := r.Open(context.Background(), "J7")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "Stored", first.Draft().Fields.Fault)
	assert.Equal(t, 1, r.Len())
	loader.AssertExpectations(t)
}

func TestRegistry_OpenPropagatesLoadError(t *testing.T) {
	loader := new(MockLoader)
	loader.On("LoadDraft", mock.Anything, "J8").Return(Draft{}, errors.New("not found"))

	r := NewRegistry(loader, &recordingSaver{}, clock.Fake(time.Now()), DefaultDelays, zap.NewNop())

	_, err := r.Open(context.Background(), "J8")
	assert.Error(t, err)
	assert.Zero(t, r.Len())
}

func TestRegistry_DiscardDropsUnsavedChanges(t *testing.T) {
	loader := new(MockLoader)
	loader.On("LoadDraft", mock.Anything, "J9").Return(Draft{}, nil)
	saver := &recordingSaver{}
	clk := clock.Fake(time.Now())
	r := NewRegistry(loader, saver, clk, DefaultDelays, zap.NewNop())

	s, err := r.Open(context.Background(), "J9")
	require.NoError(t, err)
	require.NoError(t, s.Update(ChannelFields, "", setFault("Knock")))

	assert.True(t, r.Discard("J9"))
	assert.False(t, r.Discard("J9"))
	clk.Advance(time.Second)

	assert.Empty(t, saver.snapshots())
	_, ok := r.Get("J9")
	assert.False(t, ok)
}

func TestRegistry_CloseAllFlushes(t *testing.T) {
	loader := new(MockLoader)
	loader.On("LoadDraft", mock.Anything, mock.Anything).Return(Draft{}, nil)
	saver := &recordingSaver{}
	r := NewRegistry(loader, saver, clock.Fake(time.Now()), DefaultDelays, zap.NewNop())

	for _, job := range []string{"J1", "J2"} {
		s, err := r.Open(context.Background(), job)
		require.NoError(t, err)
		require.NoError(t, s.Update(ChannelFields, "", setFault("Fault on "+job)))
	}

	require.NoError(t, r.CloseAll(context.Background()))

	assert.Len(t, saver.snapshots(), 2)
	assert.Zero(t, r.Len())
}
