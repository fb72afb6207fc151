package access

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/promptvault/promptvault/internal/models"
)

// MockCatalog implements access.Catalog.
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) PublishedPromptIDs(ctx context.Context) ([]int, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]int), args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestPolicy(catalog Catalog, freeLimit int) *Policy {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(logger, catalog, freeLimit)
}

func TestIsPaidUser(t *testing.T) {
	assert.False(t, IsPaidUser(nil))
	assert.False(t, IsPaidUser(&models.User{SubscriptionStatus: models.SubscriptionFree}))
	assert.True(t, IsPaidUser(&models.User{SubscriptionStatus: models.SubscriptionPaid}))
}

func TestItemIndex(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("PublishedPromptIDs", mock.Anything).Return([]int{50, 40, 30, 20, 10}, nil)
	policy := newTestPolicy(catalog, 3)

	index, err := policy.ItemIndex(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 2, index)

	index, err = policy.ItemIndex(context.Background(), 999)
	require.NoError(t, err)
	assert.Equal(t, -1, index)
}

func TestCanAccessItem_FreeTierBoundary(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("PublishedPromptIDs", mock.Anything).Return([]int{50, 40, 30, 20, 10}, nil)
	policy := newTestPolicy(catalog, 3)

	tests := []struct {
		id   int
		want bool
	}{
		{50, true},
		{40, true},
		{30, true},
		{20, false},
		{10, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, policy.CanAccessItem(context.Background(), nil, tt.id),
			"anonymous access to id=%d", tt.id)
	}
}

func TestCanAccessItem_PaidBypass(t *testing.T) {
	catalog := new(MockCatalog)
	policy := newTestPolicy(catalog, 3)
	paid := &models.User{ID: "u-1", SubscriptionStatus: models.SubscriptionPaid}

	assert.True(t, policy.CanAccessItem(context.Background(), paid, 10))
	assert.True(t, policy.CanAccessItem(context.Background(), paid, 999), "paid bypass holds even for unknown ids")
	catalog.AssertNotCalled(t, "PublishedPromptIDs", mock.Anything)
}

func TestCanAccessPosition_NoCatalogQuery(t *testing.T) {
	catalog := new(MockCatalog)
	policy := newTestPolicy(catalog, 3)
	free := &models.User{ID: "u-1", SubscriptionStatus: models.SubscriptionFree}
	paid := &models.User{ID: "u-2", SubscriptionStatus: models.SubscriptionPaid}

	assert.True(t, policy.CanAccessPosition(nil, 0))
	assert.True(t, policy.CanAccessPosition(free, 2))
	assert.False(t, policy.CanAccessPosition(free, 3))
	assert.True(t, policy.CanAccessPosition(paid, 3))
	catalog.AssertNotCalled(t, "PublishedPromptIDs", mock.Anything)
}

func TestCanAccessItem_MissingItemFailsClosed(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("PublishedPromptIDs", mock.Anything).Return([]int{50, 40, 30}, nil)
	policy := newTestPolicy(catalog, 3)
	free := &models.User{ID: "u-1", SubscriptionStatus: models.SubscriptionFree}

	assert.False(t, policy.CanAccessItem(context.Background(), free, 999))
}

func TestCanAccessItem_QueryErrorFailsClosed(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("PublishedPromptIDs", mock.Anything).Return(nil, errors.New("cms unreachable"))
	policy := newTestPolicy(catalog, 3)

	assert.False(t, policy.CanAccessItem(context.Background(), nil, 50))
}

func TestCanAccessItem_OrderingShiftChangesWindow(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("PublishedPromptIDs", mock.Anything).Return([]int{50, 40, 30}, nil).Once()
	catalog.On("PublishedPromptIDs", mock.Anything).Return([]int{60, 50, 40, 30}, nil).Once()
	policy := newTestPolicy(catalog, 3)

	assert.True(t, policy.CanAccessItem(context.Background(), nil, 30))
	assert.False(t, policy.CanAccessItem(context.Background(), nil, 30),
		"a newly published prompt pushes 30 out of the free window")
}
