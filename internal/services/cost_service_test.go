package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costmanager/internal/core"
)

// fakeStore is an in-memory Store used to exercise the service without SQLite.
type fakeStore struct {
	users  map[int64]core.User
	costs  []core.Cost
	nextID int64

	rangeCalls int
	lastStart  time.Time
	lastEnd    time.Time
	failWith   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[int64]core.User), nextID: 1}
}

func (f *fakeStore) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if f.failWith != nil {
		return core.User{}, f.failWith
	}
	if _, ok := f.users[u.ID]; ok {
		return core.User{}, core.ErrDuplicateID
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeStore) GetUser(ctx context.Context, id int64) (core.User, error) {
	if f.failWith != nil {
		return core.User{}, f.failWith
	}
	u, ok := f.users[id]
	if !ok {
		return core.User{}, core.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) CreateCost(ctx context.Context, c core.Cost) (core.Cost, error) {
	if f.failWith != nil {
		return core.Cost{}, f.failWith
	}
	c.ID = f.nextID
	f.nextID++
	f.costs = append(f.costs, c)
	return c, nil
}

func (f *fakeStore) ListCostsByUser(ctx context.Context, userID int64) ([]core.Cost, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []core.Cost
	for _, c := range f.costs {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) ListCostsByUserAndRange(ctx context.Context, userID int64, start, end time.Time) ([]core.Cost, error) {
	f.rangeCalls++
	f.lastStart, f.lastEnd = start, end
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []core.Cost
	for _, c := range f.costs {
		if c.UserID == userID && !c.Date.Before(start) && !c.Date.After(end) {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakePublisher struct {
	published []int64
	err       error
}

func (f *fakePublisher) PublishCostCreated(ctx context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, id)
	return nil
}

func seedUser(t *testing.T, store *fakeStore, id int64) {
	t.Helper()
	_, err := store.CreateUser(context.Background(), core.User{
		ID:            id,
		FirstName:     "Test",
		LastName:      "User",
		Birthday:      time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		MaritalStatus: core.Single,
	})
	require.NoError(t, err)
}

func TestCreateUserValidates(t *testing.T) {
	store := newFakeStore()
	svc := NewCostService(store, nil)

	_, err := svc.CreateUser(context.Background(), core.User{ID: 1})
	assert.True(t, core.IsValidationError(err), "expected validation error, got %v", err)
	assert.Empty(t, store.users)
}

func TestCreateUserDuplicate(t *testing.T) {
	store := newFakeStore()
	svc := NewCostService(store, nil)
	seedUser(t, store, 1)

	_, err := svc.CreateUser(context.Background(), core.User{
		ID:            1,
		FirstName:     "Other",
		LastName:      "Person",
		Birthday:      time.Date(1980, 5, 5, 0, 0, 0, 0, time.UTC),
		MaritalStatus: core.Married,
	})
	assert.ErrorIs(t, err, core.ErrDuplicateID)
}

func TestCreateCostRejectsUnknownUser(t *testing.T) {
	store := newFakeStore()
	svc := NewCostService(store, nil)

	_, err := svc.CreateCost(context.Background(), core.Cost{
		UserID:      42,
		Description: "lunch",
		Category:    core.Food,
		Sum:         10,
	})
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Empty(t, store.costs, "rejected cost must leave no side effect")
}

func TestCreateCostDefaultsDate(t *testing.T) {
	store := newFakeStore()
	svc := NewCostService(store, nil)
	seedUser(t, store, 42)

	before := time.Now().UTC()
	created, err := svc.CreateCost(context.Background(), core.Cost{
		UserID:      42,
		Description: "lunch",
		Category:    core.Food,
		Sum:         10,
	})
	require.NoError(t, err)

	assert.False(t, created.Date.IsZero())
	assert.False(t, created.Date.Before(before))
	assert.NotZero(t, created.ID)
}

func TestCreateCostPublishesEvent(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := NewCostService(store, pub)
	seedUser(t, store, 42)

	created, err := svc.CreateCost(context.Background(), core.Cost{
		UserID:      42,
		Description: "gym",
		Category:    core.Sport,
		Sum:         40,
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{created.ID}, pub.published)
}

func TestCreateCostSurvivesPublishFailure(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewCostService(store, pub)
	seedUser(t, store, 42)

	created, err := svc.CreateCost(context.Background(), core.Cost{
		UserID:      42,
		Description: "gym",
		Category:    core.Sport,
		Sum:         40,
	})
	require.NoError(t, err, "publish failure must not fail the request")
	assert.NotZero(t, created.ID)
}

func TestGetUserWithTotal(t *testing.T) {
	store := newFakeStore()
	svc := NewCostService(store, nil)
	seedUser(t, store, 9999)

	ctx := context.Background()
	for _, sum := range []float64{10, 15} {
		_, err := svc.CreateCost(ctx, core.Cost{
			UserID:      9999,
			Description: "food run",
			Category:    core.Food,
			Sum:         sum,
		})
		require.NoError(t, err)
	}

	user, total, err := svc.GetUserWithTotal(ctx, 9999)
	require.NoError(t, err)
	assert.Equal(t, "Test", user.FirstName)
	assert.Equal(t, float64(25), total)
}

func TestGetUserWithTotalZeroCosts(t *testing.T) {
	store := newFakeStore()
	svc := NewCostService(store, nil)
	seedUser(t, store, 9999)

	_, total, err := svc.GetUserWithTotal(context.Background(), 9999)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestGetUserWithTotalNotFound(t *testing.T) {
	store := newFakeStore()
	svc := NewCostService(store, nil)

	_, _, err := svc.GetUserWithTotal(context.Background(), 12345)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMonthlyReportQueriesFullMonth(t *testing.T) {
	store := newFakeStore()
	svc := NewCostService(store, nil)
	seedUser(t, store, 9999)

	ctx := context.Background()
	report, err := svc.MonthlyReport(ctx, "9999", 2025, 6)
	require.NoError(t, err)

	assert.Equal(t, "9999", report.UserID)
	assert.Equal(t, 2025, report.Year)
	assert.Equal(t, 6, report.Month)
	require.Len(t, report.Groups, 5)

	wantStart, wantEnd := core.MonthRange(2025, 6)
	assert.True(t, store.lastStart.Equal(wantStart))
	assert.True(t, store.lastEnd.Equal(wantEnd))
}

func TestMonthlyReportScenario(t *testing.T) {
	store := newFakeStore()
	svc := NewCostService(store, nil)
	seedUser(t, store, 9999)

	ctx := context.Background()
	dates := []time.Time{
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
	}
	for i, sum := range []float64{10, 15} {
		_, err := svc.CreateCost(ctx, core.Cost{
			UserID:      9999,
			Description: "groceries",
			Category:    core.Food,
			Sum:         sum,
			Date:        dates[i],
		})
		require.NoError(t, err)
	}

	report, err := svc.MonthlyReport(ctx, "9999", 2025, 6)
	require.NoError(t, err)

	food := report.Groups[0]
	require.Equal(t, core.Food, food.Category)
	require.Len(t, food.Items, 2)
	assert.Equal(t, 1, food.Items[0].Day)
	assert.Equal(t, 2, food.Items[1].Day)
	assert.Equal(t, float64(10), food.Items[0].Sum)
	assert.Equal(t, float64(15), food.Items[1].Sum)

	for _, g := range report.Groups[1:] {
		assert.Empty(t, g.Items, "bucket %q should be empty", g.Category)
	}
}

func TestMonthlyReportInvalidUserID(t *testing.T) {
	store := newFakeStore()
	svc := NewCostService(store, nil)

	_, err := svc.MonthlyReport(context.Background(), "not-a-number", 2025, 6)
	assert.ErrorIs(t, err, core.ErrInvalidUserID)
	assert.Zero(t, store.rangeCalls, "store must not be queried")
}

func TestMonthlyReportStoreError(t *testing.T) {
	store := newFakeStore()
	store.failWith = errors.New("db gone")
	svc := NewCostService(store, nil)

	_, err := svc.MonthlyReport(context.Background(), "9999", 2025, 6)
	require.Error(t, err)
	assert.False(t, core.IsValidationError(err))
}
