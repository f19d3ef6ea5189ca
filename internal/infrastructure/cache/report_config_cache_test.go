package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dealer/reporting/internal/domain/report"
	"github.com/dealer/reporting/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockConfigRepository struct {
	mock.Mock
}

func (m *mockConfigRepository) FindReport(ctx context.Context, reportID, clientID int64) (*report.Report, error) {
	args := m.Called(ctx, reportID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Report), args.Error(1)
}

func (m *mockConfigRepository) FindClientReport(ctx context.Context, reportID, clientID int64) (*report.Report, error) {
	args := m.Called(ctx, reportID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Report), args.Error(1)
}

func (m *mockConfigRepository) ListLines(ctx context.Context, reportID int64) ([]report.ReportLine, error) {
	args := m.Called(ctx, reportID)
	return args.Get(0).([]report.ReportLine), args.Error(1)
}

func (m *mockConfigRepository) ListKeyLines(ctx context.Context, reportID int64) ([]report.ReportLine, error) {
	args := m.Called(ctx, reportID)
	return args.Get(0).([]report.ReportLine), args.Error(1)
}

func (m *mockConfigRepository) FirstLine(ctx context.Context, reportID int64) (*report.ReportLine, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.ReportLine), args.Error(1)
}

func (m *mockConfigRepository) FindLine(ctx context.Context, lineID int64) (*report.ReportLine, error) {
	args := m.Called(ctx, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.ReportLine), args.Error(1)
}

func (m *mockConfigRepository) FindLineByName(ctx context.Context, name string) (*report.ReportLine, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.ReportLine), args.Error(1)
}

func (m *mockConfigRepository) ListSummaries(ctx context.Context, reportID int64, main bool) ([]report.Summary, error) {
	args := m.Called(ctx, reportID, main)
	return args.Get(0).([]report.Summary), args.Error(1)
}

func (m *mockConfigRepository) MainSummary(ctx context.Context, reportID int64) (*report.Summary, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Summary), args.Error(1)
}

func (m *mockConfigRepository) ListBySubSection(ctx context.Context, clientID, subSectionID int64) ([]report.Report, error) {
	args := m.Called(ctx, clientID, subSectionID)
	return args.Get(0).([]report.Report), args.Error(1)
}

// failingStore fails every operation
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("store down")
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("store down")
}

func (failingStore) Delete(context.Context, ...string) error { return errors.New("store down") }

func (failingStore) DeletePrefix(context.Context, string) (int64, error) {
	return 0, errors.New("store down")
}

// busyLocker never grants a lock
type busyLocker struct{}

func (busyLocker) Obtain(context.Context, string, time.Duration) (func(context.Context), error) {
	return nil, ErrLockNotObtained
}

func newTestCache(t *testing.T, opts ...ReportConfigCacheOption) (*ReportConfigCache, *mockConfigRepository, *InMemoryStore) {
	t.Helper()
	repo := new(mockConfigRepository)
	store := NewInMemoryStore()
	t.Cleanup(store.Stop)
	opts = append([]ReportConfigCacheOption{WithLocker(NewLocalLocker()), WithKeyPrefix("test:")}, opts...)
	return NewReportConfigCache(repo, store, opts...), repo, store
}

func TestReportConfigCache_FindReport(t *testing.T) {
	ctx := context.Background()

	t.Run("second read is served from the store", func(t *testing.T) {
		cache, repo, _ := newTestCache(t)
		owner := int64(7)
		rpt := &report.Report{
			ID: 1, ClientID: &owner, Name: "Sales", ColumnsUsed: 2,
			Columns: []string{"MTD", "YTD"},
			View:    &report.View{ViewID: "v1"},
		}
		repo.On("FindReport", ctx, int64(1), int64(7)).Return(rpt, nil).Once()

		first, err := cache.FindReport(ctx, 1, 7)
		require.NoError(t, err)
		second, err := cache.FindReport(ctx, 1, 7)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, "v1", second.View.ViewID)
		assert.Equal(t, CacheStats{Hits: 1, Misses: 1}, cache.Stats())
		repo.AssertExpectations(t)
	})

	t.Run("keys include the client", func(t *testing.T) {
		cache, repo, _ := newTestCache(t)
		repo.On("FindReport", ctx, int64(1), int64(7)).Return(&report.Report{ID: 1}, nil).Once()
		repo.On("FindReport", ctx, int64(1), int64(8)).Return(nil, shared.ErrNotFound).Twice()

		_, err := cache.FindReport(ctx, 1, 7)
		require.NoError(t, err)
		_, err = cache.FindReport(ctx, 1, 8)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		// not found is not cached
		_, err = cache.FindReport(ctx, 1, 8)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		repo.AssertExpectations(t)
	})
}

func TestReportConfigCache_MainSummaryNil(t *testing.T) {
	ctx := context.Background()
	cache, repo, _ := newTestCache(t)
	repo.On("MainSummary", ctx, int64(3)).Return(nil, nil).Once()

	for i := 0; i < 2; i++ {
		got, err := cache.MainSummary(ctx, 3)
		require.NoError(t, err)
		assert.Nil(t, got)
	}
	repo.AssertExpectations(t)
}

func TestReportConfigCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	cache, repo, _ := newTestCache(t)

	lines := []report.ReportLine{{ID: 10, ReportID: 1, Name: "Gross", Formats: []report.CellFormat{report.FormatText}}}
	repo.On("ListLines", ctx, int64(1)).Return(lines, nil).Twice()
	repo.On("ListLines", ctx, int64(11)).Return([]report.ReportLine{}, nil).Once()
	repo.On("ListBySubSection", ctx, int64(7), int64(2)).Return([]report.Report{{ID: 1}}, nil).Twice()

	_, err := cache.ListLines(ctx, 1)
	require.NoError(t, err)
	_, err = cache.ListLines(ctx, 11)
	require.NoError(t, err)
	_, err = cache.ListBySubSection(ctx, 7, 2)
	require.NoError(t, err)

	require.NoError(t, cache.Invalidate(ctx, 1))

	got, err := cache.ListLines(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, lines, got)
	_, err = cache.ListLines(ctx, 11)
	require.NoError(t, err)
	_, err = cache.ListBySubSection(ctx, 7, 2)
	require.NoError(t, err)

	repo.AssertExpectations(t)

	require.NoError(t, cache.InvalidateAll(ctx))
}

func TestReportConfigCache_Fallbacks(t *testing.T) {
	ctx := context.Background()

	t.Run("store errors fall back to the repository", func(t *testing.T) {
		repo := new(mockConfigRepository)
		cache := NewReportConfigCache(repo, failingStore{})
		repo.On("ListSummaries", ctx, int64(1), true).Return([]report.Summary{{ID: 4}}, nil).Twice()

		for i := 0; i < 2; i++ {
			got, err := cache.ListSummaries(ctx, 1, true)
			require.NoError(t, err)
			assert.Len(t, got, 1)
		}
		repo.AssertExpectations(t)
	})

	t.Run("busy lock reads through without filling", func(t *testing.T) {
		cache, repo, store := newTestCache(t, WithLocker(busyLocker{}))
		repo.On("ListKeyLines", ctx, int64(1)).Return([]report.ReportLine{{ID: 1}}, nil).Once()

		_, err := cache.ListKeyLines(ctx, 1)
		require.NoError(t, err)

		_, ok, _ := store.Get(ctx, "test:report:1:key_lines")
		assert.False(t, ok)
		repo.AssertExpectations(t)
	})

	t.Run("undecodable entries are replaced", func(t *testing.T) {
		cache, repo, store := newTestCache(t)
		require.NoError(t, store.Set(ctx, "test:report:1:first_line", []byte("{broken"), 0))
		repo.On("FirstLine", ctx, int64(1)).Return(&report.ReportLine{ID: 9}, nil).Once()

		got, err := cache.FirstLine(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(9), got.ID)

		got, err = cache.FirstLine(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(9), got.ID)
		repo.AssertExpectations(t)
	})

	t.Run("line lookups bypass the store", func(t *testing.T) {
		cache, repo, _ := newTestCache(t)
		repo.On("FindLine", ctx, int64(5)).Return(&report.ReportLine{ID: 5}, nil).Twice()
		repo.On("FindLineByName", ctx, "Cars").Return(nil, shared.ErrNotFound).Once()

		_, _ = cache.FindLine(ctx, 5)
		_, _ = cache.FindLine(ctx, 5)
		_, err := cache.FindLineByName(ctx, "Cars")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		repo.AssertExpectations(t)
	})
}
