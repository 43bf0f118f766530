package pagination_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davebur/mastodon-cleanliness/internal/models"
	"github.com/davebur/mastodon-cleanliness/internal/pagination"
)

var errFetch = errors.New("fetch failed")

// scriptedPages serves one page per call. A negative size makes that call fail.
type scriptedPages struct {
	sizes   []int
	cursors []string
}

func (s *scriptedPages) fetch(_ context.Context, cursor string) (models.Page, error) {
	s.cursors = append(s.cursors, cursor)
	call := len(s.cursors) - 1
	if call >= len(s.sizes) {
		return models.Page{}, nil
	}
	size := s.sizes[call]
	if size < 0 {
		return models.Page{}, errFetch
	}
	accounts := make([]models.Account, size)
	for i := range accounts {
		accounts[i] = models.Account{ID: strconv.Itoa(call*1000 + i)}
	}
	return models.Page{Accounts: accounts, Next: "cursor-" + strconv.Itoa(call+1)}, nil
}

func TestCollect(t *testing.T) {
	testCases := []struct {
		name      string
		sizes     []int
		opts      pagination.Options
		wantItems int
		wantPages int
		wantCalls int
		wantState pagination.State
		wantErr   bool
		truncated bool
	}{
		{
			name:      "three_pages_last_short",
			sizes:     []int{40, 40, 15},
			wantItems: 95,
			wantPages: 3,
			wantCalls: 3,
			wantState: pagination.StateDone,
		},
		{
			name:      "single_short_page",
			sizes:     []int{7},
			wantItems: 7,
			wantPages: 1,
			wantCalls: 1,
			wantState: pagination.StateDone,
		},
		{
			name:      "empty_terminal_page",
			sizes:     []int{40, 0},
			wantItems: 40,
			wantPages: 2,
			wantCalls: 2,
			wantState: pagination.StateDone,
		},
		{
			name:      "failure_after_first_page_keeps_partial",
			sizes:     []int{40, -1},
			wantItems: 40,
			wantPages: 1,
			wantCalls: 2,
			wantState: pagination.StateDone,
			wantErr:   true,
		},
		{
			name:      "first_page_failure_aborts",
			sizes:     []int{-1},
			wantItems: 0,
			wantPages: 0,
			wantCalls: 1,
			wantState: pagination.StateAborted,
			wantErr:   true,
		},
		{
			name:      "max_pages_stops_full_pages",
			sizes:     []int{40, 40, 40, 40, 40},
			opts:      pagination.Options{MaxPages: 2},
			wantItems: 80,
			wantPages: 2,
			wantCalls: 2,
			wantState: pagination.StateDone,
			truncated: true,
		},
		{
			name:      "ceiling_above_server_max_follows_80_item_pages",
			sizes:     []int{80, 80, 40},
			opts:      pagination.Options{PageSize: 100},
			wantItems: 200,
			wantPages: 3,
			wantCalls: 3,
			wantState: pagination.StateDone,
		},
		{
			name:      "custom_page_size",
			sizes:     []int{2, 2, 1},
			opts:      pagination.Options{PageSize: 2},
			wantItems: 5,
			wantPages: 3,
			wantCalls: 3,
			wantState: pagination.StateDone,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pages := &scriptedPages{sizes: tc.sizes}
			res := pagination.Collect(context.Background(), pages.fetch, tc.opts)

			require.NotNil(t, res.Accounts)
			assert.Len(t, res.Accounts, tc.wantItems)
			assert.Equal(t, tc.wantPages, res.Pages)
			assert.Len(t, pages.cursors, tc.wantCalls)
			assert.Equal(t, tc.wantState, res.State)
			assert.Equal(t, tc.truncated, res.Truncated)
			if tc.wantErr {
				assert.ErrorIs(t, res.Err, errFetch)
				assert.False(t, res.Complete())
			} else {
				assert.NoError(t, res.Err)
			}
		})
	}
}

func TestCollectFollowsCursors(t *testing.T) {
	pages := &scriptedPages{sizes: []int{40, 40, 3}}
	pagination.Collect(context.Background(), pages.fetch, pagination.Options{})

	assert.Equal(t, []string{"", "cursor-1", "cursor-2"}, pages.cursors)
}

func TestCollectStopsWithoutNextCursor(t *testing.T) {
	calls := 0
	fetch := func(context.Context, string) (models.Page, error) {
		calls++
		return models.Page{Accounts: make([]models.Account, 40)}, nil
	}

	res := pagination.Collect(context.Background(), fetch, pagination.Options{})

	assert.Equal(t, 1, calls)
	assert.Len(t, res.Accounts, 40)
	assert.True(t, res.Complete())
}

func TestCollectOnPage(t *testing.T) {
	pages := &scriptedPages{sizes: []int{40, 12}}
	var seen []int
	opts := pagination.Options{OnPage: func(page int, accounts []models.Account) {
		seen = append(seen, page*100+len(accounts))
	}}

	pagination.Collect(context.Background(), pages.fetch, opts)

	assert.Equal(t, []int{140, 212}, seen)
}

func TestCollectCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	fetch := func(context.Context, string) (models.Page, error) {
		calls++
		cancel()
		return models.Page{Accounts: make([]models.Account, 40), Next: "more"}, nil
	}

	res := pagination.Collect(ctx, fetch, pagination.Options{})

	assert.Equal(t, 1, calls)
	assert.Len(t, res.Accounts, 40)
	assert.Equal(t, pagination.StateDone, res.State)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "fetching_first", pagination.StateFetchingFirst.String())
	assert.Equal(t, "aborted", pagination.StateAborted.String())
	assert.Equal(t, "unknown", pagination.State(42).String())
}
