// Package pagination drives a paginated listing endpoint until it is exhausted.
//
// Collection is best effort: a failing first page yields an empty, aborted
// result, a failing later page stops collection and keeps what was gathered.
package pagination

import (
	"context"

	"github.com/davebur/mastodon-cleanliness/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultPageSize is the largest page Mastodon returns for account listings.
	DefaultPageSize = 40
	// MaxServerPageSize is the most accounts Mastodon returns per page,
	// whatever limit is requested.
	MaxServerPageSize = 80
	// DefaultMaxPages caps a listing that never signals its last page.
	DefaultMaxPages = 1000
)

// FetchFunc returns the page addressed by cursor. The empty cursor addresses the first page.
type FetchFunc func(ctx context.Context, cursor string) (models.Page, error)

// PageFunc observes each page as soon as it has been fetched.
type PageFunc func(page int, accounts []models.Account)

type State int

const (
	StateInit State = iota
	StateFetchingFirst
	StateFetchingNext
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateFetchingFirst:
		return "fetching_first"
	case StateFetchingNext:
		return "fetching_next"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

type Options struct {
	// PageSize is the ceiling; a page strictly smaller than it is the last one.
	// Values above MaxServerPageSize are lowered to it.
	PageSize int
	// MaxPages stops collection after this many pages.
	MaxPages int
	// Name labels log entries.
	Name   string
	OnPage PageFunc
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.PageSize > MaxServerPageSize {
		o.PageSize = MaxServerPageSize
	}
	if o.MaxPages <= 0 {
		o.MaxPages = DefaultMaxPages
	}
	return o
}

// Result is the outcome of one collection.
type Result struct {
	Accounts []models.Account
	Pages    int
	State    State
	// Err is the fetch error that ended collection early, nil on clean completion.
	Err error
	// Truncated is set when MaxPages stopped a listing that still reported full pages.
	Truncated bool
}

// Complete reports whether the listing was read to its end without error.
func (r Result) Complete() bool {
	return r.State == StateDone && r.Err == nil && !r.Truncated
}

// Collect fetches pages until one is empty, shorter than the page size, has no
// next cursor, or MaxPages is reached.
func Collect(ctx context.Context, fetch FetchFunc, opts Options) Result {
	opts = opts.withDefaults()
	log := logrus.WithField("group", opts.Name)

	res := Result{Accounts: []models.Account{}, State: StateInit}
	cursor := ""

	for {
		if res.State == StateInit {
			res.State = StateFetchingFirst
		}

		if res.Pages >= opts.MaxPages {
			log.WithField("pages", res.Pages).Warn("page limit reached, stopping pagination")
			res.Truncated = true
			res.State = StateDone
			return res
		}

		page, err := fetchPage(ctx, fetch, cursor)
		if err != nil {
			if res.State == StateFetchingFirst {
				log.WithError(err).Error("fetch first page, giving up on this group")
				res.State = StateAborted
				res.Err = err
				return res
			}
			log.WithError(err).WithField("pages", res.Pages).Error("fetch next page, keeping partial result")
			res.State = StateDone
			res.Err = err
			return res
		}

		res.Pages++
		log.WithFields(logrus.Fields{
			"page":  res.Pages,
			"items": len(page.Accounts),
		}).Debug("fetched page")

		if len(page.Accounts) == 0 {
			res.State = StateDone
			return res
		}

		res.Accounts = append(res.Accounts, page.Accounts...)
		if opts.OnPage != nil {
			opts.OnPage(res.Pages, page.Accounts)
		}

		if len(page.Accounts) < opts.PageSize || page.Next == "" {
			res.State = StateDone
			return res
		}

		cursor = page.Next
		res.State = StateFetchingNext
	}
}

func fetchPage(ctx context.Context, fetch FetchFunc, cursor string) (models.Page, error) {
	if err := ctx.Err(); err != nil {
		return models.Page{}, err
	}
	return fetch(ctx, cursor)
}
