// Package audit reconciles an account's followers, followings and list
// memberships into the two reports: followed but unlisted, and not followed back.
package audit

import (
	"context"

	"github.com/davebur/mastodon-cleanliness/internal/models"
	"github.com/davebur/mastodon-cleanliness/internal/pagination"
)

// Service is the read-only remote capability set the audit consumes.
type Service interface {
	VerifyIdentity(ctx context.Context) (models.Account, error)
	Followers(ctx context.Context, accountID, cursor string) (models.Page, error)
	Following(ctx context.Context, accountID, cursor string) (models.Page, error)
	Lists(ctx context.Context) ([]models.List, error)
	ListMembers(ctx context.Context, listID, cursor string) (models.Page, error)
}

type Options struct {
	// BaseURL qualifies local handles and builds profile links.
	BaseURL  string
	PageSize int
	MaxPages int
	// ListWorkers > 1 reduces lists concurrently.
	ListWorkers int
}

// Outcome describes how one collected group ended.
type Outcome struct {
	Group     string
	State     pagination.State
	Pages     int
	Accounts  int
	Truncated bool
	Err       error
}

// Degraded reports whether the group may be missing accounts.
func (o Outcome) Degraded() bool {
	return o.State == pagination.StateAborted || o.Err != nil || o.Truncated
}

func outcomeOf(group string, res pagination.Result) Outcome {
	return Outcome{
		Group:     group,
		State:     res.State,
		Pages:     res.Pages,
		Accounts:  len(res.Accounts),
		Truncated: res.Truncated,
		Err:       res.Err,
	}
}

func (o Options) collectorOptions(group string) pagination.Options {
	return pagination.Options{
		PageSize: o.PageSize,
		MaxPages: o.MaxPages,
		Name:     group,
	}
}

// Result holds the two final sets of a run.
type Result struct {
	// Unlisted holds accounts followed but placed in no list.
	Unlisted *models.AccountSet
	// NotFollowedBack holds followers that are not followed back.
	NotFollowedBack *models.AccountSet
	Groups          []Outcome
}

// Degraded reports whether any group was cut short by a fetch failure.
func (r *Result) Degraded() bool {
	for _, g := range r.Groups {
		if g.Degraded() {
			return true
		}
	}
	return false
}
