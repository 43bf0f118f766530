package audit

import (
	"context"
	"sync"

	"github.com/davebur/mastodon-cleanliness/internal/models"
	"github.com/davebur/mastodon-cleanliness/internal/pagination"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	groupFollowers = "followers"
	groupFollowing = "following"
	groupLists     = "lists"
)

// BuildFollowers collects the accounts following accountID, skipping moved accounts.
// Values are rendered as "<handle>, <base>/@<acct>".
func BuildFollowers(ctx context.Context, svc Service, accountID string, opts Options) (*models.AccountSet, Outcome) {
	followers := models.NewAccountSet()

	fetch := func(ctx context.Context, cursor string) (models.Page, error) {
		return svc.Followers(ctx, accountID, cursor)
	}
	collect := opts.collectorOptions(groupFollowers)
	collect.OnPage = func(_ int, accounts []models.Account) {
		for _, account := range accounts {
			if account.IsMoved() {
				logrus.WithFields(logrus.Fields{
					"acct":     account.Acct,
					"moved_to": account.Moved.Acct,
				}).Info("skipping moved account")
				continue
			}
			followers.Put(account.ID, account.ProfileLink(opts.BaseURL))
		}
	}
	res := pagination.Collect(ctx, fetch, collect)

	logrus.WithFields(logrus.Fields{
		"group": groupFollowers,
		"count": followers.Len(),
	}).Info("followers collected")
	return followers, outcomeOf(groupFollowers, res)
}

// BuildFollowing collects the accounts accountID follows and removes each of
// them from followers, leaving only followers that are not followed back.
func BuildFollowing(ctx context.Context, svc Service, accountID string, followers *models.AccountSet, opts Options) (*models.AccountSet, Outcome) {
	following := models.NewAccountSet()

	fetch := func(ctx context.Context, cursor string) (models.Page, error) {
		return svc.Following(ctx, accountID, cursor)
	}
	collect := opts.collectorOptions(groupFollowing)
	collect.OnPage = func(_ int, accounts []models.Account) {
		for _, account := range accounts {
			following.Put(account.ID, account.Handle(opts.BaseURL))
			if followers.Remove(account.ID) {
				logrus.WithField("acct", account.Acct).Debug("mutual follow, removing from followers")
			}
		}
	}
	res := pagination.Collect(ctx, fetch, collect)

	logrus.WithFields(logrus.Fields{
		"group":       groupFollowing,
		"count":       following.Len(),
		"not_mutuals": followers.Len(),
	}).Info("following collected")
	return following, outcomeOf(groupFollowing, res)
}

// ReduceByLists removes every member of every list from following. A failed
// list enumeration leaves following untouched; a failed member page only
// stops that list.
func ReduceByLists(ctx context.Context, svc Service, following *models.AccountSet, opts Options) []Outcome {
	lists, err := svc.Lists(ctx)
	if err != nil {
		logrus.WithError(err).Error("fetch lists, skipping list reduction")
		return []Outcome{{Group: groupLists, State: pagination.StateAborted, Err: err}}
	}
	logrus.WithField("lists", len(lists)).Info("lists fetched")

	outcomes := make([]Outcome, len(lists))
	var mu sync.Mutex

	reduce := func(i int, list models.List) {
		group := "list:" + list.Title
		fetch := func(ctx context.Context, cursor string) (models.Page, error) {
			return svc.ListMembers(ctx, list.ID, cursor)
		}
		removed := 0
		collect := opts.collectorOptions(group)
		collect.OnPage = func(_ int, accounts []models.Account) {
			mu.Lock()
			defer mu.Unlock()
			for _, account := range accounts {
				if following.Remove(account.ID) {
					removed++
				}
			}
		}
		res := pagination.Collect(ctx, fetch, collect)
		outcomes[i] = outcomeOf(group, res)

		logrus.WithFields(logrus.Fields{
			"list_id": list.ID,
			"title":   list.Title,
			"members": len(res.Accounts),
			"removed": removed,
		}).Debug("list reduced")
	}

	if opts.ListWorkers <= 1 {
		for i, list := range lists {
			reduce(i, list)
		}
		return outcomes
	}

	var g errgroup.Group
	g.SetLimit(opts.ListWorkers)
	for i, list := range lists {
		i, list := i, list
		g.Go(func() error {
			reduce(i, list)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// Auditor runs the full reconciliation against one Service.
type Auditor struct {
	svc  Service
	opts Options
}

func NewAuditor(svc Service, opts Options) *Auditor {
	return &Auditor{svc: svc, opts: opts}
}

// Run audits accountID. It never fails on fetch errors; those degrade the
// affected groups and are recorded in Result.Groups.
func (a *Auditor) Run(ctx context.Context, accountID string) *Result {
	followers, followersOutcome := BuildFollowers(ctx, a.svc, accountID, a.opts)
	following, followingOutcome := BuildFollowing(ctx, a.svc, accountID, followers, a.opts)
	listOutcomes := ReduceByLists(ctx, a.svc, following, a.opts)

	groups := append([]Outcome{followersOutcome, followingOutcome}, listOutcomes...)
	return &Result{
		Unlisted:        following,
		NotFollowedBack: followers,
		Groups:          groups,
	}
}
