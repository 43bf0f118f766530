package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/davebur/mastodon-cleanliness/internal/audit"
	"github.com/davebur/mastodon-cleanliness/internal/report"
	"github.com/sirupsen/logrus"
)

var ErrIdentity = errors.New("verify credentials")

type App struct {
	service audit.Service
	opts    audit.Options
	out     io.Writer
}

func NewApp(service audit.Service, opts audit.Options, out io.Writer) *App {
	return &App{service: service, opts: opts, out: out}
}

// Run verifies the acting identity, audits it and prints both reports.
// Only identity and output failures are returned; fetch failures degrade the report.
func (a *App) Run(ctx context.Context) error {
	me, err := a.service.VerifyIdentity(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIdentity, err)
	}
	logrus.WithFields(logrus.Fields{
		"id":   me.ID,
		"acct": me.Acct,
	}).Info("starting audit")

	res := audit.NewAuditor(a.service, a.opts).Run(ctx, me.ID)

	for _, group := range res.Groups {
		if group.Degraded() {
			logrus.WithFields(logrus.Fields{
				"group":     group.Group,
				"state":     group.State.String(),
				"pages":     group.Pages,
				"truncated": group.Truncated,
				"error":     group.Err,
			}).Warn("group incomplete, report may be missing accounts")
		}
	}
	logrus.WithFields(logrus.Fields{
		"unlisted":          res.Unlisted.Len(),
		"not_followed_back": res.NotFollowedBack.Len(),
	}).Info("audit finished")

	return report.Write(a.out, res)
}
