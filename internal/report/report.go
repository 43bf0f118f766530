package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/davebur/mastodon-cleanliness/internal/audit"
)

const (
	UnlistedHeading        = "Folks I'm following but are not in lists..."
	NotFollowedBackHeading = "Who I'm not following back ..."
)

// Write prints the unlisted followings, then the followers not followed back,
// one tab-indented line per account.
func Write(w io.Writer, res *audit.Result) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, UnlistedHeading)
	for _, handle := range res.Unlisted.Values() {
		fmt.Fprintf(bw, "\t%s\n", handle)
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, NotFollowedBackHeading)
	for _, link := range res.NotFollowedBack.Values() {
		fmt.Fprintf(bw, "\t%s\n", link)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
