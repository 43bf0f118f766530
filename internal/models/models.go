package models

import (
	"net"
	"net/url"
	"strings"
)

// Account is a remote profile as returned by follower, following and list listings.
type Account struct {
	ID       string
	Username string
	Acct     string
	URL      string
	// Moved is set when the account has relocated to another server.
	Moved *Account
}

// IsMoved reports whether the account carries a migration indicator.
func (a Account) IsMoved() bool {
	return a.Moved != nil
}

// Handle returns the account handle qualified with the home server domain.
// Accounts on the viewer's server report a bare acct, remote ones are already qualified.
func (a Account) Handle(baseURL string) string {
	if strings.Contains(a.Acct, "@") {
		return a.Acct
	}
	return a.Acct + "@" + Domain(baseURL)
}

// ProfileLink renders "<handle>, <base>/@<acct>".
func (a Account) ProfileLink(baseURL string) string {
	return a.Handle(baseURL) + ", " + strings.TrimRight(baseURL, "/") + "/@" + a.Acct
}

// Domain extracts the host part of a server URL. A value without scheme is
// treated as a bare host.
func Domain(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimRight(baseURL, "/"))
	}
	return CanonicalHost(u)
}

// CanonicalHost returns the lowercased host of u, without the port when it is
// the default one for the scheme.
func CanonicalHost(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if port == "" ||
		(port == "443" && strings.EqualFold(u.Scheme, "https")) ||
		(port == "80" && strings.EqualFold(u.Scheme, "http")) {
		if strings.Contains(host, ":") {
			return "[" + host + "]"
		}
		return host
	}
	return net.JoinHostPort(host, port)
}

// List is a user-curated grouping of followed accounts.
type List struct {
	ID    string
	Title string
}

// Page is one batch of a paginated listing. An empty Next means the server
// offered no further page.
type Page struct {
	Accounts []Account
	Next     string
}
