package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/davebur/mastodon-cleanliness/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/tomnomnom/linkheader"
)

var (
	ErrUnauthorized  = errors.New("authorization failed")
	ErrForeignCursor = errors.New("pagination cursor points to another server")
)

// StatusError is returned for any non-200 response other than 401.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("unexpected status code %d", e.StatusCode)
}

type MastodonClient struct {
	AccessToken string
	BaseURL     *url.URL
	PageSize    int
	UserAgent   string
	Client      *http.Client
}

func NewMastodonClient(baseURL, accessToken string, pageSize int) (*MastodonClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	return &MastodonClient{
		AccessToken: accessToken,
		BaseURL:     u,
		PageSize:    pageSize,
		UserAgent:   "mastodon-cleanliness",
		Client:      &http.Client{},
	}, nil
}

type mastodonAccount struct {
	ID       string           `json:"id"`
	Username string           `json:"username"`
	Acct     string           `json:"acct"`
	URL      string           `json:"url"`
	Moved    *mastodonAccount `json:"moved,omitempty"`
}

func (a mastodonAccount) model() models.Account {
	account := models.Account{
		ID:       a.ID,
		Username: a.Username,
		Acct:     a.Acct,
		URL:      a.URL,
	}
	if a.Moved != nil {
		moved := a.Moved.model()
		account.Moved = &moved
	}
	return account
}

type mastodonList struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type mastodonError struct {
	Error string `json:"error"`
}

func (c *MastodonClient) endpoint(path string, query url.Values) string {
	u := *c.BaseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = query.Encode()
	return u.String()
}

// resolveCursor returns the URL to fetch: the first page endpoint for an empty
// cursor, otherwise the cursor itself once checked against the server host.
func (c *MastodonClient) resolveCursor(first, cursor string) (string, error) {
	if cursor == "" {
		return first, nil
	}
	u, err := url.Parse(cursor)
	if err != nil {
		return "", fmt.Errorf("parse cursor: %w", err)
	}
	if models.CanonicalHost(u) != models.CanonicalHost(c.BaseURL) {
		return "", fmt.Errorf("%w: %s", ErrForeignCursor, u.Host)
	}
	return cursor, nil
}

// makeRequest performs a GET against the Mastodon API, decodes the body into
// response and returns the rel="next" link, if any.
func (c *MastodonClient) makeRequest(ctx context.Context, fullURL string, response interface{}) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("mastodon api call: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logrus.WithFields(logrus.Fields{
				"url":   fullURL,
				"error": err,
			}).Warn("close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logrus.WithFields(logrus.Fields{
			"url":         fullURL,
			"status_code": resp.StatusCode,
			"body":        string(bodyBytes),
		}).Debug("unexpected status code from mastodon api")

		if resp.StatusCode == http.StatusUnauthorized {
			return "", ErrUnauthorized
		}
		var apiErr mastodonError
		_ = json.Unmarshal(bodyBytes, &apiErr)
		return "", &StatusError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
		return "", fmt.Errorf("json decode: %w", err)
	}

	return nextLink(resp.Header.Values("Link")), nil
}

func nextLink(headers []string) string {
	for _, link := range linkheader.ParseMultiple(headers).FilterByRel("next") {
		if link.URL != "" {
			return link.URL
		}
	}
	return ""
}

// VerifyIdentity returns the authenticated account.
func (c *MastodonClient) VerifyIdentity(ctx context.Context) (models.Account, error) {
	var response mastodonAccount
	if _, err := c.makeRequest(ctx, c.endpoint("/api/v1/accounts/verify_credentials", nil), &response); err != nil {
		return models.Account{}, err
	}
	if response.ID == "" {
		return models.Account{}, errors.New("verify credentials: empty account id")
	}
	logrus.WithField("acct", response.Acct).Info("credentials verified")
	return response.model(), nil
}

func (c *MastodonClient) accountPage(ctx context.Context, path, cursor string) (models.Page, error) {
	query := url.Values{}
	if c.PageSize > 0 {
		query.Set("limit", strconv.Itoa(c.PageSize))
	}
	fullURL, err := c.resolveCursor(c.endpoint(path, query), cursor)
	if err != nil {
		return models.Page{}, err
	}

	var response []mastodonAccount
	next, err := c.makeRequest(ctx, fullURL, &response)
	if err != nil {
		return models.Page{}, err
	}

	accounts := make([]models.Account, len(response))
	for i, item := range response {
		accounts[i] = item.model()
	}
	return models.Page{Accounts: accounts, Next: next}, nil
}

func (c *MastodonClient) Followers(ctx context.Context, accountID, cursor string) (models.Page, error) {
	return c.accountPage(ctx, "/api/v1/accounts/"+url.PathEscape(accountID)+"/followers", cursor)
}

func (c *MastodonClient) Following(ctx context.Context, accountID, cursor string) (models.Page, error) {
	return c.accountPage(ctx, "/api/v1/accounts/"+url.PathEscape(accountID)+"/following", cursor)
}

func (c *MastodonClient) ListMembers(ctx context.Context, listID, cursor string) (models.Page, error) {
	return c.accountPage(ctx, "/api/v1/lists/"+url.PathEscape(listID)+"/accounts", cursor)
}

// Lists returns all lists of the authenticated account in a single call.
func (c *MastodonClient) Lists(ctx context.Context) ([]models.List, error) {
	var response []mastodonList
	if _, err := c.makeRequest(ctx, c.endpoint("/api/v1/lists", nil), &response); err != nil {
		return nil, err
	}
	lists := make([]models.List, len(response))
	for i, item := range response {
		lists[i] = models.List{ID: item.ID, Title: item.Title}
	}
	return lists, nil
}
