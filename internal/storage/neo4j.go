package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/davebur/mastodon-cleanliness/internal/models"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sirupsen/logrus"
)

var ErrNotVerified = errors.New("identity not verified")

// Neo4jStorage serves the audit from a relationship snapshot held in Neo4j.
// It only opens read sessions.
type Neo4jStorage struct {
	Driver   neo4j.DriverWithContext
	Acct     string
	PageSize int

	ownerID string
}

func NewNeo4jStorage(uri, username, password, acct string, pageSize int) (*Neo4jStorage, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("connect to driver: %w", err)
	}
	return &Neo4jStorage{Driver: driver, Acct: acct, PageSize: pageSize}, nil
}

func (s *Neo4jStorage) Close(ctx context.Context) error {
	return s.Driver.Close(ctx)
}

func (s *Neo4jStorage) run(ctx context.Context, queryName string, params map[string]interface{}) ([]*neo4j.Record, error) {
	query, exists := neo4jQueries[queryName]
	if !exists {
		return nil, fmt.Errorf("query %s not found", queryName)
	}

	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer func(session neo4j.SessionWithContext, ctx context.Context) {
		err := session.Close(ctx)
		if err != nil {
			logrus.Warnf("close session: %v", err)
		}
	}(session, ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", queryName, err)
	}

	var records []*neo4j.Record
	for result.Next(ctx) {
		records = append(records, result.Record())
	}
	if err = result.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", queryName, err)
	}
	return records, nil
}

func (s *Neo4jStorage) Ping(ctx context.Context) error {
	records, err := s.run(ctx, "ping", nil)
	if err != nil {
		return fmt.Errorf("ping query failed: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("ping query did not return any results")
	}
	return nil
}

// VerifyIdentity resolves the configured acct to its snapshot account.
func (s *Neo4jStorage) VerifyIdentity(ctx context.Context) (models.Account, error) {
	records, err := s.run(ctx, "identity", map[string]interface{}{"acct": s.Acct})
	if err != nil {
		return models.Account{}, err
	}
	if len(records) == 0 {
		return models.Account{}, fmt.Errorf("account %s not found in snapshot", s.Acct)
	}
	account := accountFromRecord(records[0])
	s.ownerID = account.ID
	return account, nil
}

func (s *Neo4jStorage) accountPage(ctx context.Context, queryName, id, cursor string) (models.Page, error) {
	skip, err := parseOffset(cursor)
	if err != nil {
		return models.Page{}, err
	}
	records, err := s.run(ctx, queryName, map[string]interface{}{
		"id":    id,
		"skip":  skip,
		"limit": s.PageSize,
	})
	if err != nil {
		return models.Page{}, err
	}

	page := models.Page{Accounts: make([]models.Account, len(records))}
	for i, record := range records {
		page.Accounts[i] = accountFromRecord(record)
	}
	if len(records) > 0 {
		page.Next = strconv.Itoa(skip + len(records))
	}
	return page, nil
}

func (s *Neo4jStorage) Followers(ctx context.Context, accountID, cursor string) (models.Page, error) {
	return s.accountPage(ctx, "followers", accountID, cursor)
}

func (s *Neo4jStorage) Following(ctx context.Context, accountID, cursor string) (models.Page, error) {
	return s.accountPage(ctx, "following", accountID, cursor)
}

func (s *Neo4jStorage) ListMembers(ctx context.Context, listID, cursor string) (models.Page, error) {
	return s.accountPage(ctx, "list_members", listID, cursor)
}

// Lists returns the lists owned by the verified account.
func (s *Neo4jStorage) Lists(ctx context.Context) ([]models.List, error) {
	if s.ownerID == "" {
		return nil, ErrNotVerified
	}
	records, err := s.run(ctx, "lists", map[string]interface{}{"id": s.ownerID})
	if err != nil {
		return nil, err
	}
	lists := make([]models.List, len(records))
	for i, record := range records {
		lists[i] = models.List{
			ID:    stringValue(record, "id"),
			Title: stringValue(record, "title"),
		}
	}
	return lists, nil
}

func parseOffset(cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	offset, err := strconv.Atoi(cursor)
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("invalid cursor %q", cursor)
	}
	return offset, nil
}

func accountFromRecord(record *neo4j.Record) models.Account {
	account := models.Account{
		ID:       stringValue(record, "id"),
		Username: stringValue(record, "username"),
		Acct:     stringValue(record, "acct"),
		URL:      stringValue(record, "url"),
	}
	if movedID := stringValue(record, "moved_id"); movedID != "" {
		account.Moved = &models.Account{ID: movedID, Acct: stringValue(record, "moved_acct")}
	}
	return account
}

// stringValue reads key as a string; ids stored as integers are formatted.
func stringValue(record *neo4j.Record, key string) string {
	value, ok := record.Get(key)
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}
