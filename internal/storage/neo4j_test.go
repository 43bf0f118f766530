package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOffset(t *testing.T) {
	offset, err := parseOffset("")
	require.NoError(t, err)
	assert.Equal(t, 0, offset)

	offset, err = parseOffset("80")
	require.NoError(t, err)
	assert.Equal(t, 80, offset)

	_, err = parseOffset("-1")
	assert.Error(t, err)
	_, err = parseOffset("https://example.social/next")
	assert.Error(t, err)
}

func TestAccountFromRecord(t *testing.T) {
	record := &neo4j.Record{
		Keys:   []string{"id", "username", "acct", "url", "moved_id", "moved_acct"},
		Values: []any{int64(42), "alice", "alice", "https://example.social/@alice", nil, nil},
	}

	account := accountFromRecord(record)
	assert.Equal(t, "42", account.ID)
	assert.Equal(t, "alice", account.Acct)
	assert.False(t, account.IsMoved())

	moved := &neo4j.Record{
		Keys:   []string{"id", "acct", "moved_id", "moved_acct"},
		Values: []any{"7", "bob", "70", "bob@new.social"},
	}
	account = accountFromRecord(moved)
	require.True(t, account.IsMoved())
	assert.Equal(t, "bob@new.social", account.Moved.Acct)
}

func TestQueriesAreReadOnly(t *testing.T) {
	for name, query := range neo4jQueries {
		for _, keyword := range []string{"MERGE", "CREATE", "DELETE", "SET "} {
			assert.NotContains(t, query, keyword, name)
		}
	}
}

func TestListsRequiresIdentity(t *testing.T) {
	s := &Neo4jStorage{}
	_, err := s.Lists(context.Background())
	assert.ErrorIs(t, err, ErrNotVerified)
}

func TestAccountQueriesCollapseMovedEdges(t *testing.T) {
	for _, name := range []string{"followers", "following", "list_members"} {
		query := neo4jQueries[name]
		require.NotEmpty(t, query, name)
		movedAt := strings.Index(query, "OPTIONAL MATCH (a)-[:MOVED_TO]->(m:Account)")
		collapseAt := strings.Index(query, "WITH a, head(collect(m)) AS m")
		returnAt := strings.Index(query, "RETURN")
		require.GreaterOrEqual(t, movedAt, 0, name)
		assert.Greater(t, collapseAt, movedAt, name)
		assert.Greater(t, returnAt, collapseAt, name)
	}
}
