package storage

// Account listings return one row per account, ordered by id, so SKIP/LIMIT
// pages neither repeat nor skip rows.
//
// Snapshot schema:
//
//	(:Account {id, username, acct, url})
//	(:Account)-[:FOLLOWS]->(:Account)
//	(:Account)-[:MOVED_TO]->(:Account)
//	(:Account)-[:OWNS]->(:List {id, title})-[:CONTAINS]->(:Account)
var neo4jQueries = map[string]string{
	"ping": `RETURN 1`,
	// the audited account, looked up by acct
	"identity": `
		MATCH (a:Account {acct: $acct})
		RETURN a.id AS id, a.username AS username, a.acct AS acct, a.url AS url
		LIMIT 1
	`,
	// accounts following $id
	"followers": `
		MATCH (a:Account)-[:FOLLOWS]->(:Account {id: $id})
		OPTIONAL MATCH (a)-[:MOVED_TO]->(m:Account)
		WITH a, head(collect(m)) AS m
		RETURN a.id AS id, a.username AS username, a.acct AS acct, a.url AS url,
		       m.id AS moved_id, m.acct AS moved_acct
		ORDER BY a.id
		SKIP $skip LIMIT $limit
	`,
	// accounts $id follows
	"following": `
		MATCH (:Account {id: $id})-[:FOLLOWS]->(a:Account)
		OPTIONAL MATCH (a)-[:MOVED_TO]->(m:Account)
		WITH a, head(collect(m)) AS m
		RETURN a.id AS id, a.username AS username, a.acct AS acct, a.url AS url,
		       m.id AS moved_id, m.acct AS moved_acct
		ORDER BY a.id
		SKIP $skip LIMIT $limit
	`,
	// lists owned by $id
	"lists": `
		MATCH (:Account {id: $id})-[:OWNS]->(l:List)
		RETURN l.id AS id, l.title AS title
		ORDER BY l.id
	`,
	// members of list $id
	"list_members": `
		MATCH (:List {id: $id})-[:CONTAINS]->(a:Account)
		OPTIONAL MATCH (a)-[:MOVED_TO]->(m:Account)
		WITH a, head(collect(m)) AS m
		RETURN a.id AS id, a.username AS username, a.acct AS acct, a.url AS url,
		       m.id AS moved_id, m.acct AS moved_acct
		ORDER BY a.id
		SKIP $skip LIMIT $limit
	`,
}
