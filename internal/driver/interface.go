package driver

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// GraphDriver is the injected store client. Each ExecuteQuery call is one
// fully committed transaction; the session graph store relies on Cypher MERGE
// being atomic per statement and needs nothing beyond that.
type GraphDriver interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error)
	BuildIndices(ctx context.Context) error
	Close(ctx context.Context) error
}
