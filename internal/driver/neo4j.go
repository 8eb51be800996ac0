package driver

import (
	"context"
	"fmt"
	"log"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type Neo4jDriver struct {
	Driver neo4j.DriverWithContext
}

func NewNeo4jDriver(uri, username, password string) (*Neo4jDriver, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	if err := driver.VerifyConnectivity(context.Background()); err != nil {
		return nil, err
	}

	log.Println("Connected to Neo4j")
	return &Neo4jDriver{Driver: driver}, nil
}

func (d *Neo4jDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *Neo4jDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

func (d *Neo4jDriver) BuildIndices(ctx context.Context) error {
	queries := []string{
		"CREATE INDEX session_id IF NOT EXISTS FOR (s:Session) ON (s.id);",
		"CREATE INDEX question_text IF NOT EXISTS FOR (q:Question) ON (q.text);",
		"CREATE INDEX answer_text IF NOT EXISTS FOR (a:Answer) ON (a.text, a.topic);",
		"CREATE INDEX answer_id IF NOT EXISTS FOR (a:Answer) ON (a.id);",
	}

	for _, q := range queries {
		_, err := d.ExecuteQuery(ctx, q, nil)
		if err != nil {
			log.Printf("Warning: failed to create index '%s': %v", q, err)
			// Continue, as index might already exist
		}
	}

	return nil
}
