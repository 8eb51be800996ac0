package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type driverCall struct {
	Query  string
	Params map[string]interface{}
}

// MockDriver records every query and answers through an optional per-query
// handler, which lets one test serve different results for the phase check,
// the topic fetch and each neighborhood lookup.
type MockDriver struct {
	Calls   []driverCall
	Handler func(query string, params map[string]interface{}) (neo4j.EagerResult, error)
	Err     error
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.Calls = append(m.Calls, driverCall{Query: query, Params: params})
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	if m.Handler != nil {
		return m.Handler(query, params)
	}
	return neo4j.EagerResult{}, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}

func record(keys []string, values ...interface{}) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}

func result(records ...*neo4j.Record) neo4j.EagerResult {
	return neo4j.EagerResult{Records: records}
}
