// Package graphstore provides Neo4j connection management for biograph.
package graphstore

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/biograph/biograph/internal/config"
	"github.com/biograph/biograph/internal/cypherutil"
	"github.com/biograph/biograph/internal/graphset"
)

// Store is the Neo4j-backed implementation of graphset.Executor. It owns
// the driver lifecycle; sessions are created per statement.
type Store struct {
	cfg    config.Neo4jConfig
	driver neo4j.DriverWithContext
}

// NewStore creates a new Store from configuration. The store must be
// connected via Connect() before use.
func NewStore(cfg config.Neo4jConfig) *Store {
	return &Store{cfg: cfg}
}

// Connect establishes the driver connection with exponential backoff and
// verifies connectivity.
func (s *Store) Connect(ctx context.Context) error {
	auth := neo4j.BasicAuth(s.cfg.User, s.cfg.Password, "")

	configure := func(c *neo4j.Config) {
		if s.cfg.MaxConnections > 0 {
			c.MaxConnectionPoolSize = s.cfg.MaxConnections
		}
		if s.cfg.ConnectTimeoutSecs > 0 {
			c.ConnectionAcquisitionTimeout = time.Duration(s.cfg.ConnectTimeoutSecs) * time.Second
		}
	}

	var err error

	maxRetries := 3
	backoff := time.Second

	for i := 0; i < maxRetries; i++ {
		var driver neo4j.DriverWithContext
		driver, err = neo4j.NewDriverWithContext(s.cfg.URI, auth, configure)
		if err == nil {
			if verifyErr := driver.VerifyConnectivity(ctx); verifyErr == nil {
				s.driver = driver
				return nil
			} else {
				_ = driver.Close(ctx)
				err = verifyErr
			}
		}

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				backoff *= 2 // Exponential backoff
			}
		}
	}

	return fmt.Errorf("failed to connect to %s after %d retries: %w", s.cfg.URI, maxRetries, err)
}

// Close releases the driver and all pooled connections.
func (s *Store) Close(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	if err := s.driver.Close(ctx); err != nil {
		return fmt.Errorf("driver close: %w", err)
	}
	s.driver = nil
	return nil
}

// Ping verifies the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	if s.driver == nil {
		return fmt.Errorf("store is not connected")
	}
	if err := s.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("connectivity check failed: %w", err)
	}
	return nil
}

// Run executes one parameterized Cypher statement in a write transaction
// and returns the value of the first returned counter column, -1 when the
// statement returned no rows. It implements graphset.Executor.
func (s *Store) Run(ctx context.Context, cypher string, params map[string]interface{}) (graphset.Result, error) {
	if s.driver == nil {
		return graphset.Result{}, fmt.Errorf("store is not connected")
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.cfg.Database,
	})
	defer session.Close(ctx)

	out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}

		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := result.Consume(ctx); err != nil {
			return nil, err
		}

		count := int64(-1)
		if len(records) > 0 && len(records[0].Values) > 0 {
			if c, ok := records[0].Values[0].(int64); ok {
				count = c
			}
		}
		return count, nil
	})
	if err != nil {
		return graphset.Result{}, fmt.Errorf("statement execution failed: %w", err)
	}

	return graphset.Result{Count: out.(int64)}, nil
}

// CountNodes returns the number of nodes carrying the given label.
func (s *Store) CountNodes(ctx context.Context, label string) (int64, error) {
	quoted, err := cypherutil.QuoteIdentifierSafe(label)
	if err != nil {
		return 0, err
	}
	return s.readCount(ctx, fmt.Sprintf("MATCH (n:%s) RETURN count(n)", quoted))
}

// CountRelationships returns the number of relationships of the given type.
func (s *Store) CountRelationships(ctx context.Context, relType string) (int64, error) {
	quoted, err := cypherutil.QuoteIdentifierSafe(relType)
	if err != nil {
		return 0, err
	}
	return s.readCount(ctx, fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r)", quoted))
}

func (s *Store) readCount(ctx context.Context, cypher string) (int64, error) {
	if s.driver == nil {
		return 0, fmt.Errorf("store is not connected")
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.cfg.Database,
	})
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, nil)
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		count, ok := record.Values[0].(int64)
		if !ok {
			return nil, fmt.Errorf("unexpected count value %v", record.Values[0])
		}
		return count, nil
	})
	if err != nil {
		return 0, fmt.Errorf("count query failed: %w", err)
	}

	return out.(int64), nil
}
