package graphset

import (
	"context"
	"fmt"
	"strings"

	"github.com/biograph/biograph/internal/cypherutil"
)

// DefaultBatchSize bounds the number of records sent per store round-trip
// when no explicit batch size is configured.
const DefaultBatchSize = 1000

// Result summarizes one write round-trip against the graph store.
type Result struct {
	// Count is the value of the query's returned counter column,
	// -1 when the query returned no counter.
	Count int64
}

// Executor is the store contract the sets merge through: execute one
// parameterized Cypher statement in a write transaction and report the
// returned counter. graphstore.Store implements it against Neo4j.
type Executor interface {
	Run(ctx context.Context, cypher string, params map[string]interface{}) (Result, error)
}

// NodeIndexStatement builds the idempotent index creation statement for a
// (label, merge keys) combination.
//
// Example:
//
//	CREATE INDEX `idx_Gene_gene_id` IF NOT EXISTS FOR (n:`Gene`) ON (n.`gene_id`)
func NodeIndexStatement(label string, keys []string) string {
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = "n." + cypherutil.QuoteIdentifier(k)
	}

	name := "idx_" + label + "_" + strings.Join(keys, "_")

	return fmt.Sprintf("CREATE INDEX %s IF NOT EXISTS FOR (n:%s) ON (%s)",
		cypherutil.QuoteIdentifier(name),
		cypherutil.QuoteIdentifier(label),
		strings.Join(quoted, ", "),
	)
}

// nodeMergeStatement builds the single parameterized upsert statement used
// for every batch of a node set.
//
// Example:
//
//	UNWIND $batch AS row
//	MERGE (n:`Gene` {`gene_id`: row.key.`gene_id`})
//	SET n += row.props
//	RETURN count(n) AS merged
func nodeMergeStatement(label string, keys []string) string {
	var query strings.Builder

	query.WriteString("UNWIND $batch AS row\n")
	query.WriteString(fmt.Sprintf("MERGE (n:%s {%s})\n",
		cypherutil.QuoteIdentifier(label), keyPattern("row.key", keys)))
	query.WriteString("SET n += row.props\n")
	query.WriteString("RETURN count(n) AS merged")

	return query.String()
}

// relationshipMergeStatement builds the single parameterized upsert
// statement used for every batch of a relationship set. Start and end
// nodes are matched independently by their merge keys; the MATCH binds
// zero rows for absent nodes, which surfaces in the returned counter.
//
// Example:
//
//	UNWIND $batch AS row
//	MATCH (a:`Gene` {`gene_id`: row.start.`gene_id`})
//	MATCH (b:`Pathway` {`pathway_id`: row.end.`pathway_id`})
//	MERGE (a)-[r:`PARTICIPATES_IN`]->(b)
//	SET r += row.props
//	RETURN count(r) AS merged
func relationshipMergeStatement(relType string, start, end NodeSpec, edgeKeys []string) string {
	var query strings.Builder

	query.WriteString("UNWIND $batch AS row\n")
	query.WriteString(fmt.Sprintf("MATCH (a:%s {%s})\n",
		cypherutil.QuoteIdentifier(start.Label), keyPattern("row.start", start.MergeKeys)))
	query.WriteString(fmt.Sprintf("MATCH (b:%s {%s})\n",
		cypherutil.QuoteIdentifier(end.Label), keyPattern("row.end", end.MergeKeys)))

	if len(edgeKeys) > 0 {
		query.WriteString(fmt.Sprintf("MERGE (a)-[r:%s {%s}]->(b)\n",
			cypherutil.QuoteIdentifier(relType), keyPattern("row.key", edgeKeys)))
	} else {
		query.WriteString(fmt.Sprintf("MERGE (a)-[r:%s]->(b)\n",
			cypherutil.QuoteIdentifier(relType)))
	}

	query.WriteString("SET r += row.props\n")
	query.WriteString("RETURN count(r) AS merged")

	return query.String()
}

// keyPattern renders the property-match fragment of a MERGE or MATCH
// pattern, e.g. "`gene_id`: row.key.`gene_id`".
func keyPattern(rowField string, keys []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		quoted := cypherutil.QuoteIdentifier(k)
		parts[i] = fmt.Sprintf("%s: %s.%s", quoted, rowField, quoted)
	}
	return strings.Join(parts, ", ")
}

// chunk splits rows into slices of at most size elements, preserving order.
func chunk(rows []map[string]interface{}, size int) [][]map[string]interface{} {
	if size <= 0 {
		size = DefaultBatchSize
	}

	var chunks [][]map[string]interface{}
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		chunks = append(chunks, rows[start:end])
	}
	return chunks
}
