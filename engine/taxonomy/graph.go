// Package taxonomy maintains the catalog graph in Neo4j: Tool nodes linked
// to their Category and Industry. The query pipeline uses it to surface
// sibling tools of the best match; it is strictly optional and every
// consumer treats failures as soft.
package taxonomy

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// Store provides graph operations over one Neo4j database.
type Store struct {
	driver neo4j.DriverWithContext
}

// New creates a Store.
func New(driver neo4j.DriverWithContext) *Store {
	return &Store{driver: driver}
}

// SaveTools upserts a batch of tools with their category and industry
// edges in a single transaction. Called once per ingestion batch.
func (s *Store) SaveTools(ctx context.Context, tools []Tool) error {
	if len(tools) == 0 {
		return nil
	}
	sess := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	rows := make([]map[string]any, len(tools))
	for i, t := range tools {
		props := toolToProps(t)
		props["id"] = t.ID
		rows[i] = props
	}

	_, err := sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		cypher := `
			UNWIND $rows AS row
			MERGE (t:Tool {id: row.id})
			SET t.name = row.name, t.category = row.category,
			    t.industry = row.industry, t.pricing = row.pricing,
			    t.website = row.website
			FOREACH (_ IN CASE WHEN row.category <> '' THEN [1] ELSE [] END |
				MERGE (c:Category {name: row.category})
				MERGE (t)-[:IN_CATEGORY]->(c))
			FOREACH (_ IN CASE WHEN row.industry <> '' THEN [1] ELSE [] END |
				MERGE (i:Industry {name: row.industry})
				MERGE (t)-[:IN_INDUSTRY]->(i))`
		_, err := tx.Run(ctx, cypher, map[string]any{"rows": rows})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("taxonomy: save %d tools: %w", len(tools), err)
	}
	return nil
}

// RelatedTools returns up to limit tools sharing the given category,
// excluding none in particular; callers filter out the anchor themselves.
func (s *Store) RelatedTools(ctx context.Context, category string, limit int) ([]Tool, error) {
	if category == "" || limit <= 0 {
		return nil, nil
	}
	sess := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	result, err := sess.Run(ctx,
		`MATCH (t:Tool)-[:IN_CATEGORY]->(c:Category {name: $category})
		 RETURN t LIMIT $limit`,
		map[string]any{"category": category, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("taxonomy: related tools for %q: %w", category, err)
	}
	return collectTools(ctx, result)
}

// Categories returns all category names, alphabetically.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	sess := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	result, err := sess.Run(ctx,
		`MATCH (c:Category) RETURN c.name AS name ORDER BY name`, nil)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: list categories: %w", err)
	}

	var names []string
	for result.Next(ctx) {
		if name, ok := result.Record().Get("name"); ok {
			if s, ok := name.(string); ok {
				names = append(names, s)
			}
		}
	}
	return names, result.Err()
}

func collectTools(ctx context.Context, result neo4j.ResultWithContext) ([]Tool, error) {
	var tools []Tool
	for result.Next(ctx) {
		rec := result.Record()
		raw, ok := rec.Get("t")
		if !ok {
			continue
		}
		node, ok := raw.(dbtype.Node)
		if !ok {
			continue
		}
		tools = append(tools, toolFromProps(node.Props))
	}
	return tools, result.Err()
}
