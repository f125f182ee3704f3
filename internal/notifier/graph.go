package notifier

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// entityKeys maps each node kind to its identifying property.
var entityKeys = map[EntityKind]string{
	KindEstudiante:  "dni",
	KindInstitucion: "slug",
	KindCarrera:     "nombre",
}

// relationTypes whitelists the relation names interpolated into Cypher.
var relationTypes = map[string]bool{
	RelationOffers: true,
	"INTERES":      true,
	"ENTREVISTA":   true,
	"ACEPTADO":     true,
	"RECHAZADO":    true,
}

// GraphNotifier mirrors enrollment facts into Neo4j.
type GraphNotifier struct {
	driver neo4j.DriverWithContext
}

// NewGraphNotifier constructs the notifier over an established driver.
func NewGraphNotifier(driver neo4j.DriverWithContext) *GraphNotifier {
	return &GraphNotifier{driver: driver}
}

func (g *GraphNotifier) run(ctx context.Context, cypher string, params map[string]any) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return nil, result.Err()
	})
	return err
}

// UpsertEntity merges a node by its identifying property and refreshes its
// attributes.
func (g *GraphNotifier) UpsertEntity(ctx context.Context, kind EntityKind, id string, attrs map[string]any) error {
	keyProp, ok := entityKeys[kind]
	if !ok {
		return fmt.Errorf("unknown graph entity kind %q", kind)
	}
	if attrs == nil {
		attrs = map[string]any{}
	}
	cypher := fmt.Sprintf(`MERGE (n:%s {%s: $id}) SET n += $attrs`, kind, keyProp)
	return g.run(ctx, cypher, map[string]any{"id": id, "attrs": attrs})
}

// UpsertRelationship merges a relation of the given type between two existing
// nodes and refreshes its attributes.
func (g *GraphNotifier) UpsertRelationship(ctx context.Context, from, to EntityRef, relType string, attrs map[string]any) error {
	fromKey, ok := entityKeys[from.Kind]
	if !ok {
		return fmt.Errorf("unknown graph entity kind %q", from.Kind)
	}
	toKey, ok := entityKeys[to.Kind]
	if !ok {
		return fmt.Errorf("unknown graph entity kind %q", to.Kind)
	}
	if !relationTypes[relType] {
		return fmt.Errorf("unknown graph relation type %q", relType)
	}
	if attrs == nil {
		attrs = map[string]any{}
	}
	cypher := fmt.Sprintf(`MATCH (a:%s {%s: $from})
MATCH (b:%s {%s: $to})
MERGE (a)-[r:%s]->(b)
SET r += $attrs, r.ultima_actualizacion = datetime()`,
		from.Kind, fromKey, to.Kind, toKey, relType)
	return g.run(ctx, cypher, map[string]any{"from": from.ID, "to": to.ID, "attrs": attrs})
}

// ReplaceRelationship drops the old-typed relation between two nodes and
// merges the new one in a single transaction.
func (g *GraphNotifier) ReplaceRelationship(ctx context.Context, from, to EntityRef, oldType, newType string) error {
	fromKey, ok := entityKeys[from.Kind]
	if !ok {
		return fmt.Errorf("unknown graph entity kind %q", from.Kind)
	}
	toKey, ok := entityKeys[to.Kind]
	if !ok {
		return fmt.Errorf("unknown graph entity kind %q", to.Kind)
	}
	if !relationTypes[oldType] || !relationTypes[newType] {
		return fmt.Errorf("unknown graph relation transition %q -> %q", oldType, newType)
	}
	cypher := fmt.Sprintf(`MATCH (a:%s {%s: $from})
MATCH (b:%s {%s: $to})
OPTIONAL MATCH (a)-[old:%s]->(b)
DELETE old
MERGE (a)-[r:%s]->(b)
SET r.ultima_actualizacion = datetime()`,
		from.Kind, fromKey, to.Kind, toKey, oldType, newType)
	return g.run(ctx, cypher, map[string]any{"from": from.ID, "to": to.ID})
}
