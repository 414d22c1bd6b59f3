package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/Gobusters/ectologger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Ramsey-B/briar/pkg/models"
	"github.com/Ramsey-B/briar/pkg/tracing"
)

// Traversal depth bounds for neighbor queries. A ListEntry and its affiliate
// sit one edge apart, so entries sharing an affiliate are at depth 2 and
// every meaningful neighbor distance is even.
const (
	// DefaultDepth reaches entries that share a direct affiliate
	DefaultDepth = 2
	maxDepth     = 6

	defaultNeighborLimit = 20
	maxNeighborLimit     = 100
)

// Mirror maintains the affiliation graph: one ListEntry node per active list
// entry, one Affiliate node per distinct normalized affiliate name, and an
// AFFILIATED_WITH edge per published relationship. Affiliate nodes are shared
// across entries, which is what makes "owned by the same holding company"
// discoverable as a two-hop path.
type Mirror struct {
	client  *Client
	matcher *Matcher
	logger  ectologger.Logger
}

// NewMirror creates a graph mirror
func NewMirror(client *Client, matcher *Matcher, logger ectologger.Logger) *Mirror {
	return &Mirror{
		client:  client,
		matcher: matcher,
		logger:  logger,
	}
}

// SyncEntity upserts the entry's node and replaces its affiliation edges with
// the entry's current set. List updates carry the full affiliation list, so
// replacement rather than accumulation keeps dropped affiliations from
// lingering. Affiliates left with no remaining edges are removed.
func (m *Mirror) SyncEntity(ctx context.Context, e *models.Entity) error {
	ctx, span := tracing.StartSpan(ctx, "graph.Mirror.SyncEntity")
	defer span.End()

	log := m.logger.WithContext(ctx).WithFields(map[string]any{
		"source":    e.Source,
		"source_id": e.SourceID,
	})

	affiliations := make([]map[string]any, 0, len(e.Affiliations))
	for _, aff := range e.Affiliations {
		key := NormalizeAffiliationName(aff.EntityName)
		if key == "" {
			continue
		}
		affiliations = append(affiliations, map[string]any{
			"key":        key,
			"name":       aff.EntityName,
			"type":       string(aff.Type),
			"type_group": TypeGroup(aff.Type),
		})
	}

	params := map[string]any{
		"source":       string(e.Source),
		"source_id":    e.SourceID,
		"name":         e.Name,
		"entity_type":  string(e.EntityType),
		"affiliations": affiliations,
	}

	_, err := m.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, `
			MERGE (e:ListEntry {source: $source, source_id: $source_id})
			SET e.name = $name, e.entity_type = $entity_type, e.updated_at = datetime()
		`, params)
		if err != nil {
			return nil, err
		}

		// Drop the previous edge set and any affiliate it leaves orphaned.
		// Affiliates still present in the new set are recreated below.
		_, err = tx.Run(ctx, `
			MATCH (e:ListEntry {source: $source, source_id: $source_id})-[r:AFFILIATED_WITH]->(a:Affiliate)
			DELETE r
			WITH DISTINCT a
			WHERE NOT (a)<-[:AFFILIATED_WITH]-()
			DELETE a
		`, params)
		if err != nil {
			return nil, err
		}

		if len(affiliations) == 0 {
			return nil, nil
		}

		_, err = tx.Run(ctx, `
			MATCH (e:ListEntry {source: $source, source_id: $source_id})
			UNWIND $affiliations AS aff
			MERGE (a:Affiliate {key: aff.key})
			SET a.name = aff.name
			MERGE (e)-[r:AFFILIATED_WITH {type: aff.type}]->(a)
			SET r.type_group = aff.type_group
		`, params)
		return nil, err
	})

	if err != nil {
		log.WithError(err).Error("Failed to sync entity to affiliation graph")
		return fmt.Errorf("failed to sync entity to affiliation graph: %w", err)
	}

	log.WithFields(map[string]any{"affiliations": len(affiliations)}).Debug("Synced entity to affiliation graph")
	return nil
}

// RemoveEntity deletes the entry's node, its edges, and any affiliate no
// other entry still references
func (m *Mirror) RemoveEntity(ctx context.Context, source models.SourceList, sourceID string) error {
	ctx, span := tracing.StartSpan(ctx, "graph.Mirror.RemoveEntity")
	defer span.End()

	params := map[string]any{
		"source":    string(source),
		"source_id": sourceID,
	}

	_, err := m.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, `
			MATCH (e:ListEntry {source: $source, source_id: $source_id})
			DETACH DELETE e
		`, params)
		if err != nil {
			return nil, err
		}

		_, err = tx.Run(ctx, `
			MATCH (a:Affiliate)
			WHERE NOT (a)<-[:AFFILIATED_WITH]-()
			DELETE a
		`, nil)
		return nil, err
	})

	if err != nil {
		m.logger.WithContext(ctx).WithError(err).Error("Failed to remove entity from affiliation graph")
		return fmt.Errorf("failed to remove entity from affiliation graph: %w", err)
	}
	return nil
}

// RelatedEntity is one list entry reachable from the anchor through the
// affiliation graph. Distance counts traversed edges, so an entry sharing a
// direct affiliate sits at distance 2. AffiliationScore rates how closely
// the neighbor's published affiliations overlap the anchor's.
type RelatedEntity struct {
	Source           models.SourceList    `json:"source"`
	SourceID         string               `json:"sourceId"`
	Name             string               `json:"name"`
	EntityType       models.EntityType    `json:"entityType"`
	Distance         int                  `json:"distance"`
	AffiliationScore float64              `json:"affiliationScore"`
	Affiliations     []models.Affiliation `json:"affiliations,omitempty"`
}

// RelatedEntities finds list entries connected to the anchor within depth
// edges, ranked by affiliation overlap with the anchor and then by distance.
// An anchor with no node or no connections yields an empty result, not an
// error; absence of graph evidence is a normal answer.
func (m *Mirror) RelatedEntities(ctx context.Context, source models.SourceList, sourceID string, depth, limit int) ([]RelatedEntity, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.Mirror.RelatedEntities")
	defer span.End()

	if depth <= 0 {
		depth = DefaultDepth
	}
	if depth > maxDepth {
		depth = maxDepth
	}
	if limit <= 0 {
		limit = defaultNeighborLimit
	}
	if limit > maxNeighborLimit {
		limit = maxNeighborLimit
	}

	params := map[string]any{
		"source":    string(source),
		"source_id": sourceID,
		"limit":     limit,
	}

	// The traversal depth is structural, not user data, and is clamped above.
	neighborQuery := fmt.Sprintf(`
		MATCH p = (e:ListEntry {source: $source, source_id: $source_id})-[:AFFILIATED_WITH*1..%d]-(other:ListEntry)
		WHERE other <> e
		WITH other, min(length(p)) AS distance
		OPTIONAL MATCH (other)-[r:AFFILIATED_WITH]->(a:Affiliate)
		WITH other, distance, collect({name: a.name, type: r.type}) AS affiliations
		RETURN other.source AS source, other.source_id AS source_id,
			other.name AS name, other.entity_type AS entity_type,
			distance, affiliations
		ORDER BY distance ASC, name ASC
		LIMIT $limit
	`, depth)

	result, err := m.client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		anchorResult, err := tx.Run(ctx, `
			MATCH (e:ListEntry {source: $source, source_id: $source_id})-[r:AFFILIATED_WITH]->(a:Affiliate)
			RETURN a.name AS name, r.type AS type
		`, params)
		if err != nil {
			return nil, err
		}
		var anchor []models.Affiliation
		for anchorResult.Next(ctx) {
			record := anchorResult.Record()
			name, _ := record.Get("name")
			affType, _ := record.Get("type")
			anchor = append(anchor, models.Affiliation{
				EntityName: stringProp(name),
				Type:       models.AffiliationType(stringProp(affType)),
			})
		}

		neighborResult, err := tx.Run(ctx, neighborQuery, params)
		if err != nil {
			return nil, err
		}

		var related []RelatedEntity
		for neighborResult.Next(ctx) {
			record := neighborResult.Record()
			source, _ := record.Get("source")
			sourceID, _ := record.Get("source_id")
			name, _ := record.Get("name")
			entityType, _ := record.Get("entity_type")
			distance, _ := record.Get("distance")
			affiliations, _ := record.Get("affiliations")

			entry := RelatedEntity{
				Source:       models.SourceList(stringProp(source)),
				SourceID:     stringProp(sourceID),
				Name:         stringProp(name),
				EntityType:   models.EntityType(stringProp(entityType)),
				Distance:     intProp(distance),
				Affiliations: collectedAffiliations(affiliations),
			}
			entry.AffiliationScore = m.matcher.Compare(anchor, entry.Affiliations)
			related = append(related, entry)
		}
		return related, nil
	})

	if err != nil {
		m.logger.WithContext(ctx).WithError(err).Error("Failed to query related entities")
		return nil, fmt.Errorf("failed to query related entities: %w", err)
	}

	related := result.([]RelatedEntity)

	// The graph returns distance order; overlap with the anchor is the more
	// useful ranking once the scores are in hand.
	sort.SliceStable(related, func(i, j int) bool {
		if related[i].AffiliationScore != related[j].AffiliationScore {
			return related[i].AffiliationScore > related[j].AffiliationScore
		}
		if related[i].Distance != related[j].Distance {
			return related[i].Distance < related[j].Distance
		}
		return related[i].Name < related[j].Name
	})
	return related, nil
}

// collectedAffiliations decodes a collect() of {name, type} maps. The
// OPTIONAL MATCH can contribute a single all-null element for entries
// without edges; those are skipped.
func collectedAffiliations(val any) []models.Affiliation {
	items, ok := val.([]any)
	if !ok {
		return nil
	}

	var affs []models.Affiliation
	for _, item := range items {
		row, ok := item.(map[string]any)
		if !ok {
			continue
		}
		aff := models.Affiliation{
			EntityName: stringProp(row["name"]),
			Type:       models.AffiliationType(stringProp(row["type"])),
		}
		if aff.EntityName == "" {
			continue
		}
		affs = append(affs, aff)
	}
	return affs
}

func stringProp(val any) string {
	s, _ := val.(string)
	return s
}

func intProp(val any) int {
	i, _ := val.(int64)
	return int(i)
}
