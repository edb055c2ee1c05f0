package driver

const (
	GetEntityQuery = `
		MATCH (n:Entity {id: $id})
		RETURN n.id AS id, n.type AS type, n.display_name AS display_name,
			n.description AS description, n.attributes AS attributes
	`

	CreateEntityQuery = `
		MERGE (n:Entity {id: $id})
		ON CREATE SET n.type = $type,
			n.display_name = $display_name,
			n.description = $description,
			n.attributes = $attributes
		RETURN n.id AS id
	`

	UpdateEntityDescriptionQuery = `
		MATCH (n:Entity {id: $id})
		SET n.description = $description
		RETURN n.id AS id
	`

	EntitiesByTypeQuery = `
		MATCH (n:Entity {type: $type})
		RETURN n.id AS id, n.type AS type, n.display_name AS display_name,
			n.description AS description, n.attributes AS attributes
		ORDER BY n.id
	`

	// Relationship type lives in a property because Cypher cannot
	// parameterize edge labels; the RELATES_TO label is fixed.
	GetRelationshipQuery = `
		MATCH (s:Entity {id: $source_id})-[r:RELATES_TO {relation: $relation}]->(t:Entity {id: $target_id})
		RETURN r.relation AS relation
	`

	CreateRelationshipQuery = `
		MATCH (s:Entity {id: $source_id})
		MATCH (t:Entity {id: $target_id})
		MERGE (s)-[r:RELATES_TO {relation: $relation}]->(t)
		RETURN r.relation AS relation
	`

	NeighborsBothQuery = `
		MATCH (n:Entity {id: $id})-[r:RELATES_TO]-(m:Entity)
		RETURN r.relation AS relation, m.id AS id,
			startNode(r).id AS from_id
		ORDER BY m.id
	`

	NeighborsOutQuery = `
		MATCH (n:Entity {id: $id})-[r:RELATES_TO]->(m:Entity)
		RETURN r.relation AS relation, m.id AS id, n.id AS from_id
		ORDER BY m.id
	`

	NeighborsInQuery = `
		MATCH (n:Entity {id: $id})<-[r:RELATES_TO]-(m:Entity)
		RETURN r.relation AS relation, m.id AS id, m.id AS from_id
		ORDER BY m.id
	`

	// Depth bound is spliced in by the caller; Memgraph's BFS expansion
	// does not accept a parameter there.
	ShortestPathsQueryFmt = `
		MATCH p = (s:Entity {id: $source_id})-[:RELATES_TO *BFS ..%d]-(t:Entity {id: $target_id})
		RETURN [r IN relationships(p) | [startNode(r).id, r.relation, endNode(r).id]] AS steps
		ORDER BY size(relationships(p)) ASC
	`

	PathsToTypeQueryFmt = `
		MATCH p = (s:Entity {id: $seed_id})-[:RELATES_TO *BFS ..%d]-(t:Entity {type: $type})
		RETURN [r IN relationships(p) | [startNode(r).id, r.relation, endNode(r).id]] AS steps
		ORDER BY size(relationships(p)) ASC, t.id ASC
	`
)
