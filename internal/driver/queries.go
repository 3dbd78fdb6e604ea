package driver

var IndexQueries = []string{
	"CREATE INDEX ON :Cartoon(ref);",
	"CREATE INDEX ON :Cartoon(created_at);",
	"CREATE INDEX ON :Place(label);",
	"CREATE INDEX ON :Headline(url);",
}

const (
	SaveCartoonQuery = `
		MERGE (p:Place {label: $place})
		MERGE (c:Cartoon {ref: $ref})
		SET c.title = $title,
			c.premise = $premise,
			c.topic = $topic,
			c.generation_mode = $generation_mode,
			c.script_state = $script_state,
			c.concept_mode = $concept_mode,
			c.created_at = $created_at
		MERGE (c)-[:SET_IN]->(p)
		RETURN c.ref AS ref
	`

	LinkHeadlineQuery = `
		MATCH (c:Cartoon {ref: $ref})
		MERGE (h:Headline {url: $url})
		SET h.title = $title,
			h.source = $source
		MERGE (c)-[:INSPIRED_BY]->(h)
		RETURN h.url AS url
	`

	RecentCartoonsQuery = `
		MATCH (c:Cartoon)-[:SET_IN]->(p:Place {label: $place})
		OPTIONAL MATCH (c)-[:INSPIRED_BY]->(h:Headline)
		RETURN c.ref AS ref,
			c.title AS title,
			c.topic AS topic,
			c.generation_mode AS generation_mode,
			c.created_at AS created_at,
			h.url AS news_url
		ORDER BY c.created_at DESC
		LIMIT $limit
	`
)
