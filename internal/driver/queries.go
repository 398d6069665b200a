package driver

const (
	SaveCardsQuery = `
		UNWIND $cards AS card
		MERGE (c:Card {id: card.id})
		SET c.type = card.type,
			c.front = card.front,
			c.back = card.back,
			c.difficulty = card.difficulty,
			c.knowledge_id = card.knowledge_id,
			c.chapter_id = card.chapter_id,
			c.source_anchor = card.source_anchor,
			c.metadata = card.metadata
		RETURN count(c) AS saved
	`
)
