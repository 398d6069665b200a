package model

type CardType string

const (
	CardTypeQA           CardType = "QA"
	CardTypeCloze        CardType = "CLOZE"
	CardTypeImageHotspot CardType = "IMAGE_HOTSPOT"
)

// Card is a single generated learning item. Cards are treated as immutable
// inputs; the only field the engine writes is Metadata.Traceability on a
// surviving primary.
type Card struct {
	ID           string       `json:"id"`
	Type         CardType     `json:"type"`
	Front        string       `json:"front"`
	Back         string       `json:"back"`
	Difficulty   float64      `json:"difficulty"`
	Metadata     CardMetadata `json:"metadata,omitempty"`
	KnowledgeID  string       `json:"knowledge_id,omitempty"`
	ChapterID    string       `json:"chapter_id,omitempty"`
	SourceAnchor string       `json:"source_anchor,omitempty"`
}

// CardMetadata varies by card type: CLOZE cards carry BlankedEntities,
// IMAGE_HOTSPOT cards carry Hotspots. KnowledgeType and Extra can appear on
// any type.
type CardMetadata struct {
	KnowledgeType   string              `json:"knowledge_type,omitempty"`
	BlankedEntities []BlankedEntity     `json:"blanked_entities,omitempty"`
	Hotspots        []Hotspot           `json:"hotspots,omitempty"`
	Extra           map[string]string   `json:"extra,omitempty"`
	Traceability    *SourceTraceability `json:"source_traceability,omitempty"`
}

// IsEmpty reports whether the metadata carries no content at all.
func (m CardMetadata) IsEmpty() bool {
	return m.KnowledgeType == "" &&
		len(m.BlankedEntities) == 0 &&
		len(m.Hotspots) == 0 &&
		len(m.Extra) == 0
}

type BlankedEntity struct {
	Entity      string `json:"entity"`
	BlankNumber int    `json:"blank_number"`
}

type Hotspot struct {
	Label       string  `json:"label"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Description string  `json:"description,omitempty"`
	Correct     bool    `json:"correct,omitempty"`
}

// SourceTraceability links a surviving card back to everything it absorbed.
type SourceTraceability struct {
	OriginalCardIDs []string `json:"original_card_ids"`
	KnowledgeIDs    []string `json:"knowledge_ids"`
	ChapterIDs      []string `json:"chapter_ids"`
	SourceAnchors   []string `json:"source_anchors"`
}
