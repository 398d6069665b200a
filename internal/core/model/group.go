package model

type MergeStrategy string

const (
	StrategyRemoveDuplicates MergeStrategy = "remove_duplicates"
	StrategyMerge            MergeStrategy = "merge"
)

// DuplicateGroup is one connected component of the similarity graph. The
// primary is never repeated in Duplicates, and SimilarityScores is parallel
// to Duplicates (each score is the duplicate's similarity to the primary).
type DuplicateGroup struct {
	Primary          Card               `json:"primary_card"`
	Duplicates       []Card             `json:"duplicate_cards"`
	SimilarityScores []float64          `json:"similarity_scores"`
	MergeStrategy    MergeStrategy      `json:"merge_strategy"`
	Traceability     SourceTraceability `json:"source_traceability"`
}

// Size is the total number of cards in the group, primary included.
func (g DuplicateGroup) Size() int {
	return 1 + len(g.Duplicates)
}
