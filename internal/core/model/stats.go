package model

type MergeStats struct {
	GroupsProcessed int `json:"groups_processed"`
	CardsRemoved    int `json:"cards_removed"`
}

// DedupStats summarizes one deduplication run.
// TotalCards == FinalCards + DuplicatesRemoved always holds.
type DedupStats struct {
	TotalCards        int        `json:"total_cards"`
	FinalCards        int        `json:"final_cards"`
	DuplicatesRemoved int        `json:"duplicates_removed"`
	DuplicateGroups   int        `json:"duplicate_groups"`
	DuplicateRate     float64    `json:"duplicate_rate"`
	AverageSimilarity float64    `json:"average_similarity"`
	MeetsTarget       bool       `json:"meets_target"`
	EmbeddingFailures int        `json:"embedding_failures"`
	Merge             MergeStats `json:"merge_stats"`
}

// ValidationReport is the result of re-clustering already deduplicated cards.
type ValidationReport struct {
	RemainingDuplicateGroups int     `json:"remaining_duplicate_groups"`
	RemainingDuplicateRate   float64 `json:"remaining_duplicate_rate"`
	MeetsQualityThreshold    bool    `json:"meets_quality_threshold"`
}
