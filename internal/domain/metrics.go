package domain

// DerivationMetrics is a point-in-time snapshot of the regeneration
// pipeline's counters, served by GET /v1/metrics/derivation.
type DerivationMetrics struct {
	TotalRegenerations int64   `json:"total_regenerations"`
	ErrorRate          float64 `json:"error_rate"`
	CyclesCreated      int64   `json:"cycles_created"`
	OpenDateFixes      int64   `json:"open_date_fixes"`
	SparseHistoryFlags int64   `json:"sparse_history_flags"`
	CacheHitRate       float64 `json:"cache_hit_rate"`
	Period             string  `json:"period"`
}
