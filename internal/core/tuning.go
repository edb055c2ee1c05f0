package core

import "github.com/agenthands/talentgraph/internal/config"

// Tuning carries the scoring weights and traversal bounds for one query.
// It is passed explicitly into the executor and fusion stages so two
// concurrent queries can run with different settings.
type Tuning struct {
	VectorWeight         float64
	GraphWeight          float64
	CoverageWeight       float64
	FallbackVectorWeight float64
	FallbackGraphWeight  float64
	MaxHops              int
	OverfetchFactor      int
	ConfidenceTarget     int
}

func DefaultTuning() Tuning {
	return Tuning{
		VectorWeight:         0.5,
		GraphWeight:          0.3,
		CoverageWeight:       0.2,
		FallbackVectorWeight: 0.6,
		FallbackGraphWeight:  0.4,
		MaxHops:              3,
		OverfetchFactor:      4,
		ConfidenceTarget:     5,
	}
}

func TuningFromConfig(cfg config.RetrievalConfig) Tuning {
	tn := DefaultTuning()
	if cfg.VectorWeight > 0 {
		tn.VectorWeight = cfg.VectorWeight
	}
	if cfg.GraphWeight > 0 {
		tn.GraphWeight = cfg.GraphWeight
	}
	if cfg.CoverageWeight > 0 {
		tn.CoverageWeight = cfg.CoverageWeight
	}
	if cfg.FallbackVectorWeight > 0 {
		tn.FallbackVectorWeight = cfg.FallbackVectorWeight
	}
	if cfg.FallbackGraphWeight > 0 {
		tn.FallbackGraphWeight = cfg.FallbackGraphWeight
	}
	if cfg.MaxHops > 0 {
		tn.MaxHops = cfg.MaxHops
	}
	if cfg.OverfetchFactor > 0 {
		tn.OverfetchFactor = cfg.OverfetchFactor
	}
	if cfg.ConfidenceTarget > 0 {
		tn.ConfidenceTarget = cfg.ConfidenceTarget
	}
	return tn
}
