package cont

// EvaluationRecord is one simulator evaluation: which stage asked for it,
// the β it ran under, and the raw objective the simulator returned.
type EvaluationRecord struct {
	Iteration int     `json:"iteration"`
	Stage     int     `json:"stage"`
	Beta      float64 `json:"beta"`
	Objective float64 `json:"objective"`
}

// EvaluationHistory is the append-only record of every objective evaluation
// across the whole schedule. It exists for reporting and testing; the
// optimization math never reads it.
type EvaluationHistory struct {
	records []EvaluationRecord
}

func (h *EvaluationHistory) append(stage int, beta, objective float64) {
	h.records = append(h.records, EvaluationRecord{
		Iteration: len(h.records),
		Stage:     stage,
		Beta:      beta,
		Objective: objective,
	})
}

// Len returns the number of recorded evaluations.
func (h *EvaluationHistory) Len() int {
	return len(h.records)
}

// Records returns a copy of the history.
func (h *EvaluationHistory) Records() []EvaluationRecord {
	return append([]EvaluationRecord{}, h.records...)
}

// Best returns the record with the highest objective, or false if empty.
func (h *EvaluationHistory) Best() (EvaluationRecord, bool) {
	if len(h.records) == 0 {
		return EvaluationRecord{}, false
	}
	best := h.records[0]
	for _, r := range h.records[1:] {
		if r.Objective > best.Objective {
			best = r
		}
	}
	return best, true
}
