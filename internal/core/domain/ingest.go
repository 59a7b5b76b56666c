package domain

// BatchFailure records one item that could not be processed.
type BatchFailure struct {
	// Item identifies the failed item (an article title or ID).
	Item string `json:"item"`

	// Reason is the error message.
	Reason string `json:"reason"`
}

// BatchReport summarises a batch operation that continues past
// per-item errors.
type BatchReport struct {
	// Succeeded lists the items that were processed.
	Succeeded []string `json:"succeeded"`

	// Failed lists the items that were skipped and why.
	Failed []BatchFailure `json:"failed"`

	// Chunks is the number of chunks indexed.
	Chunks int `json:"chunks"`
}

// AddSuccess records a processed item.
func (r *BatchReport) AddSuccess(item string) {
	r.Succeeded = append(r.Succeeded, item)
}

// AddFailure records a skipped item.
func (r *BatchReport) AddFailure(item string, err error) {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	r.Failed = append(r.Failed, BatchFailure{Item: item, Reason: reason})
}

// HasFailures returns true if any item failed.
func (r *BatchReport) HasFailures() bool {
	return len(r.Failed) > 0
}
