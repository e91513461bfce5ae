package download

import (
	"encoding/json"
	"fmt"
	"time"
)

// Progress variant discriminators.
const (
	progressReport   = "SegmentProgressReport"
	progressFailed   = "SegmentFailed"
	progressFinished = "Finished"
)

// Progress is one progress message for an in-flight job. Exactly one
// variant is set; the wire form carries a "type" discriminator.
type Progress struct {
	Report   *SegmentProgressReport
	Failed   *SegmentFailed
	Finished *Finished
}

// SegmentProgressReport is emitted after each completed segment attempt.
type SegmentProgressReport struct {
	Done       int     `json:"done"`
	Total      int     `json:"total"`
	ETA        string  `json:"eta"`
	ETASeconds float64 `json:"eta_seconds"`
}

// SegmentFailed is emitted once per segment whose retries were exhausted.
type SegmentFailed struct {
	SegmentID int    `json:"segment_id"`
	Error     string `json:"error"`
}

// Finished is emitted once all segments were attempted.
type Finished struct {
	Elapsed float64 `json:"elapsed"`
}

// MarshalJSON inlines the active variant's fields next to the
// discriminator.
func (p Progress) MarshalJSON() ([]byte, error) {
	switch {
	case p.Report != nil:
		return marshalTagged(progressReport, p.Report)
	case p.Failed != nil:
		return marshalTagged(progressFailed, p.Failed)
	case p.Finished != nil:
		return marshalTagged(progressFinished, p.Finished)
	}
	return nil, fmt.Errorf("empty progress message")
}

// UnmarshalJSON dispatches on the "type" discriminator.
func (p *Progress) UnmarshalJSON(data []byte) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	*p = Progress{}
	switch head.Type {
	case progressReport:
		p.Report = &SegmentProgressReport{}
		return json.Unmarshal(data, p.Report)
	case progressFailed:
		p.Failed = &SegmentFailed{}
		return json.Unmarshal(data, p.Failed)
	case progressFinished:
		p.Finished = &Finished{}
		return json.Unmarshal(data, p.Finished)
	}
	return fmt.Errorf("unknown progress type %q", head.Type)
}

func marshalTagged(tag string, variant any) ([]byte, error) {
	fields, err := json.Marshal(variant)
	if err != nil {
		return nil, err
	}
	head := []byte(fmt.Sprintf(`{"type":%q`, tag))
	if len(fields) > 2 {
		head = append(head, ',')
		head = append(head, fields[1:len(fields)-1]...)
		return append(head, '}'), nil
	}
	return append(head, '}'), nil
}

// formatETA renders a duration the way players display remaining time.
func formatETA(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
