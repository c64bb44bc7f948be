package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var publishTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParsePublishTime accepts RFC 3339 and the zone-less datetime-local form,
// which is read as UTC.
func ParsePublishTime(value string) (time.Time, error) {
	for _, layout := range publishTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("unrecognized time format: " + value)
}

// UnmarshalJSON reads publishTime with ParsePublishTime so schedule files
// holding datetime-local values decode.
func (p *ScheduledPost) UnmarshalJSON(data []byte) error {
	type plain ScheduledPost
	aux := struct {
		*plain
		PublishTime *string `json:"publishTime"`
	}{plain: (*plain)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	p.PublishTime = time.Time{}
	if aux.PublishTime == nil || *aux.PublishTime == "" {
		return nil
	}
	t, err := ParsePublishTime(*aux.PublishTime)
	if err != nil {
		return fmt.Errorf("post %s: %w", p.ID, err)
	}
	p.PublishTime = t
	return nil
}
