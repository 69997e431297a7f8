package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// StatusReport is a daily camera-status entry for one location.
//
// Camera counts are pointers so an absent field can be told apart from zero.
// No arithmetic relationship between the counts is enforced.
type StatusReport struct {
	ID                string    `json:"_id"               bson:"_id"               gorm:"type:varchar(36);primaryKey"`
	Date              string    `json:"date"              bson:"date"              gorm:"not null"       binding:"required"`
	Location          string    `json:"location"          bson:"location"          gorm:"not null;index" binding:"required,location"`
	OpeningTime       string    `json:"openingTime"       bson:"openingTime"       gorm:"not null"       binding:"required"`
	ClosingTime       string    `json:"closingTime"       bson:"closingTime"       gorm:"not null"       binding:"required"`
	Status            string    `json:"status"            bson:"status"            gorm:"not null"       binding:"required"`
	TotalCameras      *int      `json:"totalCameras"      bson:"totalCameras"      gorm:"not null"       binding:"required,min=0"`
	WorkingCameras    *int      `json:"workingCameras"    bson:"workingCameras"    gorm:"not null"       binding:"required,min=0"`
	NonWorkingCameras *int      `json:"nonWorkingCameras" bson:"nonWorkingCameras" gorm:"not null"       binding:"required,min=0"`
	TotalDaysRecorded *int      `json:"totalDaysRecorded" bson:"totalDaysRecorded" gorm:"not null"       binding:"required,min=0"`
	Remarks           string    `json:"remarks,omitempty" bson:"remarks,omitempty"`
	CreatedAt         time.Time `json:"createdAt"         bson:"createdAt"         gorm:"index"`
}

func (StatusReport) TableName() string { return "daily_surveillance_statuses" }

func (s *StatusReport) GetID() string { return s.ID }

func (s *StatusReport) GetCreatedAt() time.Time { return s.CreatedAt }

func (s *StatusReport) GetLocation() string { return s.Location }

func (s *StatusReport) Assign(id string, createdAt time.Time) {
	s.ID = id
	s.CreatedAt = createdAt
}

func (s *StatusReport) Validate() []string { return check(s) }

// CastError is returned when a count holds a value that is not an integer.
type CastError struct {
	Path  string
	Value string
}

func (e *CastError) Error() string {
	return fmt.Sprintf("Cast to Number failed for value %s at path %q", e.Value, e.Path)
}

// UnmarshalJSON accepts camera counts as JSON numbers or as integer strings,
// the way HTML form fields submit them. An empty string is absent.
func (s *StatusReport) UnmarshalJSON(data []byte) error {
	type plain StatusReport
	aux := struct {
		*plain
		TotalCameras      json.RawMessage `json:"totalCameras"`
		WorkingCameras    json.RawMessage `json:"workingCameras"`
		NonWorkingCameras json.RawMessage `json:"nonWorkingCameras"`
		TotalDaysRecorded json.RawMessage `json:"totalDaysRecorded"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	counts := []struct {
		path string
		raw  json.RawMessage
		dst  **int
	}{
		{"totalCameras", aux.TotalCameras, &s.TotalCameras},
		{"workingCameras", aux.WorkingCameras, &s.WorkingCameras},
		{"nonWorkingCameras", aux.NonWorkingCameras, &s.NonWorkingCameras},
		{"totalDaysRecorded", aux.TotalDaysRecorded, &s.TotalDaysRecorded},
	}
	for _, c := range counts {
		n, err := parseCount(c.path, c.raw)
		if err != nil {
			return err
		}
		*c.dst = n
	}
	return nil
}

func parseCount(path string, raw json.RawMessage) (*int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, nil
		}
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil, &CastError{Path: path, Value: string(raw)}
	}
	return IntPtr(int(f)), nil
}

// Int dereferences a camera count, treating nil as zero.
func Int(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }
