package models

import (
	"time"
)

// ActivityReport is a CCTV monitoring entry with optional photographic evidence.
type ActivityReport struct {
	ID        string    `json:"_id"       bson:"_id"       gorm:"type:varchar(36);primaryKey"`
	Datetime  string    `json:"datetime"  bson:"datetime"  gorm:"not null"          binding:"required"`
	Location  string    `json:"location"  bson:"location"  gorm:"not null;index"    binding:"required,location"`
	Findings  string    `json:"findings"  bson:"findings"  gorm:"type:text;not null" binding:"required"`
	Intensity string    `json:"intensity" bson:"intensity" gorm:"not null"          binding:"required,intensity"`
	Images    []string  `json:"images"    bson:"images"    gorm:"type:text;serializer:json"` // data URLs, upload order
	CreatedAt time.Time `json:"createdAt" bson:"createdAt" gorm:"index"`
}

func (ActivityReport) TableName() string { return "cctv_reports" }

func (r *ActivityReport) GetID() string { return r.ID }

func (r *ActivityReport) GetCreatedAt() time.Time { return r.CreatedAt }

func (r *ActivityReport) GetLocation() string { return r.Location }

// Assign stamps the server-owned fields and normalizes a missing image list.
func (r *ActivityReport) Assign(id string, createdAt time.Time) {
	r.ID = id
	r.CreatedAt = createdAt
	if r.Images == nil {
		r.Images = []string{}
	}
}

// Validate returns one message per invalid field; nil means the record is valid.
func (r *ActivityReport) Validate() []string { return check(r) }
