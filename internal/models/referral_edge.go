package models

import (
	"time"
)

// ReferralEdge records a child -> sponsor link. Edges are written exactly
// once, at account activation, and never updated or deleted, so the set of
// edges always forms a forest.
type ReferralEdge struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	ChildId   int       `gorm:"column:child_id;not null;uniqueIndex" json:"child_id"`
	SponsorId int       `gorm:"column:sponsor_id;not null;index" json:"sponsor_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ReferralEdge) TableName() string {
	return "referral_edges"
}
