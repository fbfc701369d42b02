package domain

import (
	"time"
)

type Creator struct {
	ID                     string
	Name                   string
	Username               string
	Email                  string
	City                   string
	State                  string
	FollowersTier          string
	SheetSource            string
	EngagementRate         *float64
	AvgLikes               *float64
	AvgComments            *float64
	ManualPerformanceScore *float64
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

type Campaign struct {
	ID            string
	CreatorID     string
	Status        string
	PaymentStatus string
	Amount        *float64
	AgreedAmount  *float64
	EndDate       *time.Time
	CreatedAt     time.Time
}

// DerivedPayment is a view over a campaign that carries an amount. It is
// recomputed on every aggregation pass and never persisted.
type DerivedPayment struct {
	Amount float64
	Status string
}

type ScoreResult struct {
	Score    float64
	IsManual bool
}

// RankedCreator is a creator annotated with its computed score and the
// campaign aggregates shown on ranking views.
type RankedCreator struct {
	Creator
	PerformanceScore   float64
	IsManualScore      bool
	TotalCampaigns     int
	CompletedCampaigns int
	TotalEarned        float64
}

type Filters struct {
	City          []string
	State         []string
	FollowersTier []string
	SheetSource   []string
}

type FilterRequest struct {
	Page          int
	PageSize      int
	SearchQuery   string
	Filters       Filters
	SortColumn    string
	SortDirection string
}

type PageResult struct {
	Data       []Creator
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}
