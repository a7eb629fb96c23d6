package db

import (
	"errors"
	"time"
)

// Artifact kinds
const (
	KindATSScore  = "ats_score"
	KindTailoring = "tailoring"
)

// AllowanceSource says which allowance paid for a tailoring request
type AllowanceSource string

const (
	// SourceQuota is the per-period included quota
	SourceQuota AllowanceSource = "quota"
	// SourceCredits is purchased credits
	SourceCredits AllowanceSource = "credits"
)

// Allowance is a user's remaining tailoring allowance
type Allowance struct {
	UserID         string    `json:"user_id"`
	QuotaRemaining int       `json:"quota_remaining"`
	Credits        int       `json:"credits"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ErrNoAllowance is returned when both quota and credits are exhausted
var ErrNoAllowance = errors.New("no tailoring allowance remaining")
