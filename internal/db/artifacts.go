package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/resume-tailor/internal/types"
)

// SaveTailoring stores the tailoring response and its ATS score for a resume/job pair
func (db *DB) SaveTailoring(ctx context.Context, resumeID, jobID uuid.UUID, out *types.TailorResponseData) error {
	subject := PairID(resumeID, jobID)
	if err := db.SaveArtifact(ctx, subject, KindTailoring, out); err != nil {
		return err
	}
	if out.ATSScore != nil {
		if err := db.SaveArtifact(ctx, subject, KindATSScore, out.ATSScore); err != nil {
			return err
		}
	}
	return nil
}

// GetTailoring loads the last tailoring response for a resume/job pair
func (db *DB) GetTailoring(ctx context.Context, resumeID, jobID uuid.UUID) (*types.TailorResponseData, error) {
	content, err := db.GetArtifact(ctx, PairID(resumeID, jobID), KindTailoring)
	if err != nil || content == nil {
		return nil, err
	}

	var out types.TailorResponseData
	if err := json.Unmarshal(content, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tailoring: %w", err)
	}
	return &out, nil
}

// SaveATSScore stores a score for a resume/job pair
func (db *DB) SaveATSScore(ctx context.Context, resumeID, jobID uuid.UUID, score types.ATSScore) error {
	return db.SaveArtifact(ctx, PairID(resumeID, jobID), KindATSScore, score)
}

// GetATSScore loads the last score for a resume/job pair
func (db *DB) GetATSScore(ctx context.Context, resumeID, jobID uuid.UUID) (*types.ATSScore, error) {
	content, err := db.GetArtifact(ctx, PairID(resumeID, jobID), KindATSScore)
	if err != nil || content == nil {
		return nil, err
	}

	var score types.ATSScore
	if err := json.Unmarshal(content, &score); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ats score: %w", err)
	}
	return &score, nil
}
