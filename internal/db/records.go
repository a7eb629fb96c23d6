package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-tailor/internal/types"
)

// SaveResume upserts a parsed resume and returns its id. Saving identical
// content twice returns the same id.
func (db *DB) SaveResume(ctx context.Context, resume types.Resume) (uuid.UUID, error) {
	content, err := json.Marshal(resume)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal resume: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO resumes (id, content_hash, name, email, content)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (content_hash) DO UPDATE SET updated_at = NOW()
		 RETURNING id`,
		uuid.New(), contentHash(content), resume.Name, resume.Email, content,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save resume: %w", err)
	}
	return id, nil
}

// GetResume loads a resume by id. A missing resume returns nil, nil.
func (db *DB) GetResume(ctx context.Context, id uuid.UUID) (*types.Resume, error) {
	content, err := db.getContent(ctx, `SELECT content FROM resumes WHERE id = $1`, id)
	if err != nil || content == nil {
		return nil, err
	}

	var resume types.Resume
	if err := json.Unmarshal(content, &resume); err != nil {
		return nil, fmt.Errorf("failed to unmarshal resume: %w", err)
	}
	return &resume, nil
}

// SaveJob upserts a parsed job and returns its id
func (db *DB) SaveJob(ctx context.Context, job types.Job) (uuid.UUID, error) {
	content, err := json.Marshal(job)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal job: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO jobs (id, content_hash, title, company, content)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (content_hash) DO UPDATE SET updated_at = NOW()
		 RETURNING id`,
		uuid.New(), contentHash(content), job.Title, nullIfEmpty(job.Company), content,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save job: %w", err)
	}
	return id, nil
}

// GetJob loads a job by id. A missing job returns nil, nil.
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	content, err := db.getContent(ctx, `SELECT content FROM jobs WHERE id = $1`, id)
	if err != nil || content == nil {
		return nil, err
	}

	var job types.Job
	if err := json.Unmarshal(content, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}

func (db *DB) getContent(ctx context.Context, query string, id uuid.UUID) ([]byte, error) {
	var content []byte
	err := db.pool.QueryRow(ctx, query, id).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load record %s: %w", id, err)
	}
	return content, nil
}
