package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/ats"
	"github.com/jonathan/resume-tailor/internal/audit"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Audited actions
const (
	ActionParseResume = "parse_resume"
	ActionParseJob    = "parse_job"
	ActionScore       = "ats_score"
	ActionMatch       = "match"
	ActionTailor      = "tailor"
)

// record appends an audit event for a finished request
func (s *Server) record(action, subject string, err error, degraded bool, detail string) {
	outcome := audit.OutcomeSuccess
	if err != nil {
		outcome = audit.OutcomeFailure
		var quota *ErrQuotaExceeded
		if errors.As(err, &quota) {
			outcome = audit.OutcomeDenied
		}
		detail = err.Error()
	}
	s.audit.Append(audit.Event{
		Action:   action,
		Subject:  subject,
		Outcome:  outcome,
		Degraded: degraded,
		Detail:   detail,
	})
}

// fail records a failed action and writes the error response
func (s *Server) fail(w http.ResponseWriter, r *http.Request, action, subject string, err error) {
	s.record(action, subject, err, false, "")
	s.errorResponse(w, r, err)
}

// decodePair gates the raw resume and job with the structural validator,
// then decodes and sanitizes them.
func decodePair(req PairRequest) (types.Resume, types.Job, error) {
	if !schemas.IsResume(req.Resume) {
		return types.Resume{}, types.Job{}, &ErrValidation{Field: "resume", Message: "does not match the resume schema"}
	}
	if !schemas.IsJob(req.Job) {
		return types.Resume{}, types.Job{}, &ErrValidation{Field: "job", Message: "does not match the job schema"}
	}

	var resume types.Resume
	if err := json.Unmarshal(req.Resume, &resume); err != nil {
		return types.Resume{}, types.Job{}, &ErrValidation{Field: "resume", Message: err.Error()}
	}
	var job types.Job
	if err := json.Unmarshal(req.Job, &job); err != nil {
		return types.Resume{}, types.Job{}, &ErrValidation{Field: "job", Message: err.Error()}
	}
	return schemas.SanitizeResume(resume), schemas.SanitizeJob(job), nil
}

func (s *Server) handleParseResume(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, ActionParseResume, "", err)
		return
	}

	res, err := s.resumeParser.ParseResumeWithOutcome(r.Context(), req.Text)
	if err != nil {
		s.fail(w, r, ActionParseResume, "", err)
		return
	}

	resp := ParseResumeResponse{Resume: res.Value, Degraded: res.Degraded}
	if s.store != nil {
		id, err := s.store.SaveResume(r.Context(), res.Value)
		if err != nil {
			s.logger.Warn("failed to persist resume", zap.Error(err))
		} else {
			resp.ID = id.String()
		}
	}

	s.record(ActionParseResume, resp.ID, nil, res.Degraded, res.Reason)
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleParseJob(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, ActionParseJob, "", err)
		return
	}

	res, err := s.jobParser.ParseJobWithOutcome(r.Context(), req.Text)
	if err != nil {
		s.fail(w, r, ActionParseJob, "", err)
		return
	}

	resp := ParseJobResponse{Job: res.Value, Degraded: res.Degraded}
	if s.store != nil {
		id, err := s.store.SaveJob(r.Context(), res.Value)
		if err != nil {
			s.logger.Warn("failed to persist job", zap.Error(err))
		} else {
			resp.ID = id.String()
		}
	}

	s.record(ActionParseJob, resp.ID, nil, res.Degraded, res.Reason)
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req PairRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, ActionScore, "", err)
		return
	}
	resume, job, err := decodePair(req)
	if err != nil {
		s.fail(w, r, ActionScore, "", err)
		return
	}

	score := ats.Score(resume, job)
	s.record(ActionScore, "", nil, false, fmt.Sprintf("overall=%d", score.OverallScore))
	s.jsonResponse(w, http.StatusOK, score)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req PairRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, ActionMatch, "", err)
		return
	}
	resume, job, err := decodePair(req)
	if err != nil {
		s.fail(w, r, ActionMatch, "", err)
		return
	}

	resp := MatchResponse{Matches: []types.BulletSimilarityMatch{}}
	reason := ""
	if s.matcher != nil {
		res := s.matcher.MatchWithOutcome(r.Context(), resume, job)
		resp.Matches, resp.Degraded, reason = res.Value, res.Degraded, res.Reason
	}

	s.record(ActionMatch, "", nil, resp.Degraded, reason)
	s.jsonResponse(w, http.StatusOK, resp)
}

// refund gives back a consumed unit. The request has already failed, so a
// refund error is only logged.
func (s *Server) refund(ctx context.Context, userID string, source db.AllowanceSource) {
	if err := s.quota.RefundTailoring(context.WithoutCancel(ctx), userID, source); err != nil {
		s.logger.Error("failed to refund tailoring allowance",
			zap.String("user_id", userID), zap.String("source", string(source)), zap.Error(err))
		return
	}
	s.logger.Info("tailoring allowance refunded",
		zap.String("user_id", userID), zap.String("source", string(source)))
}

func (s *Server) handleTailor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req TailorRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, ActionTailor, "", err)
		return
	}
	resume, job, err := decodePair(req.PairRequest)
	if err != nil {
		s.fail(w, r, ActionTailor, req.UserID, err)
		return
	}

	var charged db.AllowanceSource
	if s.quota != nil {
		if req.UserID == "" {
			s.fail(w, r, ActionTailor, "", &ErrValidation{Field: "user_id", Message: "is required"})
			return
		}
		source, err := s.quota.ConsumeTailoring(ctx, req.UserID)
		if err != nil {
			if errors.Is(err, db.ErrNoAllowance) {
				err = &ErrQuotaExceeded{UserID: req.UserID}
			} else {
				err = fmt.Errorf("quota check failed: %w", err)
			}
			s.fail(w, r, ActionTailor, req.UserID, err)
			return
		}
		charged = source
		s.logger.Debug("tailoring allowance consumed",
			zap.String("user_id", req.UserID), zap.String("source", string(source)))
	}

	outcome, err := s.tailor.TailorWithOutcome(ctx, resume, job, types.TailorStyle(req.Style))
	if err != nil {
		if charged != "" {
			s.refund(ctx, req.UserID, charged)
		}
		s.fail(w, r, ActionTailor, req.UserID, err)
		return
	}

	tailored := outcome.Value
	score := ats.Score(tailored.Resume, job)
	resp := types.TailorResponseData{
		Resume:            tailored.Resume,
		MatchScore:        tailored.MatchScore,
		MissingSkills:     tailored.MissingSkills,
		ATSScore:          &score,
		SimilarityMatches: []types.BulletSimilarityMatch{},
		Strategy:          string(outcome.Strategy),
		Degraded:          outcome.Degraded,
	}

	var reasons []string
	if outcome.Degraded {
		reasons = append(reasons, outcome.Reason)
	}
	if s.matcher != nil {
		m := s.matcher.MatchWithOutcome(ctx, tailored.Resume, job)
		resp.SimilarityMatches = m.Value
		if m.Degraded {
			resp.Degraded = true
			reasons = append(reasons, m.Reason)
		}
	}

	if s.store != nil && req.ResumeID != "" && req.JobID != "" {
		// Both ids passed the uuid validator
		resumeID, jobID := uuid.MustParse(req.ResumeID), uuid.MustParse(req.JobID)
		if err := s.store.SaveTailoring(ctx, resumeID, jobID, &resp); err != nil {
			s.logger.Warn("failed to persist tailoring", zap.Error(err))
		}
	}

	s.record(ActionTailor, req.UserID, nil, resp.Degraded, strings.Join(reasons, "; "))
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	id, err := s.pathID(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if s.store == nil {
		s.errorResponse(w, r, ErrStorageDisabled)
		return
	}

	resume, err := s.store.GetResume(r.Context(), id)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if resume == nil {
		s.errorResponse(w, r, &ErrNotFound{Kind: "resume", ID: id.String()})
		return
	}
	s.jsonResponse(w, http.StatusOK, resume)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := s.pathID(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if s.store == nil {
		s.errorResponse(w, r, ErrStorageDisabled)
		return
	}

	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if job == nil {
		s.errorResponse(w, r, &ErrNotFound{Kind: "job", ID: id.String()})
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleGetTailoring(w http.ResponseWriter, r *http.Request) {
	resumeID, err := s.pathParam(r, "resume_id")
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	jobID, err := s.pathParam(r, "job_id")
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if s.store == nil {
		s.errorResponse(w, r, ErrStorageDisabled)
		return
	}

	out, err := s.store.GetTailoring(r.Context(), resumeID, jobID)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if out == nil {
		s.errorResponse(w, r, &ErrNotFound{Kind: "tailoring", ID: resumeID.String() + "/" + jobID.String()})
		return
	}
	s.jsonResponse(w, http.StatusOK, out)
}

func (s *Server) pathID(r *http.Request) (uuid.UUID, error) {
	return s.pathParam(r, "id")
}

func (s *Server) pathParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: name, Message: "must be a UUID"}
	}
	return id, nil
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := audit.Filter{
		Action:  q.Get("action"),
		Subject: q.Get("subject"),
		Outcome: q.Get("outcome"),
		Limit:   100,
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.errorResponse(w, r, &ErrValidation{Field: "limit", Message: "must be a non-negative integer"})
			return
		}
		filter.Limit = n
	}
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			s.errorResponse(w, r, &ErrValidation{Field: "since", Message: "must be an RFC 3339 timestamp"})
			return
		}
		filter.Since = t
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"events": s.audit.Query(filter)})
}
