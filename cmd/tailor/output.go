package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
)

// writeJSON writes v as indented JSON to path, or to w when path is empty
func writeJSON(w io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// readPair loads a resume and a job from JSON files, rejecting documents
// that do not match their schema, and sanitizes both.
func readPair(resumePath, jobPath string) (types.Resume, types.Job, error) {
	if resumePath == "" || jobPath == "" {
		return types.Resume{}, types.Job{}, errors.New("--resume and --job are required")
	}

	resumeDoc, err := readDoc(resumePath)
	if err != nil {
		return types.Resume{}, types.Job{}, err
	}
	jobDoc, err := readDoc(jobPath)
	if err != nil {
		return types.Resume{}, types.Job{}, err
	}

	if !schemas.IsResume(resumeDoc) {
		return types.Resume{}, types.Job{}, fmt.Errorf("%s does not match the resume schema", resumePath)
	}
	if !schemas.IsJob(jobDoc) {
		return types.Resume{}, types.Job{}, fmt.Errorf("%s does not match the job schema", jobPath)
	}

	var resume types.Resume
	if err := json.Unmarshal(resumeDoc, &resume); err != nil {
		return types.Resume{}, types.Job{}, fmt.Errorf("failed to decode resume: %w", err)
	}
	var job types.Job
	if err := json.Unmarshal(jobDoc, &job); err != nil {
		return types.Resume{}, types.Job{}, fmt.Errorf("failed to decode job: %w", err)
	}
	return schemas.SanitizeResume(resume), schemas.SanitizeJob(job), nil
}

func readDoc(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
