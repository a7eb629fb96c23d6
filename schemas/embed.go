// Package schemas embeds the JSON Schema documents for the records exchanged
// between the core and its callers.
package schemas

import (
	"embed"
	"fmt"
)

// File names of the embedded schema documents
const (
	ResumeFile          = "resume.schema.json"
	JobFile             = "job.schema.json"
	TailoringOutputFile = "tailoring_output.schema.json"
)

//go:embed *.schema.json
var files embed.FS

// Load returns the raw bytes of an embedded schema document
func Load(name string) ([]byte, error) {
	data, err := files.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("schema %s not embedded: %w", name, err)
	}
	return data, nil
}

// MustLoad is like Load but panics if the schema is missing
func MustLoad(name string) []byte {
	data, err := Load(name)
	if err != nil {
		panic(err)
	}
	return data
}

// Names lists all embedded schema documents
func Names() []string {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
