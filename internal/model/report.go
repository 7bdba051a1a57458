package model

import (
	"time"

	"github.com/ppiankov/arrestflow/internal/facts"
)

// AtlasReport indexes a batch render of every fact combination
// This is the index.json written next to the rendered files
type AtlasReport struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Format      string       `json:"format"`
	Graph       string       `json:"graph"`    // Fingerprint of the rule graph
	Entries     []AtlasEntry `json:"entries"`  // One per fact combination
	Failures    int          `json:"failures"` // Entries with an error
}

// AtlasEntry is one rendered fact combination
type AtlasEntry struct {
	Facts      facts.Facts `json:"facts"`
	File       string      `json:"file,omitempty"`
	Relevant   int         `json:"relevant"`
	Irrelevant int         `json:"irrelevant"`
	Bytes      int         `json:"bytes"`
	Error      string      `json:"error,omitempty"`
}

// FileName returns a filesystem-safe name for a fact combination
func FileName(f facts.Facts, ext string) string {
	part := func(s string) string {
		if s == "" {
			return "any"
		}
		return s
	}
	return part(string(f.ArrestingPerson)) + "_" +
		part(warrantName(f.Warrant)) + "_" +
		part(string(f.OffenceCategory)) + ext
}

func warrantName(w facts.Warrant) string {
	switch w {
	case facts.WarrantYes:
		return "warrant"
	case facts.WarrantNo:
		return "nowarrant"
	}
	return ""
}
