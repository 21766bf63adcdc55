// Package models holds the library records shared by storage, the index and
// the service layer.
package models

import "time"

// ScoreFile is a score document found in the library directory.
type ScoreFile struct {
	Path      string
	Checksum  string
	Size      int64
	UpdatedAt time.Time
}

// ScoreSummary is the indexed view of one score file.
type ScoreSummary struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Composer  string    `json:"composer"`
	Copyright string    `json:"copyright,omitempty"`
	Checksum  string    `json:"checksum"`
	PartNames []string  `json:"part_names"`
	Parts     int       `json:"parts"`
	Measures  int       `json:"measures"`
	Notes     int       `json:"notes"`
	Rests     int       `json:"rests"`
	Warnings  int       `json:"warnings"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Diagnostic is an import problem recorded against a score file. Code
// "fatal" marks a file that could not be imported at all.
type Diagnostic struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Part    string `json:"part,omitempty"`
	Measure string `json:"measure,omitempty"`
}

// DiagnosticFatal is the code stored for files that failed to import.
const DiagnosticFatal = "fatal"
