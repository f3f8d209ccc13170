package service

import (
	"context"

	"github.com/jonwraymond/coverforge/cover"
	"github.com/jonwraymond/coverforge/render"
)

var canary = &cover.Record{
	Name:           "Health Check",
	StudentID:      "00-00000-0",
	Department:     "Computer Science",
	Program:        "BSc",
	LabGroup:       "A",
	AssignmentNo:   "1",
	SubmissionDate: "2024-01-01",
	Teachers:       []cover.TeacherRef{{Name: "Probe"}},
}

// Probe renders a fixed record in every format, bypassing the cache and
// the bulkhead. It backs the readiness render check.
func (s *Service) Probe(ctx context.Context) error {
	for _, f := range []render.Format{render.FormatPDF, render.FormatDOCX} {
		if _, err := s.renderers[f].Render(ctx, canary, s.variant); err != nil {
			return err
		}
	}
	return nil
}
