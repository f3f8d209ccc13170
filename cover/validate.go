package cover

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Field limits enforced by Validate.
const (
	MinNameLength           = 2
	MaxNameLength           = 100
	MaxProgramLength        = 150
	MaxCourseTitleLength    = 200
	MaxAssignmentNameLength = 200
)

var (
	studentIDPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
	datePattern      = regexp.MustCompile(`^\d{1,2}[/-]\d{1,2}[/-]\d{2,4}$`)
)

// dateLayouts are the free-form date layouts accepted in addition to
// datePattern.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"02 Jan 2006",
}

// ValidationResult is the outcome of Validate.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// Validate checks a submission before a Record is built from it. Errors are
// human-readable and returned in field order.
func Validate(s *Submission) ValidationResult {
	var errs []string
	if s == nil {
		return ValidationResult{Errors: []string{"request body is required"}}
	}

	required := []struct {
		name  string
		value *string
	}{
		{"name", s.Name},
		{"studentId", s.StudentID},
		{"department", s.Department},
		{"program", s.Program},
		{"labGroup", s.LabGroup},
		{"assignmentNo", s.AssignmentNo},
		{"submissionDate", s.SubmissionDate},
	}
	for _, f := range required {
		if f.value == nil || strings.TrimSpace(*f.value) == "" {
			errs = append(errs, fmt.Sprintf("%s is required", f.name))
		}
	}

	errs = append(errs, validateTeachers(s.TeacherField())...)

	optional := []struct {
		name  string
		value *string
	}{
		{"courseNo", s.CourseNo},
		{"courseTitle", s.CourseTitle},
		{"assignmentName", s.AssignmentName},
	}
	for _, f := range optional {
		if f.value != nil && strings.TrimSpace(*f.value) == "" {
			errs = append(errs, fmt.Sprintf("%s must not be empty when provided", f.name))
		}
	}

	if v, ok := Value(s.StudentID); ok && v != "" && !studentIDPattern.MatchString(v) {
		errs = append(errs, "Student ID should contain only letters, numbers, and hyphens")
	}
	if v, ok := Value(s.Department); ok && strings.TrimSpace(v) != "" && !strings.ContainsFunc(v, isASCIILetter) {
		errs = append(errs, "Department must contain at least one letter")
	}
	if v, ok := Value(s.Name); ok && v != "" {
		n := len([]rune(v))
		if n < MinNameLength {
			errs = append(errs, fmt.Sprintf("Name must be at least %d characters long", MinNameLength))
		}
		if n > MaxNameLength {
			errs = append(errs, fmt.Sprintf("Name must not exceed %d characters", MaxNameLength))
		}
	}
	if v, ok := Value(s.Program); ok && len([]rune(v)) > MaxProgramLength {
		errs = append(errs, fmt.Sprintf("Program name must not exceed %d characters", MaxProgramLength))
	}
	if v, ok := Value(s.CourseTitle); ok && len([]rune(v)) > MaxCourseTitleLength {
		errs = append(errs, fmt.Sprintf("Course title must not exceed %d characters", MaxCourseTitleLength))
	}
	if v, ok := Value(s.AssignmentName); ok && len([]rune(v)) > MaxAssignmentNameLength {
		errs = append(errs, fmt.Sprintf("Assignment name must not exceed %d characters", MaxAssignmentNameLength))
	}
	if v, ok := Value(s.SubmissionDate); ok && strings.TrimSpace(v) != "" && !validDate(v) {
		errs = append(errs, "Invalid date format for submission date")
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

func validateTeachers(tl *TeacherList) []string {
	if tl == nil || len(tl.Entries) == 0 {
		return []string{"At least one teacher is required"}
	}

	var errs []string
	if !tl.Array {
		e := tl.Entries[0]
		switch {
		case e.Bare && (e.Name == nil || *e.Name == ""):
			errs = append(errs, "At least one teacher is required")
		case e.Bare && strings.TrimSpace(*e.Name) == "":
			errs = append(errs, "teacher is required")
		case !e.Bare && (e.Name == nil || strings.TrimSpace(*e.Name) == ""):
			errs = append(errs, "teacher name is required")
		}
		if e.Department != nil && strings.TrimSpace(*e.Department) == "" {
			errs = append(errs, "teacher department must not be empty when provided")
		}
		return errs
	}

	for i, e := range tl.Entries {
		switch {
		case e.Bare && (e.Name == nil || strings.TrimSpace(*e.Name) == ""):
			errs = append(errs, fmt.Sprintf("Teacher %d name cannot be empty", i+1))
		case !e.Bare && (e.Name == nil || strings.TrimSpace(*e.Name) == ""):
			errs = append(errs, fmt.Sprintf("Teacher %d name is required", i+1))
		}
		if e.Department != nil && strings.TrimSpace(*e.Department) == "" {
			errs = append(errs, fmt.Sprintf("Teacher %d department must not be empty when provided", i+1))
		}
	}
	return errs
}

func validDate(s string) bool {
	s = strings.TrimSpace(s)
	if datePattern.MatchString(s) {
		return true
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// Sanitize trims every string field and strips angle brackets. Optional
// fields that are blank after trimming are dropped, since form clients send
// "" for inputs the user left empty.
func Sanitize(s *Submission) *Submission {
	if s == nil {
		return nil
	}
	out := &Submission{
		Name:           clean(s.Name),
		StudentID:      clean(s.StudentID),
		Department:     clean(s.Department),
		Program:        clean(s.Program),
		LabGroup:       clean(s.LabGroup),
		CourseNo:       cleanOptional(s.CourseNo),
		CourseTitle:    cleanOptional(s.CourseTitle),
		AssignmentNo:   clean(s.AssignmentNo),
		AssignmentName: cleanOptional(s.AssignmentName),
		SubmissionDate: clean(s.SubmissionDate),
	}
	if tl := s.TeacherField(); tl != nil {
		list := &TeacherList{Array: tl.Array, Entries: make([]TeacherEntry, 0, len(tl.Entries))}
		for _, e := range tl.Entries {
			list.Entries = append(list.Entries, TeacherEntry{
				Name:       clean(e.Name),
				Department: cleanOptional(e.Department),
				Bare:       e.Bare,
			})
		}
		out.Teacher = list
	}
	return out
}

var angleBrackets = strings.NewReplacer("<", "", ">", "")

func clean(p *string) *string {
	if p == nil {
		return nil
	}
	v := angleBrackets.Replace(strings.TrimSpace(*p))
	return &v
}

func cleanOptional(p *string) *string {
	v := clean(p)
	if v == nil || *v == "" {
		return nil
	}
	return v
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
