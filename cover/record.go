package cover

import "strings"

// Record is the validated, in-memory form of one cover sheet submission.
//
// Optional fields are pointers: nil means absent. An empty string is a
// distinct, invalid state that validation rejects upstream.
type Record struct {
	Name           string
	StudentID      string
	Department     string
	Program        string
	LabGroup       string
	CourseNo       *string
	CourseTitle    *string
	AssignmentNo   string
	AssignmentName *string
	SubmissionDate string
	Teachers       []TeacherRef
}

// TeacherRef is one entry of the "Submitted To" block.
type TeacherRef struct {
	Name string
	// Department defaults to the record department when nil.
	Department *string
}

// ResolvedTeacher is a TeacherRef with whitespace trimmed and the
// department default applied.
type ResolvedTeacher struct {
	Name       string
	Department string
}

// ResolvedTeachers returns the normalized teacher list in input order.
// Renderers and the Keyer both read teachers through this method so that
// records sharing a key also share rendered output.
func (r *Record) ResolvedTeachers() []ResolvedTeacher {
	out := make([]ResolvedTeacher, 0, len(r.Teachers))
	for _, t := range r.Teachers {
		dept := r.Department
		if t.Department != nil {
			dept = *t.Department
		}
		out = append(out, ResolvedTeacher{
			Name:       strings.TrimSpace(t.Name),
			Department: strings.TrimSpace(dept),
		})
	}
	return out
}

// Str returns a pointer to s. It is a convenience for building records
// with optional fields.
func Str(s string) *string {
	return &s
}

// Value returns the pointed-to string and whether it is present.
func Value(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, true
}
