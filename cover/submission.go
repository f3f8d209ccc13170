package cover

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Submission is the JSON wire shape of a cover sheet request. Every field is
// a pointer so that an absent field can be told apart from an empty one.
type Submission struct {
	Name           *string      `json:"name"`
	StudentID      *string      `json:"studentId"`
	Department     *string      `json:"department"`
	Program        *string      `json:"program"`
	LabGroup       *string      `json:"labGroup"`
	CourseNo       *string      `json:"courseNo,omitempty"`
	CourseTitle    *string      `json:"courseTitle,omitempty"`
	AssignmentNo   *string      `json:"assignmentNo"`
	AssignmentName *string      `json:"assignmentName,omitempty"`
	SubmissionDate *string      `json:"submissionDate"`
	Teacher        *TeacherList `json:"teacher,omitempty"`
	// Teachers is accepted as an alias of Teacher; it wins when both are set.
	Teachers *TeacherList `json:"teachers,omitempty"`
}

// TeacherList is the normalized form of the polymorphic teacher field. The
// wire value may be a bare name, a {name, department} object, or a
// non-empty array of either.
type TeacherList struct {
	Entries []TeacherEntry
	// Array records whether the wire value was an array. Only validation
	// messages depend on it.
	Array bool
}

// TeacherEntry is one decoded teacher. Bare is set for string entries.
type TeacherEntry struct {
	Name       *string
	Department *string
	Bare       bool
}

type teacherObject struct {
	Name       *string `json:"name"`
	Department *string `json:"department"`
}

var errTeacherShape = errors.New("cover: teacher must be a string, an object or an array")

// UnmarshalJSON implements json.Unmarshaler.
func (l *TeacherList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = TeacherList{}
		return nil
	}

	switch data[0] {
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		entries := make([]TeacherEntry, 0, len(raw))
		for i, item := range raw {
			entry, err := decodeTeacher(item)
			if err != nil {
				return fmt.Errorf("teacher %d: %w", i+1, err)
			}
			entries = append(entries, entry)
		}
		*l = TeacherList{Entries: entries, Array: true}
		return nil
	default:
		entry, err := decodeTeacher(data)
		if err != nil {
			return err
		}
		*l = TeacherList{Entries: []TeacherEntry{entry}}
		return nil
	}
}

// MarshalJSON emits the list as an array of objects.
func (l TeacherList) MarshalJSON() ([]byte, error) {
	out := make([]teacherObject, 0, len(l.Entries))
	for _, e := range l.Entries {
		out = append(out, teacherObject{Name: e.Name, Department: e.Department})
	}
	return json.Marshal(out)
}

func decodeTeacher(data json.RawMessage) (TeacherEntry, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return TeacherEntry{}, errTeacherShape
	}
	switch data[0] {
	case '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return TeacherEntry{}, err
		}
		return TeacherEntry{Name: &name, Bare: true}, nil
	case '{':
		var obj teacherObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return TeacherEntry{}, err
		}
		return TeacherEntry{Name: obj.Name, Department: obj.Department}, nil
	default:
		return TeacherEntry{}, errTeacherShape
	}
}

// DecodeSubmission decodes a JSON request body.
func DecodeSubmission(data []byte) (*Submission, error) {
	var s Submission
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("cover: decode submission: %w", err)
	}
	return &s, nil
}

// TeacherField returns the effective teacher list, preferring Teachers.
func (s *Submission) TeacherField() *TeacherList {
	if s.Teachers != nil {
		return s.Teachers
	}
	return s.Teacher
}

// Record converts a validated submission into a Record. It does not
// re-validate; callers must run Validate first. A nil required field
// becomes an empty string, which the Keyer rejects as malformed.
func (s *Submission) Record() *Record {
	r := &Record{
		Name:           deref(s.Name),
		StudentID:      deref(s.StudentID),
		Department:     deref(s.Department),
		Program:        deref(s.Program),
		LabGroup:       deref(s.LabGroup),
		CourseNo:       clonePtr(s.CourseNo),
		CourseTitle:    clonePtr(s.CourseTitle),
		AssignmentNo:   deref(s.AssignmentNo),
		AssignmentName: clonePtr(s.AssignmentName),
		SubmissionDate: deref(s.SubmissionDate),
	}
	if tl := s.TeacherField(); tl != nil {
		r.Teachers = make([]TeacherRef, 0, len(tl.Entries))
		for _, e := range tl.Entries {
			r.Teachers = append(r.Teachers, TeacherRef{
				Name:       deref(e.Name),
				Department: clonePtr(e.Department),
			})
		}
	}
	return r
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
