package cover

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
)

// canonicalVersion is bumped whenever the canonical layout changes, so keys
// from an older layout can never collide with new ones.
const canonicalVersion = 1

// Canonical is the fixed-order form of a Record that keys are derived from.
// It encodes as a CBOR array, so field order is the declaration order below
// and never depends on input order.
type Canonical struct {
	_              struct{} `cbor:",toarray"`
	Version        uint
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
	Teachers       []CanonicalTeacher
}

// CanonicalTeacher is a normalized [name, department] tuple.
type CanonicalTeacher struct {
	_          struct{} `cbor:",toarray"`
	Name       string
	Department string
}

var canonicalEncMode cbor.EncMode

func init() {
	var err error
	canonicalEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("cover: CBOR encoder initialization failed: " + err.Error())
	}
}

// Canonicalize returns the canonical form of r. It is a pure function of r.
//
// A nil optional field is absent. A present optional field that is blank, a
// blank required field, an empty teacher list, or a blank teacher name is
// rejected with ErrMalformedInput.
func Canonicalize(r *Record) (Canonical, error) {
	if r == nil {
		return Canonical{}, malformed("record", "is nil")
	}

	required := []struct {
		name  string
		value string
	}{
		{"name", r.Name},
		{"studentId", r.StudentID},
		{"department", r.Department},
		{"program", r.Program},
		{"labGroup", r.LabGroup},
		{"assignmentNo", r.AssignmentNo},
		{"submissionDate", r.SubmissionDate},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return Canonical{}, malformed(f.name, "is empty")
		}
	}

	optional := []struct {
		name  string
		value *string
	}{
		{"courseNo", r.CourseNo},
		{"courseTitle", r.CourseTitle},
		{"assignmentName", r.AssignmentName},
	}
	for _, f := range optional {
		if f.value != nil && strings.TrimSpace(*f.value) == "" {
			return Canonical{}, malformed(f.name, "is present but empty")
		}
	}

	if len(r.Teachers) == 0 {
		return Canonical{}, malformed("teachers", "is empty")
	}
	for i, t := range r.Teachers {
		if t.Department != nil && strings.TrimSpace(*t.Department) == "" {
			return Canonical{}, malformed(fmt.Sprintf("teachers[%d].department", i), "is present but empty")
		}
	}

	resolved := r.ResolvedTeachers()
	teachers := make([]CanonicalTeacher, 0, len(resolved))
	for i, t := range resolved {
		if t.Name == "" {
			return Canonical{}, malformed(fmt.Sprintf("teachers[%d].name", i), "is empty")
		}
		teachers = append(teachers, CanonicalTeacher{Name: t.Name, Department: t.Department})
	}

	return Canonical{
		Version:        canonicalVersion,
		Name:           r.Name,
		StudentID:      r.StudentID,
		Department:     r.Department,
		Program:        r.Program,
		LabGroup:       r.LabGroup,
		CourseNo:       r.CourseNo,
		CourseTitle:    r.CourseTitle,
		AssignmentNo:   r.AssignmentNo,
		AssignmentName: r.AssignmentName,
		SubmissionDate: r.SubmissionDate,
		Teachers:       teachers,
	}, nil
}

// Keyer derives cache keys from records.
//
// Contract:
// - Determinism: logically equal records produce the same key.
// - Concurrency: safe for concurrent use.
// - Length: keys have a fixed length regardless of record size.
type Keyer struct {
	namespace string
}

// NewKeyer creates a keyer whose keys are prefixed with namespace.
func NewKeyer(namespace string) *Keyer {
	return &Keyer{namespace: namespace}
}

// Key generates a deterministic cache key.
// Format: <namespace>:<hex blake3-256 of the canonical CBOR encoding>
func (k *Keyer) Key(r *Record) (string, error) {
	digest, err := Digest(r)
	if err != nil {
		return "", err
	}
	if k.namespace == "" {
		return digest, nil
	}
	return k.namespace + ":" + digest, nil
}

// Digest returns the hex content hash of the canonical form of r.
func Digest(r *Record) (string, error) {
	c, err := Canonicalize(r)
	if err != nil {
		return "", err
	}
	encoded, err := canonicalEncMode.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("cover: encode canonical record: %w", err)
	}
	sum := blake3.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}
