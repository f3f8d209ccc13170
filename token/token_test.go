package token

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"testing"
	"time"

	"github.com/jonwraymond/coverforge/cover"
)

var tokenPattern = regexp.MustCompile(`^\d{3}-[0-9A-F]{2}-[A-Z]{1,3}$`)

func sampleRecord() *cover.Record {
	return &cover.Record{
		StudentID:    "18-12345-1",
		AssignmentNo: "3",
		Department:   "Computer Science",
	}
}

func TestGenerate_Shape(t *testing.T) {
	at := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)
	tok := Generate(sampleRecord(), at)

	if !tokenPattern.MatchString(tok) {
		t.Fatalf("Generate() = %q, does not match %s", tok, tokenPattern)
	}
	if tok[:3] != "345" {
		t.Errorf("serial = %q, want 345", tok[:3])
	}
	if tok[len(tok)-2:] != "CS" {
		t.Errorf("department = %q, want CS", tok[len(tok)-2:])
	}
}

func TestGenerate_TimeDependent(t *testing.T) {
	at := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)
	rec := sampleRecord()

	if Generate(rec, at) != Generate(rec, at) {
		t.Error("tokens at the same instant should be equal")
	}

	// The fingerprint is one byte, so scan a window of instants for a change.
	base := Fingerprint(rec.StudentID, rec.AssignmentNo, at)
	for i := 1; i <= 64; i++ {
		if Fingerprint(rec.StudentID, rec.AssignmentNo, at.Add(time.Duration(i)*time.Millisecond)) != base {
			return
		}
	}
	t.Error("fingerprint never changed across 64 milliseconds")
}

func TestGenerator_UsesClock(t *testing.T) {
	at := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)
	g := NewGenerator(func() time.Time { return at })

	if got, want := g.Next(sampleRecord()), Generate(sampleRecord(), at); got != want {
		t.Errorf("Next() = %q, want %q", got, want)
	}
	if NewGenerator(nil).now == nil {
		t.Error("NewGenerator(nil) should default the clock")
	}
}

func TestSerial(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"18-12345-1", "345"},
		{"180104123", "123"},
		{"12-34", "034"},
		{"ab-7", "007"},
		{"x1y2", "002"},
		{"STUDENT", "000"},
		{"", "000"},
		{"2021-0042", "042"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := Serial(tt.id); got != tt.want {
				t.Errorf("Serial(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestAbbreviate(t *testing.T) {
	tests := []struct {
		dept string
		want string
	}{
		{"Computer Science", "CS"},
		{"Computer Science & Engineering", "CSE"},
		{"electrical and electronic engineering", "EAE"},
		{"Civil Engineering and Architecture Design", "CEA"},
		{"Architecture", "A"},
		{"  Textile   Engineering ", "TE"},
		{"3D Arts", "DA"},
		{"123 456", "123"},
		{" 42 ", "42"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.dept, func(t *testing.T) {
			if got := Abbreviate(tt.dept); got != tt.want {
				t.Errorf("Abbreviate(%q) = %q, want %q", tt.dept, got, tt.want)
			}
		})
	}
}

func TestFingerprint_Format(t *testing.T) {
	fp := Fingerprint("18-12345-1", "3", time.UnixMilli(1714554000000))
	if !regexp.MustCompile(`^[0-9A-F]{2}$`).MatchString(fp) {
		t.Errorf("Fingerprint() = %q", fp)
	}
}

func TestSimple(t *testing.T) {
	rnd := rand.New(rand.NewPCG(1, 2))
	at := time.UnixMilli(1714554012345)

	tok := Simple(at, rnd)
	if !regexp.MustCompile(`^ASGN\d{12}$`).MatchString(tok) {
		t.Fatalf("Simple() = %q", tok)
	}
	if tok[4:12] != "54012345" {
		t.Errorf("timestamp part = %q, want 54012345", tok[4:12])
	}
}

func TestStudent(t *testing.T) {
	rnd := rand.New(rand.NewPCG(1, 2))
	at := time.UnixMilli(1714554012345)
	rec := &cover.Record{StudentID: "18-12345-1a"}

	tok := Student(rec, at, rnd)
	if !regexp.MustCompile(`^ASGN-18123451A-012345\d{3}$`).MatchString(tok) {
		t.Errorf("Student() = %q", tok)
	}
}

func ExampleGenerate() {
	rec := &cover.Record{StudentID: "18-12345-1", AssignmentNo: "3", Department: "Computer Science"}
	tok := Generate(rec, time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC))
	fmt.Println(tok[:3], tok[len(tok)-2:], len(tok))
	// Output:
	// 345 CS 9
}
