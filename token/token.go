package token

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/blake3"

	"github.com/jonwraymond/coverforge/cover"
)

const (
	serialDigits = 3
	maxAbbrev    = 3
)

// Generator produces delivery tokens stamped by its clock.
type Generator struct {
	now func() time.Time
}

// NewGenerator creates a generator. A nil clock defaults to time.Now.
func NewGenerator(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now}
}

// Next returns the token for rec at the generator's current time.
func (g *Generator) Next(rec *cover.Record) string {
	return Generate(rec, g.now())
}

// Generate returns "<serial>-<fingerprint>-<department>" for rec at time at.
func Generate(rec *cover.Record, at time.Time) string {
	return Serial(rec.StudentID) + "-" +
		Fingerprint(rec.StudentID, rec.AssignmentNo, at) + "-" +
		Abbreviate(rec.Department)
}

// Serial returns the last three digits of the longest digit run in id,
// left-padded with zeros. When several runs are equally long the last one
// wins. An id without digits yields "000".
func Serial(id string) string {
	var best, cur string
	for i := 0; i <= len(id); i++ {
		if i < len(id) && isDigit(id[i]) {
			cur += string(id[i])
			continue
		}
		if cur != "" && len(cur) >= len(best) {
			best = cur
		}
		cur = ""
	}
	if len(best) > serialDigits {
		best = best[len(best)-serialDigits:]
	}
	return strings.Repeat("0", serialDigits-len(best)) + best
}

// Fingerprint returns the first byte of the blake3 hash of
// id + assignmentNo + unix milliseconds, as two upper-case hex digits.
func Fingerprint(id, assignmentNo string, at time.Time) string {
	sum := blake3.Sum256([]byte(id + assignmentNo + strconv.FormatInt(at.UnixMilli(), 10)))
	return fmt.Sprintf("%02X", sum[0])
}

// Abbreviate returns up to three upper-case initials of the words of dept.
// Only ASCII letters count, so "Computer Science & Engineering" yields
// "CSE". A department without letters, which cover.Validate rejects, falls
// back to its first three characters upper-cased.
func Abbreviate(dept string) string {
	var initials []byte
	for _, word := range strings.Fields(dept) {
		for i := 0; i < len(word); i++ {
			if isLetter(word[i]) {
				initials = append(initials, upper(word[i]))
				break
			}
		}
		if len(initials) == maxAbbrev {
			break
		}
	}
	if len(initials) == 0 {
		r := []rune(strings.TrimSpace(dept))
		return strings.ToUpper(string(r[:min(len(r), maxAbbrev)]))
	}
	return string(initials)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
