package token

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jonwraymond/coverforge/cover"
)

// Prefix starts every legacy token.
const Prefix = "ASGN"

// IntN is a source of bounded random integers, satisfied by *rand.Rand
// from math/rand/v2.
type IntN interface {
	IntN(n int) int
}

// Simple returns "ASGN" + the last 8 digits of the unix millisecond clock +
// a random 4-digit number.
func Simple(at time.Time, rnd IntN) string {
	return Prefix + lastDigits(at, 8) + strconv.Itoa(1000+rnd.IntN(9000))
}

// Student returns "ASGN-<ID>-" + the last 6 digits of the unix millisecond
// clock + a random 3-digit number, where ID keeps only the alphanumeric
// characters of the student id, upper-cased.
func Student(rec *cover.Record, at time.Time, rnd IntN) string {
	var id strings.Builder
	for i := 0; i < len(rec.StudentID); i++ {
		c := rec.StudentID[i]
		if isDigit(c) || isLetter(c) {
			id.WriteByte(upper(c))
		}
	}
	return fmt.Sprintf("%s-%s-%s%d", Prefix, id.String(), lastDigits(at, 6), 100+rnd.IntN(900))
}

func lastDigits(at time.Time, n int) string {
	ms := strconv.FormatInt(at.UnixMilli(), 10)
	if len(ms) > n {
		ms = ms[len(ms)-n:]
	}
	return ms
}
