// Package cover defines the assignment cover sheet record, its JSON wire
// shape, the submission validator, and the canonical key derivation used to
// memoize rendered documents.
//
// A Submission is decoded from the wire, validated with Validate, and turned
// into a Record with Submission.Record. Everything downstream works with
// *Record only; the polymorphic teacher field is normalized at decode time.
package cover
