// Package render lays out cover sheets and writes them as PDF or DOCX.
//
// Rendering happens in two steps. [Plan] turns a record and a [Variant] into
// a format-independent [Layout]: an ordered list of styled lines, each
// carrying the vertical gap that follows it. The PDF and DOCX renderers then
// draw that layout with their own primitives. Spacing rules such as gap
// collapse for absent optional fields and position-dependent teacher gaps
// live only in the planner, so both formats agree on them.
//
// Renderers are pure functions of the record, the variant, the institution
// and the loaded [Assets]. Repeated renders of the same input produce the
// same bytes, which is what makes caching by canonical key sound. The
// stamped variant embeds a generation timestamp and is the one exception;
// it reports Cacheable == false.
package render
