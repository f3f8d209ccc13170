package render

import (
	"strings"
	"time"

	"github.com/jonwraymond/coverforge/cover"
)

// lineHeightFactor converts a font size to a line height.
const lineHeightFactor = 1.15

// Block identifies a section of the cover sheet.
type Block int

const (
	BlockHeader Block = iota
	BlockCourse
	BlockAssignment
	BlockSubmittedTo
	BlockSubmittedBy
	BlockFooter
)

func (b Block) String() string {
	switch b {
	case BlockHeader:
		return "header"
	case BlockCourse:
		return "course"
	case BlockAssignment:
		return "assignment"
	case BlockSubmittedTo:
		return "submitted_to"
	case BlockSubmittedBy:
		return "submitted_by"
	case BlockFooter:
		return "footer"
	default:
		return "unknown"
	}
}

// Align is a horizontal alignment.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
)

// Run is a span of text with uniform emphasis.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
}

// Line is one laid-out line of text.
type Line struct {
	Block Block
	Runs  []Run
	Size  float64
	Align Align
	// After is the gap following the line, in multiples of its height.
	After float64
}

// Text returns the concatenated text of the line.
func (l Line) Text() string {
	if len(l.Runs) == 1 {
		return l.Runs[0].Text
	}
	var b strings.Builder
	for _, r := range l.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Bold reports whether every run of the line is bold.
func (l Line) Bold() bool {
	for _, r := range l.Runs {
		if !r.Bold {
			return false
		}
	}
	return len(l.Runs) > 0
}

// Height returns the line height in points.
func (l Line) Height() float64 {
	return l.Size * lineHeightFactor
}

// GapPoints returns the trailing gap in points.
func (l Line) GapPoints() float64 {
	return l.After * l.Height()
}

// Institution names the issuing institution in the header and in teacher
// department lines.
type Institution struct {
	Name string
	// ShortName is appended to teacher department lines when set.
	ShortName string
}

// DefaultInstitution returns the institution used when none is configured.
func DefaultInstitution() Institution {
	return Institution{
		Name:      "Ahsanullah University of Science and Technology",
		ShortName: "AUST",
	}
}

// Layout is the format-independent plan of a cover sheet.
type Layout struct {
	Variant string
	Lines   []Line
}

// Block returns the lines belonging to b, in order.
func (l Layout) Block(b Block) []Line {
	var out []Line
	for _, line := range l.Lines {
		if line.Block == b {
			out = append(out, line)
		}
	}
	return out
}

// StampLayout is the time format of the footer line.
const StampLayout = "January 2, 2006 at 3:04 PM"

// Plan lays out rec with variant v. The stamp is only read by variants with
// a footer. Plan rejects records that would not canonicalize with the
// same *cover.MalformedInputError the Keyer returns.
func Plan(rec *cover.Record, v Variant, inst Institution, stamp time.Time) (Layout, error) {
	if _, err := cover.Canonicalize(rec); err != nil {
		return Layout{}, err
	}
	if err := v.Validate(); err != nil {
		return Layout{}, err
	}

	p := &planner{v: v}
	sp := v.Spacing
	body := v.BodySize

	p.line(BlockHeader, AlignCenter, 16, sp.Loose, Run{Text: inst.Name, Bold: true})
	p.line(BlockHeader, AlignCenter, 12, 0, Run{Text: "Department of " + rec.Department})
	p.end(sp.Block)

	p.field(BlockCourse, "Program", rec.Program, sp.Tight, false)
	if s, ok := cover.Value(rec.CourseNo); ok {
		p.field(BlockCourse, "Course No", s, sp.Tight, false)
	}
	if s, ok := cover.Value(rec.CourseTitle); ok {
		p.field(BlockCourse, "Course Title", s, sp.Tight, false)
	}
	p.end(sp.Block)

	p.field(BlockAssignment, "Assignment No", rec.AssignmentNo, sp.Loose, true)
	if s, ok := cover.Value(rec.AssignmentName); ok {
		p.field(BlockAssignment, "Assignment Name", s, sp.Loose, false)
	}
	p.field(BlockAssignment, "Date of Submission", rec.SubmissionDate, 0, false)
	p.end(sp.Section)

	p.line(BlockSubmittedTo, AlignLeft, body, sp.Loose, Run{Text: "Submitted To:", Bold: true})
	teachers := rec.ResolvedTeachers()
	for i, t := range teachers {
		gap := sp.Teacher
		if i == len(teachers)-1 {
			gap = sp.Section
		}
		dept := "Department of " + t.Department
		if inst.ShortName != "" {
			dept += ", " + inst.ShortName + "."
		}
		p.line(BlockSubmittedTo, AlignLeft, body, sp.Tight, Run{Text: t.Name})
		p.line(BlockSubmittedTo, AlignLeft, body, gap, Run{Text: dept})
	}
	p.end(sp.Section)

	p.line(BlockSubmittedBy, AlignLeft, body, sp.Loose, Run{Text: "Submitted By:", Bold: true})
	p.line(BlockSubmittedBy, AlignLeft, body, sp.Tight, Run{Text: rec.Name})
	p.field(BlockSubmittedBy, "ID", rec.StudentID, sp.Tight, false)
	p.field(BlockSubmittedBy, "Lab Group", rec.LabGroup, 0, false)

	if v.Footer {
		p.end(sp.Section)
		p.line(BlockFooter, AlignCenter, 10, 0, Run{Text: "Generated on " + stamp.Format(StampLayout), Italic: true})
	}
	p.end(0)

	return Layout{Variant: v.Name, Lines: p.lines}, nil
}

type planner struct {
	v     Variant
	lines []Line
	start int
}

func (p *planner) line(b Block, align Align, size, after float64, runs ...Run) {
	p.lines = append(p.lines, Line{Block: b, Runs: runs, Size: size, Align: align, After: after})
}

// field adds a "Label: value" line in the variant's style.
func (p *planner) field(b Block, label, value string, after float64, emphasised bool) {
	size := p.v.BodySize
	if emphasised && !p.v.Labelled {
		size = 12
	}
	align := AlignCenter
	if p.v.Labelled || b == BlockSubmittedBy {
		align = AlignLeft
	}
	if p.v.Labelled {
		p.line(b, align, size, after,
			Run{Text: label + ": ", Bold: true},
			Run{Text: value, Bold: emphasised},
		)
		return
	}
	p.line(b, align, size, after, Run{Text: label + ": " + value, Bold: emphasised})
}

// end closes the current block. Its trailing gap moves to the last line the
// block actually produced, so absent optional lines leave nothing behind.
func (p *planner) end(gap float64) {
	if len(p.lines) > p.start {
		p.lines[len(p.lines)-1].After = gap
	}
	p.start = len(p.lines)
}
