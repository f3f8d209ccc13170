package service

import (
	"github.com/jonwraymond/coverforge/cover"
	"github.com/jonwraymond/coverforge/render"
)

// ContentType returns the MIME type served for format f.
func ContentType(f render.Format) string {
	return f.ContentType()
}

// Filename returns the download name "Ass_<assignmentNo>_<studentId>.<ext>".
func Filename(rec *cover.Record, f render.Format) string {
	return "Ass_" + rec.AssignmentNo + "_" + rec.StudentID + "." + f.Ext()
}
