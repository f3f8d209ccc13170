// Package mail delivers rendered cover sheets to the print shop.
//
// A Sender takes the record, the PDF and the correlation token and reports
// a Result. SMTPSender talks to a relay through go-mail inside a
// resilience.Executor; LogSender only logs, and stands in when no relay is
// configured.
package mail
