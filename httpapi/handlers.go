package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/jonwraymond/coverforge/cover"
	"github.com/jonwraymond/coverforge/render"
	"github.com/jonwraymond/coverforge/resilience"
	"github.com/jonwraymond/coverforge/service"
)

// errorBody is the failure shape for non-validation errors.
type errorBody struct {
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// validationBody carries the validator's messages in field order.
type validationBody struct {
	Error []string `json:"error"`
}

type sendBody struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// readRecord decodes, sanitizes and validates the request body. Sanitizing
// first lets form clients send "" for optional inputs left blank. On
// failure it writes the response and returns nil.
func readRecord(w http.ResponseWriter, r *http.Request) *cover.Record {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{
				Error:   "Request body too large",
				Message: "limit is " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes",
			})
			return nil
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body", Message: err.Error()})
		return nil
	}

	sub, err := cover.DecodeSubmission(data)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body", Message: err.Error()})
		return nil
	}
	sub = cover.Sanitize(sub)
	if res := cover.Validate(sub); !res.IsValid {
		writeJSON(w, http.StatusBadRequest, validationBody{Error: res.Errors})
		return nil
	}
	return sub.Record()
}

func (s *Server) download(f render.Format) http.HandlerFunc {
	failure := "Failed to generate " + map[render.Format]string{
		render.FormatPDF:  "PDF",
		render.FormatDOCX: "DOCX",
	}[f]

	return func(w http.ResponseWriter, r *http.Request) {
		rec := readRecord(w, r)
		if rec == nil {
			return
		}

		out, err := s.svc.RenderVariant(r.Context(), f, r.URL.Query().Get("variant"), rec)
		if err != nil {
			writeRenderError(w, failure, err)
			return
		}

		w.Header().Set("Content-Type", service.ContentType(f))
		// Free-text fields reach the filename, so it is quoted or RFC 2231
		// encoded as needed.
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
			"filename": service.Filename(rec, f),
		}))
		w.Header().Set("Content-Length", strconv.Itoa(len(out)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(out)
	}
}

func (s *Server) sendToShop(w http.ResponseWriter, r *http.Request) {
	rec := readRecord(w, r)
	if rec == nil {
		return
	}

	d, err := s.svc.SendToShop(r.Context(), rec)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, sendBody{
			Success: true,
			Token:   d.Token,
			Message: "PDF sent to print shop successfully",
		})
	case errors.Is(err, service.ErrDeliveryFailed):
		failed := false
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Success: &failed,
			Error:   "Failed to send email",
			Message: err.Error(),
		})
	default:
		writeRenderError(w, "Failed to send to print shop", err)
	}
}

// writeRenderError maps service errors that can occur before delivery.
// Client faults get 400, a saturated renderer 503, everything else 500
// with the route's failure text.
func writeRenderError(w http.ResponseWriter, failure string, err error) {
	switch {
	case errors.Is(err, cover.ErrMalformedInput):
		writeJSON(w, http.StatusBadRequest, validationBody{Error: []string{err.Error()}})
	case errors.Is(err, service.ErrUnknownVariant):
		writeJSON(w, http.StatusBadRequest, validationBody{Error: []string{err.Error()}})
	case errors.Is(err, resilience.ErrBulkheadFull):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "Server busy", Message: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: failure, Message: err.Error()})
	}
}
