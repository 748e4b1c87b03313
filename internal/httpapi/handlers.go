package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mesh-intelligence/leadfunnel/internal/funnel"
	"github.com/mesh-intelligence/leadfunnel/pkg/types"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Step   int               `json:"step,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

type fieldRequest struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type gotoRequest struct {
	Step int `json:"step"`
}

type exitRequest struct {
	Email string `json:"email"`
}

type linkResponse struct {
	Link string `json:"link"`
	Step int    `json:"step"`
}

type exitResponse struct {
	ExitAttempts int `json:"exitAttempts"`
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if _, err := s.funnel.Resume(r.URL.String()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.funnel.State())
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.funnel.State())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var fields types.FormRecord
	if err := decodeBody(w, r, &fields); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if _, err := s.funnel.Submit(fields); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.funnel.State())
}

func (s *Server) handleField(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.funnel.SaveField(req.Name, req.Value); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.funnel.State())
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	if _, err := s.funnel.Back(); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.funnel.State())
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	if _, err := s.funnel.Restart(); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.funnel.State())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.funnel.Reset(); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.funnel.State())
}

func (s *Server) handleGoto(w http.ResponseWriter, r *http.Request) {
	var req gotoRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.funnel.GoTo(req.Step); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.funnel.State())
}

func (s *Server) handleLink(w http.ResponseWriter, r *http.Request) {
	link, err := s.funnel.ContinuationLink()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, linkResponse{Link: link, Step: s.funnel.Current()})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	rec, err := s.funnel.Download()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleExit(w http.ResponseWriter, r *http.Request) {
	var req exitRequest
	if r.ContentLength != 0 {
		if err := decodeBody(w, r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
	}
	n, err := s.funnel.Exit(req.Email)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exitResponse{ExitAttempts: n})
}

func (s *Server) handleConsent(w http.ResponseWriter, r *http.Request) {
	records, err := s.funnel.Compliance().PersistedLog()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// writeError maps funnel errors onto status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var verr *funnel.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  "validation failed",
			Step:   verr.Step,
			Fields: verr.Fields,
		})
	case errors.Is(err, funnel.ErrFunnelComplete), errors.Is(err, funnel.ErrNotAtFinalStep):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, funnel.ErrUnknownStep),
		errors.Is(err, types.ErrTypeMismatch),
		errors.Is(err, types.ErrInvalidFieldName),
		errors.Is(err, types.ErrInvalidFieldValue):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		s.logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// decodeBody reads a single JSON value from the request body.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
