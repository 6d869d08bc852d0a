package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/njchilds90/gosolve/solver"
)

var (
	errInvalidJSON   = errors.New("request body must be a JSON object")
	errTrailingData  = errors.New("invalid JSON: trailing data")
	errNotString     = errors.New("'expression' must be a string")
	errNotStringList = errors.New("'equations' must be a list of strings")
)

type successResponse struct {
	Success     bool     `json:"success"`
	Result      string   `json:"result"`
	Explanation string   `json:"explanation"`
	Shape       string   `json:"shape"`
	Normalized  []string `json:"normalized"`
	Canonical   string   `json:"canonical,omitempty"`
}

type failureResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Explanation string `json:"explanation"`
}

// explainer is implemented by every solver error.
type explainer interface {
	Message() string
	Explanation() string
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	body, err := s.decodeBody(w, r)
	if err == nil {
		var expr string
		if expr, err = expressionField(body); err == nil {
			s.solve(w, r, "solve", func(ctx context.Context) (*solver.Result, error) {
				return s.solver.Solve(ctx, expr)
			})
			return
		}
	}
	s.fail(w, r, "solve", 0, err)
}

func (s *Server) handleSolveSystem(w http.ResponseWriter, r *http.Request) {
	body, err := s.decodeBody(w, r)
	if err == nil {
		var eqs []string
		if eqs, err = equationsField(body); err == nil {
			s.solve(w, r, "solve_system", func(ctx context.Context) (*solver.Result, error) {
				return s.solver.SolveSystem(ctx, eqs)
			})
			return
		}
	}
	s.fail(w, r, "solve_system", 0, err)
}

// solve runs fn under the configured timeout and writes the outcome.
func (s *Server) solve(w http.ResponseWriter, r *http.Request, path string, fn func(context.Context) (*solver.Result, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.SolveTimeout)
	defer cancel()

	start := time.Now()
	res, err := fn(ctx)
	elapsed := time.Since(start)
	if err != nil {
		s.fail(w, r, path, elapsed, err)
		return
	}
	s.metrics.RecordSolve(path, res.Shape.Name(), elapsed)
	writeJSON(w, http.StatusOK, successResponse{
		Success:     true,
		Result:      res.Display,
		Explanation: res.Explanation,
		Shape:       res.Shape.Name(),
		Normalized:  res.Normalized,
		Canonical:   res.Canonical,
	})
}

// fail logs err, records it and writes the failure shape.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, path string, elapsed time.Duration, err error) {
	status := statusFor(err)
	s.metrics.RecordSolveError(path, errorKind(err), elapsed)

	entry := s.log.WithFields(logrus.Fields{
		"path":     path,
		"status":   status,
		"kind":     errorKind(err),
		"trace_id": TraceID(r.Context()),
	}).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("solve failed")
	} else {
		entry.Warn("solve rejected")
	}

	resp := failureResponse{
		Message:     "An unexpected error occurred.",
		Explanation: fmt.Sprintf("Error details: %v\nIt might be due to incorrect syntax or a highly complex expression.", err),
	}
	var ex explainer
	if errors.As(err, &ex) {
		resp.Message, resp.Explanation = ex.Message(), ex.Explanation()
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"time":         s.now().UTC().Format(time.RFC3339),
		"decimal_mode": s.normalizer.DecimalMode().String(),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, failureResponse{
		Message:     "Not found.",
		Explanation: fmt.Sprintf("No route for %s %s. Use POST /solve or POST /solve_system.", r.Method, r.URL.Path),
	})
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, failureResponse{
		Message:     "Method not allowed.",
		Explanation: fmt.Sprintf("%s is not supported on %s.", r.Method, r.URL.Path),
	})
}

// decodeBody reads a size-limited JSON object.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	var body map[string]json.RawMessage
	if err := dec.Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &solver.InputError{Index: -1, Err: err}
		}
		return nil, &solver.InputError{Index: -1, Err: fmt.Errorf("%w: %v", errInvalidJSON, err)}
	}
	if body == nil {
		return nil, &solver.InputError{Index: -1, Err: errInvalidJSON}
	}
	if dec.More() {
		return nil, &solver.InputError{Index: -1, Err: errTrailingData}
	}
	return body, nil
}

func expressionField(body map[string]json.RawMessage) (string, error) {
	raw, ok := body["expression"]
	if !ok || string(raw) == "null" {
		return "", &solver.InputError{Index: -1, Err: solver.ErrEmptyInput}
	}
	var expr string
	if err := json.Unmarshal(raw, &expr); err != nil {
		return "", &solver.InputError{Index: -1, Err: errNotString}
	}
	if strings.TrimSpace(expr) == "" {
		return "", &solver.InputError{Input: expr, Index: -1, Err: solver.ErrEmptyInput}
	}
	return expr, nil
}

func equationsField(body map[string]json.RawMessage) ([]string, error) {
	raw, ok := body["equations"]
	if !ok || string(raw) == "null" {
		return nil, &solver.InputError{Index: -1, Err: solver.ErrNoEquations}
	}
	var eqs []string
	if err := json.Unmarshal(raw, &eqs); err != nil {
		return nil, &solver.InputError{Index: -1, Err: errNotStringList}
	}
	if len(eqs) == 0 {
		return nil, &solver.InputError{Index: -1, Err: solver.ErrNoEquations}
	}
	return eqs, nil
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var (
		inErr    *solver.InputError
		parseErr *solver.ParseError
		solveErr *solver.SolveError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &inErr), errors.As(err, &parseErr):
		return http.StatusBadRequest
	case errors.As(err, &solveErr):
		if solveErr.Kind == solver.Unsupported || solveErr.Kind == solver.Undefined {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// errorKind labels err for metrics and logs.
func errorKind(err error) string {
	var (
		inErr    *solver.InputError
		parseErr *solver.ParseError
		solveErr *solver.SolveError
	)
	switch {
	case errors.As(err, &inErr):
		return "input"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &solveErr):
		return solveErr.Kind.String()
	}
	return solver.Internal.String()
}

// ErrorKinds lists every label errorKind can return.
func ErrorKinds() []string {
	kinds := []string{"input", "parse"}
	for _, k := range solver.Kinds {
		kinds = append(kinds, k.String())
	}
	return kinds
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
