package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/njchilds90/gosolve/notation"
	"github.com/njchilds90/gosolve/solver"
)

// ToolRequest is an agent tool call.
type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

// ToolResponse is the reply to a ToolRequest. Tool errors are reported in
// Error with a 200 status.
type ToolResponse struct {
	Result      interface{} `json:"result,omitempty"`
	String      string      `json:"string,omitempty"`
	Shape       string      `json:"shape,omitempty"`
	Explanation string      `json:"explanation,omitempty"`
	Error       string      `json:"error,omitempty"`
}

func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req ToolRequest
	if err := dec.Decode(&req); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, ToolResponse{Error: err.Error()})
		return
	}
	if dec.More() {
		writeJSON(w, http.StatusBadRequest, ToolResponse{Error: errTrailingData.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.SolveTimeout)
	defer cancel()
	resp := s.callTool(ctx, req)
	if resp.Error != "" {
		s.log.WithFields(logrus.Fields{
			"tool":     req.Tool,
			"trace_id": TraceID(r.Context()),
			"error":    resp.Error,
		}).Warn("tool call failed")
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) callTool(ctx context.Context, req ToolRequest) ToolResponse {
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		str, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return str, nil
	}
	getStrings := func(key string) ([]string, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be array", key)
		}
		result := make([]string, len(raw))
		for i, r := range raw {
			str, ok := r.(string)
			if !ok {
				return nil, fmt.Errorf("param %s[%d] must be string", key, i)
			}
			result[i] = str
		}
		return result, nil
	}
	respond := func(res *solver.Result, err error) ToolResponse {
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{
			Result:      res.Lines,
			String:      res.Display,
			Shape:       res.Shape.Name(),
			Explanation: res.Explanation,
		}
	}

	switch req.Tool {
	case "solve":
		expr, err := getString("expression")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(s.solver.Solve(ctx, expr))
	case "solve_system":
		eqs, err := getStrings("equations")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		if len(eqs) == 0 {
			return ToolResponse{Error: solver.ErrNoEquations.Error()}
		}
		return respond(s.solver.SolveSystem(ctx, eqs))
	case "normalize":
		text, err := getString("text")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		out, err := s.normalizer.Normalize(text)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: out, String: out}
	case "identifiers":
		text, err := getString("text")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		ids := notation.Identifiers(text)
		return ToolResponse{Result: ids, String: fmt.Sprint(ids)}
	case "schema":
		return ToolResponse{Result: toolSchema()}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toolSchema())
}

func toolSchema() map[string]interface{} {
	tools := []map[string]interface{}{
		ts("solve", "Evaluate an expression or solve one equation. Roots are written (n)#x", []string{"expression"}, map[string]string{"expression": "string"}),
		ts("solve_system", "Solve a system of equations, one per entry", []string{"equations"}, map[string]string{"equations": "array"}),
		ts("normalize", "Rewrite user notation into canonical engine syntax", []string{"text"}, map[string]string{"text": "string"}),
		ts("identifiers", "List identifiers in first-seen order", []string{"text"}, map[string]string{"text": "string"}),
		ts("schema", "Return this tool schema", []string{}, map[string]string{}),
	}
	return map[string]interface{}{"tools": tools}
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
