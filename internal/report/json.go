package report

import (
	"encoding/json"
	"io"
)

// JSONWriter writes the entries as a JSON array using the same field names
// as the HTTP API.
type JSONWriter struct {
	out io.Writer
}

func NewJSONWriter(out io.Writer) *JSONWriter {
	return &JSONWriter{out: out}
}

type jsonEntry struct {
	Inputs      []string `json:"inputs"`
	Success     bool     `json:"success"`
	Result      string   `json:"result,omitempty"`
	Shape       string   `json:"shape,omitempty"`
	Normalized  []string `json:"normalized,omitempty"`
	Message     string   `json:"message,omitempty"`
	Explanation string   `json:"explanation"`
}

func (w *JSONWriter) Write(entries []Entry) error {
	out := make([]jsonEntry, len(entries))
	for i, e := range entries {
		je := jsonEntry{Inputs: e.Inputs}
		if e.Err != nil {
			je.Message, je.Explanation = describe(e.Err)
		} else {
			je.Success = true
			je.Result = e.Result.Display
			je.Shape = e.Result.Shape.Name()
			je.Normalized = e.Result.Normalized
			je.Explanation = e.Result.Explanation
		}
		out[i] = je
	}
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
