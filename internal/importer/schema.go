package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of a plan file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from the file extension; anything that is
// not .yaml/.yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// PlanFile is a disbursement plan as a person typed it: dates as
// YYYY-MM-DD and amounts as grouped currency text.
type PlanFile struct {
	Title    string        `json:"title" yaml:"title"`
	Campaign string        `json:"campaign,omitempty" yaml:"campaign,omitempty"`
	Window   WindowImport  `json:"window" yaml:"window"`
	Total    AmountText    `json:"total" yaml:"total"`
	Stages   []StageImport `json:"stages" yaml:"stages"`
}

// WindowImport is the planning window.
type WindowImport struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// StageImport is one disbursement stage. Number defaults to the stage's
// position (1-based) when omitted.
type StageImport struct {
	Number      *int       `json:"number,omitempty" yaml:"number,omitempty"`
	Amount      AmountText `json:"amount" yaml:"amount"`
	Date        string     `json:"date" yaml:"date"`
	Description string     `json:"description" yaml:"description"`
}

// AmountText holds an amount exactly as written. Files may use a quoted
// string ("9,000,000") or a bare number (9000000).
type AmountText string

func (a *AmountText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = AmountText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a string or number: %w", err)
	}
	*a = AmountText(n.String())
	return nil
}

func (a *AmountText) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", node.Line)
	}
	*a = AmountText(node.Value)
	return nil
}

// LoadPlanFile reads and decodes a plan file, choosing the decoder by
// extension.
func LoadPlanFile(path string) (*PlanFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodePlan(f, FormatFromPath(path))
}

// DecodePlan decodes a plan file from r. Unknown fields are rejected so
// that typos do not silently drop data.
func DecodePlan(r io.Reader, format Format) (*PlanFile, error) {
	var pf PlanFile
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&pf); err != nil {
			return nil, fmt.Errorf("parsing plan file: %w", err)
		}
	default:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&pf); err != nil {
			return nil, fmt.Errorf("parsing plan file: %w", err)
		}
	}
	return &pf, nil
}

// EncodePlan writes pf to w in the given format.
func EncodePlan(w io.Writer, pf *PlanFile, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(pf); err != nil {
			return fmt.Errorf("encoding plan file: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(pf); err != nil {
			return fmt.Errorf("encoding plan file: %w", err)
		}
		return nil
	}
}
