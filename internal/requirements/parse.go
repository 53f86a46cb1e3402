package requirements

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
)

// Parse accepts a requirements document as a JSON string, raw bytes, an
// already-decoded value (map or slice) or a structure, and returns a
// structure. An empty string yields an empty structure. Besides the standard
// {"programRequirements": [...]} shape it reads the gen-ed array format and
// the numeric-key object format.
func Parse(input any) (*model.ProgramRequirementsStructure, error) {
	switch v := input.(type) {
	case nil:
		return empty(), nil
	case string:
		return ParseJSON([]byte(v))
	case []byte:
		return ParseJSON(v)
	case json.RawMessage:
		return ParseJSON(v)
	case *model.ProgramRequirementsStructure:
		if v == nil {
			return empty(), nil
		}
		return v.Clone(), nil
	case model.ProgramRequirementsStructure:
		return v.Clone(), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return ParseJSON(data)
	}
}

// ParseJSON decodes a requirements document from JSON text
func ParseJSON(data []byte) (*model.ProgramRequirementsStructure, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return empty(), nil
	}

	switch data[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if isGenEd(items) {
			return fromGenEd(items)
		}
		var list model.RequirementList
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return &model.ProgramRequirementsStructure{Requirements: list}, nil
	case '{':
		var keys map[string]json.RawMessage
		if err := json.Unmarshal(data, &keys); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if _, ok := keys["programRequirements"]; !ok && len(keys) > 0 && allNumeric(keys) {
			var list model.RequirementList
			if err := json.Unmarshal(data, &list); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			return &model.ProgramRequirementsStructure{Requirements: list}, nil
		}
		var s model.ProgramRequirementsStructure
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if s.Requirements == nil {
			s.Requirements = model.RequirementList{}
		}
		return &s, nil
	case '"':
		// a JSON document stored as a JSON string
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return ParseJSON([]byte(inner))
	default:
		return nil, fmt.Errorf("%w: unexpected %q", ErrInvalidInput, data[0])
	}
}

func empty() *model.ProgramRequirementsStructure {
	return &model.ProgramRequirementsStructure{Requirements: model.RequirementList{}}
}

func allNumeric(keys map[string]json.RawMessage) bool {
	for k := range keys {
		if _, err := strconv.Atoi(k); err != nil {
			return false
		}
	}
	return true
}

// isGenEd reports whether the first element has the gen-ed shape {subtitle, requirement, blocks}
func isGenEd(items []json.RawMessage) bool {
	if len(items) == 0 {
		return false
	}
	var first map[string]json.RawMessage
	if err := json.Unmarshal(items[0], &first); err != nil {
		return false
	}
	_, hasSubtitle := first["subtitle"]
	_, hasRequirement := first["requirement"]
	_, hasBlocks := first["blocks"]
	return hasSubtitle && hasRequirement && hasBlocks
}

func fromGenEd(items []json.RawMessage) (*model.ProgramRequirementsStructure, error) {
	out := make(model.RequirementList, 0, len(items))
	for i, raw := range items {
		var g struct {
			Subtitle    string `json:"subtitle"`
			Requirement struct {
				Index *int `json:"index"`
			} `json:"requirement"`
			Blocks json.RawMessage `json:"blocks"`
		}
		if err := json.Unmarshal(raw, &g); err != nil {
			return nil, fmt.Errorf("%w: gen-ed requirement %d: %v", ErrInvalidInput, i, err)
		}
		id := i + 1
		if g.Requirement.Index != nil && *g.Requirement.Index != 0 {
			id = *g.Requirement.Index
		}
		desc := g.Subtitle
		if desc == "" {
			desc = fmt.Sprintf("Requirement %d", i+1)
		}
		doc, err := json.Marshal(map[string]any{
			"requirementId": id,
			"description":   desc,
			"type":          model.TypeCompleteAll,
			"blocks":        g.Blocks,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: gen-ed requirement %d: %v", ErrInvalidInput, i, err)
		}
		out = append(out, model.DecodeRequirement(doc))
	}
	return &model.ProgramRequirementsStructure{Requirements: out}, nil
}
