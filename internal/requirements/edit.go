package requirements

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
)

// EditOp names an authoring edit on the wire
type EditOp string

const (
	OpAddRequirement       EditOp = "addRequirement"
	OpUpdateRequirement    EditOp = "updateRequirement"
	OpDeleteRequirement    EditOp = "deleteRequirement"
	OpDuplicateRequirement EditOp = "duplicateRequirement"
	OpMoveRequirement      EditOp = "moveRequirement"
	OpChangeVariant        EditOp = "changeVariant"
	OpSetDetails           EditOp = "setDetails"
	OpSetConstraints       EditOp = "setConstraints"
	OpAddCourse            EditOp = "addCourse"
	OpUpdateCourse         EditOp = "updateCourse"
	OpRemoveCourse         EditOp = "removeCourse"
	OpAddStep              EditOp = "addStep"
	OpUpdateStep           EditOp = "updateStep"
	OpRemoveStep           EditOp = "removeStep"
	OpAddSubRequirement    EditOp = "addSubRequirement"
)

// Edit is one authoring change to a requirement list
type Edit interface {
	Op() EditOp
	apply(reqs model.RequirementList) (model.RequirementList, error)
}

type AddRequirementEdit struct {
	Type model.RequirementType `json:"type"`
}

type UpdateRequirementEdit struct {
	ID          model.RequirementID `json:"requirementId"`
	Requirement model.Requirement   `json:"requirement"`
}

type DeleteRequirementEdit struct {
	ID model.RequirementID `json:"requirementId"`
}

type DuplicateRequirementEdit struct {
	ID model.RequirementID `json:"requirementId"`
}

type MoveRequirementEdit struct {
	ID model.RequirementID `json:"requirementId"`
	To int                 `json:"to"`
}

type ChangeVariantEdit struct {
	ID   model.RequirementID   `json:"requirementId"`
	Type model.RequirementType `json:"type"`
}

type SetDetailsEdit struct {
	ID model.RequirementID `json:"requirementId"`
	Details
}

type SetConstraintsEdit struct {
	ID          model.RequirementID `json:"requirementId"`
	Constraints *model.Constraints  `json:"constraints"`
}

type AddCourseEdit struct {
	ID     model.RequirementID `json:"requirementId"`
	Course model.Course        `json:"course"`
}

type UpdateCourseEdit struct {
	ID     model.RequirementID `json:"requirementId"`
	Index  int                 `json:"index"`
	Course model.Course        `json:"course"`
}

type RemoveCourseEdit struct {
	ID    model.RequirementID `json:"requirementId"`
	Index int                 `json:"index"`
}

type AddStepEdit struct {
	ID   model.RequirementID `json:"requirementId"`
	Step string              `json:"step"`
}

type UpdateStepEdit struct {
	ID    model.RequirementID `json:"requirementId"`
	Index int                 `json:"index"`
	Step  string              `json:"step"`
}

type RemoveStepEdit struct {
	ID    model.RequirementID `json:"requirementId"`
	Index int                 `json:"index"`
}

type AddSubRequirementEdit struct {
	ID model.RequirementID `json:"requirementId"`
}

func (AddRequirementEdit) Op() EditOp       { return OpAddRequirement }
func (UpdateRequirementEdit) Op() EditOp    { return OpUpdateRequirement }
func (DeleteRequirementEdit) Op() EditOp    { return OpDeleteRequirement }
func (DuplicateRequirementEdit) Op() EditOp { return OpDuplicateRequirement }
func (MoveRequirementEdit) Op() EditOp      { return OpMoveRequirement }
func (ChangeVariantEdit) Op() EditOp        { return OpChangeVariant }
func (SetDetailsEdit) Op() EditOp           { return OpSetDetails }
func (SetConstraintsEdit) Op() EditOp       { return OpSetConstraints }
func (AddCourseEdit) Op() EditOp            { return OpAddCourse }
func (UpdateCourseEdit) Op() EditOp         { return OpUpdateCourse }
func (RemoveCourseEdit) Op() EditOp         { return OpRemoveCourse }
func (AddStepEdit) Op() EditOp              { return OpAddStep }
func (UpdateStepEdit) Op() EditOp           { return OpUpdateStep }
func (RemoveStepEdit) Op() EditOp           { return OpRemoveStep }
func (AddSubRequirementEdit) Op() EditOp    { return OpAddSubRequirement }

func (e AddRequirementEdit) apply(reqs model.RequirementList) (model.RequirementList, error) {
	return AddRequirement(reqs, e.Type)
}

func (e UpdateRequirementEdit) apply(reqs model.RequirementList) (model.RequirementList, error) {
	return Replace(reqs, e.ID, e.Requirement)
}

func (e DeleteRequirementEdit) apply(reqs model.RequirementList) (model.RequirementList, error) {
	return Delete(reqs, e.ID)
}

func (e DuplicateRequirementEdit) apply(reqs model.RequirementList) (model.RequirementList, error) {
	i, err := Find(reqs, e.ID)
	if err != nil {
		return nil, err
	}
	dup, err := Duplicate(reqs[i], NextID(reqs))
	if err != nil {
		return nil, err
	}
	out := make(model.RequirementList, 0, len(reqs)+1)
	out = append(out, reqs...)
	return append(out, dup), nil
}

func (e MoveRequirementEdit) apply(reqs model.RequirementList) (model.RequirementList, error) {
	return Move(reqs, e.ID, e.To)
}

func (e ChangeVariantEdit) apply(reqs model.RequirementList) (model.RequirementList, error) {
	return update(reqs, e.ID, func(r model.Requirement) (model.Requirement, error) {
		return ChangeVariant(r, e.Type)
	})
}

func (e SetDetailsEdit) apply(reqs model.RequirementList) (model.RequirementList, error) {
	return update(reqs, e.ID, func(r model.Requirement) (model.Requirement, error) {
		return SetDetails(r, e.Details)
	})
}

func (e SetConstraintsEdit) apply(reqs model.RequirementList) (model.RequirementList, error) {
	return update(reqs, e.ID, func(r model.Requirement) (model.Requirement, error) {
		return SetConstraints(r, e.Constraints)
	})
}

func (e AddCourseEdit) apply(reqs model.RequirementList) (model.RequirementList, error) {
	return update(reqs, e.ID, func(r model.Requirement) (model.Requirement, error) {
		return AddCourse(r, e.Course)
	})
}

func (e UpdateCourseEdit) apply(reqs model.RequirementList) (model.RequirementList, error) {
	return update(reqs, e.ID, func(r model.Requirement) (model.Requirement, error) {
		return UpdateCourse(r, e.Index, e.Course)
	})
}

func (e RemoveCourseEdit) apply(reqs model.RequirementList) (model.RequirementList, error) {
	return update(reqs, e.ID, func(r model.Requirement) (model.Requirement, error) {
		return RemoveCourse(r, e.Index)
	})
}

func (e AddStepEdit) apply(reqs model.RequirementList) (model.RequirementList, error) {
	return update(reqs, e.ID, func(r model.Requirement) (model.Requirement, error) {
		return AddStep(r, e.Step)
	})
}

func (e UpdateStepEdit) apply(reqs model.RequirementList) (model.RequirementList, error) {
	return update(reqs, e.ID, func(r model.Requirement) (model.Requirement, error) {
		return UpdateStep(r, e.Index, e.Step)
	})
}

func (e RemoveStepEdit) apply(reqs model.RequirementList) (model.RequirementList, error) {
	return update(reqs, e.ID, func(r model.Requirement) (model.Requirement, error) {
		return RemoveStep(r, e.Index)
	})
}

func (e AddSubRequirementEdit) apply(reqs model.RequirementList) (model.RequirementList, error) {
	return update(reqs, e.ID, AddSubRequirement)
}

func update(reqs model.RequirementList, id model.RequirementID, fn func(model.Requirement) (model.Requirement, error)) (model.RequirementList, error) {
	i, err := Find(reqs, id)
	if err != nil {
		return nil, err
	}
	next, err := fn(reqs[i])
	if err != nil {
		return nil, fmt.Errorf("requirement %s: %w", id, err)
	}
	return replaceAt(reqs, i, next), nil
}

// Apply returns the structure that results from applying e to s. The input is
// not modified; metadata is carried over unchanged.
func Apply(s *model.ProgramRequirementsStructure, e Edit) (*model.ProgramRequirementsStructure, error) {
	if e == nil {
		return nil, ErrUnknownEdit
	}
	var reqs model.RequirementList
	var meta *model.Metadata
	if s != nil {
		reqs = s.Requirements
		if s.Metadata != nil {
			m := *s.Metadata
			meta = &m
		}
	}
	next, err := e.apply(reqs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.Op(), err)
	}
	return &model.ProgramRequirementsStructure{Requirements: next, Metadata: meta}, nil
}

// ApplyAll applies edits in order and recomputes metadata at now. The batch is
// atomic: the first failing edit aborts it and s is returned untouched.
func ApplyAll(s *model.ProgramRequirementsStructure, now time.Time, edits ...Edit) (*model.ProgramRequirementsStructure, error) {
	cur := s
	for i, e := range edits {
		next, err := Apply(cur, e)
		if err != nil {
			return nil, fmt.Errorf("edit %d: %w", i, err)
		}
		cur = next
	}
	return RecomputeMetadata(cur, now), nil
}

// DecodeEdit reads one edit from its JSON form {"op": "...", ...}
func DecodeEdit(raw json.RawMessage) (Edit, error) {
	var head struct {
		Op EditOp `json:"op"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var (
		e   Edit
		err error
	)
	switch head.Op {
	case OpAddRequirement:
		var v AddRequirementEdit
		err = json.Unmarshal(raw, &v)
		e = v
	case OpUpdateRequirement:
		var v struct {
			ID          model.RequirementID `json:"requirementId"`
			Requirement json.RawMessage     `json:"requirement"`
		}
		if err = json.Unmarshal(raw, &v); err == nil {
			e = UpdateRequirementEdit{ID: v.ID, Requirement: model.DecodeRequirement(v.Requirement)}
		}
	case OpDeleteRequirement:
		var v DeleteRequirementEdit
		err = json.Unmarshal(raw, &v)
		e = v
	case OpDuplicateRequirement:
		var v DuplicateRequirementEdit
		err = json.Unmarshal(raw, &v)
		e = v
	case OpMoveRequirement:
		var v MoveRequirementEdit
		err = json.Unmarshal(raw, &v)
		e = v
	case OpChangeVariant:
		var v ChangeVariantEdit
		err = json.Unmarshal(raw, &v)
		e = v
	case OpSetDetails:
		var v SetDetailsEdit
		err = json.Unmarshal(raw, &v)
		e = v
	case OpSetConstraints:
		var v SetConstraintsEdit
		err = json.Unmarshal(raw, &v)
		e = v
	case OpAddCourse:
		var v AddCourseEdit
		err = json.Unmarshal(raw, &v)
		e = v
	case OpUpdateCourse:
		var v UpdateCourseEdit
		err = json.Unmarshal(raw, &v)
		e = v
	case OpRemoveCourse:
		var v RemoveCourseEdit
		err = json.Unmarshal(raw, &v)
		e = v
	case OpAddStep:
		var v AddStepEdit
		err = json.Unmarshal(raw, &v)
		e = v
	case OpUpdateStep:
		var v UpdateStepEdit
		err = json.Unmarshal(raw, &v)
		e = v
	case OpRemoveStep:
		var v RemoveStepEdit
		err = json.Unmarshal(raw, &v)
		e = v
	case OpAddSubRequirement:
		var v AddSubRequirementEdit
		err = json.Unmarshal(raw, &v)
		e = v
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEdit, head.Op)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidInput, head.Op, err)
	}
	return e, nil
}

// DecodeEdits reads a JSON array of edits
func DecodeEdits(data []byte) ([]Edit, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	edits := make([]Edit, 0, len(raws))
	for i, raw := range raws {
		e, err := DecodeEdit(raw)
		if err != nil {
			return nil, fmt.Errorf("edit %d: %w", i, err)
		}
		edits = append(edits, e)
	}
	return edits, nil
}
