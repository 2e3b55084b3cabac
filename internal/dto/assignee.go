package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UserRef identifies a user in task payloads.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// AssigneeRef is either a single user or a list of users. It encodes as a
// JSON object or array respectively, and decodes from either form as well as
// from a bare id string.
type AssigneeRef struct {
	single *UserRef
	many   []UserRef
}

// SingleAssignee wraps one user.
func SingleAssignee(ref UserRef) AssigneeRef {
	return AssigneeRef{single: &ref}
}

// ManyAssignees wraps a list of users. A nil list encodes as [].
func ManyAssignees(refs []UserRef) AssigneeRef {
	if refs == nil {
		refs = []UserRef{}
	}
	return AssigneeRef{many: refs}
}

// Single returns the wrapped user when the reference holds exactly one user
// in single form.
func (a AssigneeRef) Single() (UserRef, bool) {
	if a.single == nil {
		return UserRef{}, false
	}
	return *a.single, true
}

// IsSingle reports whether the reference was built or decoded in single form.
func (a AssigneeRef) IsSingle() bool {
	return a.single != nil
}

// IDs returns every referenced user id in order.
func (a AssigneeRef) IDs() []string {
	if a.single != nil {
		return []string{a.single.ID}
	}
	ids := make([]string, 0, len(a.many))
	for _, ref := range a.many {
		ids = append(ids, ref.ID)
	}
	return ids
}

func (a AssigneeRef) MarshalJSON() ([]byte, error) {
	if a.single != nil {
		return json.Marshal(a.single)
	}
	if a.many == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a.many)
}

func (a *AssigneeRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = AssigneeRef{}
		return nil
	}

	if data[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		refs := make([]UserRef, 0, len(raw))
		for _, item := range raw {
			ref, err := decodeUserRef(item)
			if err != nil {
				return err
			}
			refs = append(refs, ref)
		}
		*a = ManyAssignees(refs)
		return nil
	}

	ref, err := decodeUserRef(data)
	if err != nil {
		return err
	}
	*a = SingleAssignee(ref)
	return nil
}

func decodeUserRef(data []byte) (UserRef, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return UserRef{}, fmt.Errorf("empty assignee")
	}

	var ref UserRef
	switch data[0] {
	case '"':
		if err := json.Unmarshal(data, &ref.ID); err != nil {
			return UserRef{}, err
		}
	case '{':
		if err := json.Unmarshal(data, &ref); err != nil {
			return UserRef{}, err
		}
	default:
		return UserRef{}, fmt.Errorf("assignee must be an object or an id string")
	}

	if ref.ID == "" {
		return UserRef{}, fmt.Errorf("assignee id is required")
	}
	return ref, nil
}
