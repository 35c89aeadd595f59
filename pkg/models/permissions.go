package models

// FieldPermission is the per-profile visibility/editability of one field.
// The invariant "editable implies visible" is enforced by the type itself:
// construct with NewFieldPermission or mutate through the setters.
type FieldPermission struct {
	ProfileID  string `json:"profile_id"`
	ObjectID   string `json:"object_id"`
	FieldID    string `json:"field_id"`
	IsVisible  bool   `json:"is_visible"`
	IsEditable bool   `json:"is_editable"`
}

// NewFieldPermission builds a FieldPermission, auto-correcting an editable
// flag set without visibility.
func NewFieldPermission(profileID, objectID, fieldID string, visible, editable bool) FieldPermission {
	if !visible {
		editable = false
	}
	return FieldPermission{
		ProfileID:  profileID,
		ObjectID:   objectID,
		FieldID:    fieldID,
		IsVisible:  visible,
		IsEditable: editable,
	}
}

// SetVisible updates visibility. Clearing visibility also clears editability.
func (p *FieldPermission) SetVisible(visible bool) {
	p.IsVisible = visible
	if !visible {
		p.IsEditable = false
	}
}

// SetEditable updates editability. A field cannot be editable unless visible.
func (p *FieldPermission) SetEditable(editable bool) {
	if editable && !p.IsVisible {
		p.IsEditable = false
		return
	}
	p.IsEditable = editable
}

// Normalize re-applies the invariant after external mutation (e.g. JSON binding)
func (p *FieldPermission) Normalize() {
	if !p.IsVisible {
		p.IsEditable = false
	}
}

// PermissionMatrix resolves effective field permissions for one profile on
// one object, with bulk operations that preserve the invariant.
type PermissionMatrix struct {
	ProfileID   string            `json:"profile_id"`
	ObjectID    string            `json:"object_id"`
	Permissions []FieldPermission `json:"permissions"`
}

// Get returns the permission tuple for a field, defaulting to hidden
func (m *PermissionMatrix) Get(fieldID string) FieldPermission {
	for _, p := range m.Permissions {
		if p.FieldID == fieldID {
			return p
		}
	}
	return FieldPermission{ProfileID: m.ProfileID, ObjectID: m.ObjectID, FieldID: fieldID}
}

// SetAllVisible applies visibility uniformly. Clearing visibility also
// clears editability on every field.
func (m *PermissionMatrix) SetAllVisible(visible bool) {
	for i := range m.Permissions {
		m.Permissions[i].SetVisible(visible)
	}
}

// SetAllEditable applies editability uniformly. Fields that are not visible
// stay non-editable.
func (m *PermissionMatrix) SetAllEditable(editable bool) {
	for i := range m.Permissions {
		m.Permissions[i].SetEditable(editable)
	}
}

// Normalize re-applies the invariant to every tuple
func (m *PermissionMatrix) Normalize() {
	for i := range m.Permissions {
		m.Permissions[i].Normalize()
	}
}
