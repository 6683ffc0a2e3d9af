package dto

// PatchReportRequest carries a partial report update; only non-nil fields are
// applied.
type PatchReportRequest struct {
	Status          *string `json:"status,omitempty"`
	Priority        *string `json:"priority,omitempty"`
	AssignedTo      *string `json:"assigned_to,omitempty"`
	ResolutionNotes *string `json:"resolution_notes,omitempty"`
}

type CreateUpdateRequest struct {
	Message    string `json:"message"`
	Visibility string `json:"visibility"`
}
