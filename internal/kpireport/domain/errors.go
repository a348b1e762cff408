package domain

import "errors"

var (
	ErrNotFound           = errors.New("not_found")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidProject     = errors.New("invalid_project")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrInvalidFigures     = errors.New("invalid_figures")
	ErrInvalidTransition  = errors.New("invalid_transition")
	ErrRejectReasonNeeded = errors.New("rejection_reason_required")
	ErrReportLocked       = errors.New("report_locked")
	ErrProjectOutOfScope  = errors.New("project_out_of_scope")
)
