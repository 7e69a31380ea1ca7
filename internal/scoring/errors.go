package scoring

import "errors"

var (
	ErrEmptyTable            = errors.New("score table is empty")
	ErrMissingIdentityColumn = errors.New("missing identity column")
	ErrNoSubjectColumnsFound = errors.New("no subject columns found")
	ErrStudentNotFound       = errors.New("student not found")
	ErrUnknownPolicy         = errors.New("unknown score policy")
)
