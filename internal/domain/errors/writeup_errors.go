package errors

import (
	"errors"
	"fmt"

	"github.com/wekeepgrowing/workshop-backend/internal/domain/writeup"
	pkgerrors "github.com/wekeepgrowing/workshop-backend/pkg/errors"
)

func JobNotFound(jobNumber string) error {
	return pkgerrors.NotFound(fmt.Sprintf("job %s not found", jobNumber), nil)
}

func UnknownDraftChannel(channel string) error {
	return pkgerrors.InvalidArgument(fmt.Sprintf("unknown draft channel %q", channel), nil)
}

func InvalidSnapshot(channel string, err error) error {
	return pkgerrors.InvalidArgument(fmt.Sprintf("invalid %s snapshot", channel), err)
}

// FromWriteup maps write-up rule violations onto application error codes.
// Errors that are not write-up rule violations are returned unchanged.
func FromWriteup(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, writeup.ErrCauseNotFound):
		return pkgerrors.NotFound("cause entry not found", err)
	case errors.Is(err, writeup.ErrCauseTextRequired),
		errors.Is(err, writeup.ErrUnknownRequestKey):
		return pkgerrors.InvalidArgument(err.Error(), err)
	case errors.Is(err, writeup.ErrDuplicateCause),
		errors.Is(err, writeup.ErrTooManyCauses):
		return pkgerrors.Conflict(err.Error(), err)
	default:
		return err
	}
}
