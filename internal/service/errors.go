package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/tripsettle/internal/calculator"
	"github.com/mmynk/tripsettle/internal/storage"
)

var splitErrors = []error{
	calculator.ErrNoParticipants,
	calculator.ErrNegativeValue,
	calculator.ErrPercentageTotal,
	calculator.ErrExactTotal,
	calculator.ErrZeroWeights,
	calculator.ErrZeroSubtotal,
	calculator.ErrUnknownSplitMode,
	calculator.ErrNothingAssigned,
	calculator.ErrNonPositiveAmount,
}

// toConnectError maps sentinel errors onto Connect codes. Errors that are
// already *connect.Error pass through unchanged.
func toConnectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}
	if errors.Is(err, storage.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, err)
	}
	if errors.Is(err, storage.ErrConflict) {
		return connect.NewError(connect.CodeAlreadyExists, err)
	}
	for _, target := range splitErrors {
		if errors.Is(err, target) {
			return connect.NewError(connect.CodeInvalidArgument, err)
		}
	}
	return connect.NewError(connect.CodeInternal, err)
}
