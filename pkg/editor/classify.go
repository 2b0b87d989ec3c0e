package editor

import (
	"errors"

	rgerrors "github.com/matzehuels/roomgraph/pkg/errors"
	"github.com/matzehuels/roomgraph/pkg/roomgraph"
	"github.com/matzehuels/roomgraph/pkg/store"
)

// Classify converts err into an *errors.Error with a code describing the
// failure. The message is the original error text, except for denials,
// which carry the reason's user-facing message. Errors that already carry a code pass through unchanged; nil
// stays nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var coded *rgerrors.Error
	if errors.As(err, &coded) {
		return err
	}

	var denial *roomgraph.DenialError
	switch {
	case errors.As(err, &denial):
		return rgerrors.Wrap(rgerrors.ErrCodeConnectionDenied, err, "%s", denial.Reason.Message())
	case errors.Is(err, store.ErrNotFound):
		return rgerrors.Wrap(rgerrors.ErrCodeGraphNotFound, err, "%v", err)
	case errors.Is(err, roomgraph.ErrUnknownNode),
		errors.Is(err, roomgraph.ErrUnknownParent),
		errors.Is(err, roomgraph.ErrUnknownChild),
		errors.Is(err, roomgraph.ErrDetachedNode):
		return rgerrors.Wrap(rgerrors.ErrCodeNodeNotFound, err, "%v", err)
	case errors.Is(err, roomgraph.ErrUnknownType):
		return rgerrors.Wrap(rgerrors.ErrCodeInvalidType, err, "%v", err)
	case errors.Is(err, roomgraph.ErrDuplicateEntrance):
		return rgerrors.Wrap(rgerrors.ErrCodeDuplicateEntrance, err, "the graph already has an entrance")
	case errors.Is(err, roomgraph.ErrInvalidNodeID),
		errors.Is(err, roomgraph.ErrDuplicateNodeID),
		errors.Is(err, roomgraph.ErrDanglingEdge),
		errors.Is(err, roomgraph.ErrAsymmetricEdge),
		errors.Is(err, roomgraph.ErrEntranceMismatch),
		errors.Is(err, roomgraph.ErrInvariant):
		return rgerrors.Wrap(rgerrors.ErrCodeInvalidGraph, err, "%v", err)
	case errors.Is(err, store.ErrUnknownBackend):
		return rgerrors.Wrap(rgerrors.ErrCodeUnsupported, err, "%v", err)
	default:
		return rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "%v", err)
	}
}
