package chat

import "errors"

// Input errors are filtered at the capture boundary and never mutate a transcript.
var (
	ErrEmptyContent = errors.New("message content is empty")
	ErrInvalidRole  = errors.New("message role must be user or assistant")
)

var (
	ErrSessionNotFound = errors.New("session not found")
	// ErrTurnPending rejects new user text while an earlier question is still unanswered.
	ErrTurnPending = errors.New("previous question is still awaiting a response")
	// ErrTurnInFlight rejects mutations while the endpoint call for this session is outstanding.
	ErrTurnInFlight = errors.New("a response is already being generated")
	// ErrNoPendingTurn means there is no user turn owed a response.
	ErrNoPendingTurn = errors.New("no question awaiting a response")
)

// IsInputError reports whether err stems from rejected user input.
func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyContent) || errors.Is(err, ErrInvalidRole)
}
