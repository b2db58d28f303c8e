package services

import "errors"

// Expected, recoverable outcomes. Anything else returned by the services is
// a storage failure.
var (
	ErrItemNotFound      = errors.New("item not found in menu")
	ErrOrderNotFound     = errors.New("order not found")
	ErrNoAgentsAvailable = errors.New("no delivery agents available")
	ErrAgentBusy         = errors.New("delivery agent is busy with another order")
	ErrInvalidOrder      = errors.New("invalid order")
	ErrInvalidStatus     = errors.New("invalid order status")

	ErrInvalidUser        = errors.New("invalid user")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
)

// IsExpected reports whether err is one of the sentinel outcomes above rather
// than a storage failure.
func IsExpected(err error) bool {
	for _, target := range []error{
		ErrItemNotFound, ErrOrderNotFound, ErrNoAgentsAvailable, ErrAgentBusy,
		ErrInvalidOrder, ErrInvalidStatus, ErrInvalidUser, ErrUsernameTaken,
		ErrInvalidCredentials, ErrUserNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
