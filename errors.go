package ldapgroups

import (
	"errors"
	"fmt"
)

// Fault taxonomy. Sub-kinds wrap their parent kind so that callers can
// match either level with errors.Is:
//
//	errors.Is(err, ErrAccountDoesNotExist) // exact kind
//	errors.Is(err, ErrEntryDoesNotExist)   // whole family
var (
	// A lookup by attribute value matched zero entries.
	ErrEntryDoesNotExist   = errors.New("entry does not exist")
	ErrAccountDoesNotExist = fmt.Errorf("account %w", ErrEntryDoesNotExist)
	ErrGroupDoesNotExist   = fmt.Errorf("group %w", ErrEntryDoesNotExist)

	// The target DN is not a group/OU, is malformed or has
	// unmanageably many children.
	ErrInvalidGroupDN = errors.New("invalid group DN")

	// Missing required configuration, or the server rejected the bind.
	ErrImproperlyConfigured = errors.New("improperly configured")
	ErrInvalidCredentials   = fmt.Errorf("invalid credentials: %w", ErrImproperlyConfigured)

	// Server address unreachable or invalid at connect time.
	ErrServerUnreachable = errors.New("LDAP server unreachable")

	// A mutation failed. Specific kinds for duplicate adds and
	// permission denials, generic for everything else.
	ErrModificationFailed      = errors.New("modification failed")
	ErrEntryAlreadyExists      = fmt.Errorf("entry already exists: %w", ErrModificationFailed)
	ErrInsufficientPermissions = fmt.Errorf("insufficient permissions: %w", ErrModificationFailed)
)
