package ldapgroups_test

import (
	"errors"
	"fmt"

	"github.com/adtools/ldapgroups"
)

func (suite *Suite) TestErrorFamilies() {
	r := suite.Require()

	r.ErrorIs(ldapgroups.ErrAccountDoesNotExist, ldapgroups.ErrEntryDoesNotExist)
	r.ErrorIs(ldapgroups.ErrGroupDoesNotExist, ldapgroups.ErrEntryDoesNotExist)
	r.ErrorIs(ldapgroups.ErrInvalidCredentials, ldapgroups.ErrImproperlyConfigured)
	r.ErrorIs(ldapgroups.ErrEntryAlreadyExists, ldapgroups.ErrModificationFailed)
	r.ErrorIs(ldapgroups.ErrInsufficientPermissions, ldapgroups.ErrModificationFailed)

	r.NotErrorIs(ldapgroups.ErrInvalidGroupDN, ldapgroups.ErrEntryDoesNotExist)
	r.NotErrorIs(ldapgroups.ErrModificationFailed, ldapgroups.ErrEntryAlreadyExists)
}

func (suite *Suite) TestErrorWrapping() {
	r := suite.Require()

	err := fmt.Errorf("%w: %q matched no user under %s", ldapgroups.ErrAccountDoesNotExist, "jdoe", "DC=example,DC=com")
	r.True(errors.Is(err, ldapgroups.ErrAccountDoesNotExist))
	r.True(errors.Is(err, ldapgroups.ErrEntryDoesNotExist))
	r.Contains(err.Error(), "jdoe")
}
