// Integration tests against a live directory. Configure with
// LDAPGROUPS_TEST_URI, LDAPGROUPS_TEST_BASE_DN, LDAPGROUPS_TEST_GROUP_DN
// and optionally LDAPGROUPS_TEST_BIND_DN, LDAPGROUPS_TEST_BIND_PASSWORD
// and LDAPGROUPS_TEST_ACCOUNT. Skipped otherwise.
package ldapgroups_test

import (
	"os"
	"testing"

	"github.com/adtools/ldapgroups"
	"github.com/stretchr/testify/require"
)

func integrationConfig(t *testing.T) (ldapgroups.Config, string) {
	t.Helper()
	uri := os.Getenv("LDAPGROUPS_TEST_URI")
	if "" == uri {
		t.Skip("LDAPGROUPS_TEST_URI not set")
	}
	return ldapgroups.Config{
		ServerURI:    uri,
		BaseDN:       os.Getenv("LDAPGROUPS_TEST_BASE_DN"),
		BindDN:       os.Getenv("LDAPGROUPS_TEST_BIND_DN"),
		BindPassword: os.Getenv("LDAPGROUPS_TEST_BIND_PASSWORD"),
	}, os.Getenv("LDAPGROUPS_TEST_GROUP_DN")
}

func TestIntegrationConstruction(t *testing.T) {
	r := require.New(t)
	c, groupDN := integrationConfig(t)

	group, err := ldapgroups.New(groupDN, c)
	r.NoError(err)
	defer group.Close()

	// An absent attribute is not a fault.
	_, ok, err := group.GetAttribute("no-such-attribute")
	r.NoError(err)
	r.False(ok)

	// A nonexistent sibling is an invalid group DN.
	_, err = ldapgroups.New("CN=does-not-exist-"+groupDN, c)
	r.ErrorIs(err, ldapgroups.ErrInvalidGroupDN)
}

func TestIntegrationMembershipRoundTrip(t *testing.T) {
	r := require.New(t)
	c, groupDN := integrationConfig(t)
	account := os.Getenv("LDAPGROUPS_TEST_ACCOUNT")
	if "" == account {
		t.Skip("LDAPGROUPS_TEST_ACCOUNT not set")
	}

	group, err := ldapgroups.New(groupDN, c)
	r.NoError(err)
	defer group.Close()

	before, err := group.GetMemberInfo(500)
	r.NoError(err)

	r.NoError(group.AddMember(account))
	r.NoError(group.RemoveMember(account))

	after, err := group.GetMemberInfo(500)
	r.NoError(err)
	r.Len(after, len(before))

	// Zero matches is the dedicated fault, not a generic one.
	err = group.AddMember("no-such-account-ldapgroups-test")
	r.ErrorIs(err, ldapgroups.ErrAccountDoesNotExist)
}
