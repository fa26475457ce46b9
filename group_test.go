package ldapgroups_test

import (
	"github.com/adtools/ldapgroups"
)

func (suite *Suite) TestString() {
	r := suite.Require()

	g := &ldapgroups.ADGroup{DN: "CN=Team,OU=Groups,DC=example,DC=com"}
	r.Equal("<ADGroup: CN=Team>", g.String())
}

func (suite *Suite) TestParentIdempotentAtDomainRoot() {
	r := suite.Require()

	// At the naming context, Parent returns the very same handle
	// without touching the directory.
	g := &ldapgroups.ADGroup{DN: "DC=example,DC=com"}
	parent, err := g.Parent()
	r.NoError(err)
	r.Same(g, parent)
}

func (suite *Suite) TestAncestorZeroIsSelf() {
	r := suite.Require()

	g := &ldapgroups.ADGroup{DN: "CN=Team,OU=Groups,DC=example,DC=com"}

	ancestor, err := g.Ancestor(0)
	r.NoError(err)
	r.Same(g, ancestor)

	ancestor, err = g.Ancestor(-1)
	r.NoError(err)
	r.Same(g, ancestor)
}

func (suite *Suite) TestConstructionRequiresConfiguration() {
	r := suite.Require()

	suite.T().Setenv("LDAPNOINIT", "1")

	_, err := ldapgroups.New("CN=Team,DC=example,DC=com", ldapgroups.Config{})
	r.ErrorIs(err, ldapgroups.ErrImproperlyConfigured)
}
