package ldapgroups_test

import (
	"github.com/adtools/ldapgroups"
)

func (suite *Suite) TestParentDN() {
	r := suite.Require()

	r.Equal("OU=Groups,DC=example,DC=com", ldapgroups.ParentDN("CN=Team,OU=Groups,DC=example,DC=com"))
	r.Equal("DC=example,DC=com", ldapgroups.ParentDN("OU=Groups,DC=example,DC=com"))
	// No comma, nothing to strip.
	r.Equal("CN=Team", ldapgroups.ParentDN("CN=Team"))
}

func (suite *Suite) TestAncestorDN() {
	r := suite.Require()

	dn := "CN=Team,OU=Groups,OU=Dept,DC=example,DC=com"
	r.Equal(dn, ldapgroups.AncestorDN(dn, 0))
	r.Equal(dn, ldapgroups.AncestorDN(dn, -3))
	r.Equal("OU=Groups,OU=Dept,DC=example,DC=com", ldapgroups.AncestorDN(dn, 1))
	r.Equal("OU=Dept,DC=example,DC=com", ldapgroups.AncestorDN(dn, 2))
	r.Equal("DC=example,DC=com", ldapgroups.AncestorDN(dn, 3))
	// Stops early at the domain root, without error.
	r.Equal("DC=example,DC=com", ldapgroups.AncestorDN(dn, 42))
}

func (suite *Suite) TestAncestorDNFixedPoint() {
	r := suite.Require()

	root := "DC=example,DC=com"
	r.Equal(root, ldapgroups.AncestorDN(root, 1))
	r.Equal(root, ldapgroups.AncestorDN(root, 10))
}
