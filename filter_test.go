package ldapgroups_test

import (
	"github.com/adtools/ldapgroups"
)

func (suite *Suite) TestEscapeSingleCharacters() {
	r := suite.Require()

	r.Equal(`\28`, ldapgroups.EscapeFilterValue("("))
	r.Equal(`\29`, ldapgroups.EscapeFilterValue(")"))
	r.Equal(`\2A`, ldapgroups.EscapeFilterValue("*"))
	r.Equal(`\5C`, ldapgroups.EscapeFilterValue(`\`))
}

func (suite *Suite) TestEscapeOrder() {
	r := suite.Require()

	// Backslash first, so the escaped forms are not escaped again.
	r.Equal(`\5C\2A\28\29`, ldapgroups.EscapeFilterValue(`\*()`))
}

func (suite *Suite) TestEscapeIsIdempotentOnSafeStrings() {
	r := suite.Require()

	safe := "Hello World! I have no problem characters in me!"
	r.Equal(safe, ldapgroups.EscapeFilterValue(safe))
	r.Equal("", ldapgroups.EscapeFilterValue(""))
}

func (suite *Suite) TestEscapeRealWorldDN() {
	r := suite.Require()

	in := "CN=StateHRDept - IS-ITS-Engineering Services (133200 FacStf All)"
	out := `CN=StateHRDept - IS-ITS-Engineering Services \28133200 FacStf All\29`
	r.Equal(out, ldapgroups.EscapeFilterValue(in))
}

func (suite *Suite) TestRenderEscapesValues() {
	r := suite.Require()

	t := ldapgroups.SearchTemplate{
		Filter: `(&(objectClass=user)(sAMAccountName=%s))`,
	}
	r.Equal(`(&(objectClass=user)(sAMAccountName=jdoe))`, t.Render("jdoe"))
	// A hostile lookup value cannot break out of the filter.
	r.Equal(`(&(objectClass=user)(sAMAccountName=\2A\29\28cn=\2A))`, t.Render("*)(cn=*"))
}
