package ldapgroups_test

import (
	"github.com/adtools/ldapgroups"
)

func (suite *Suite) TestParseScope() {
	r := suite.Require()

	for _, name := range []string{"base", "one", "sub"} {
		scope, err := ldapgroups.ParseScope(name)
		r.NoError(err)
		r.Equal(name, scope.String())
	}

	_, err := ldapgroups.ParseScope("galaxy")
	r.Error(err)
}

func (suite *Suite) TestAttributeSet() {
	r := suite.Require()

	set := ldapgroups.AttributeSet{
		"cn":          {"Team"},
		"member":      {"CN=a,DC=example,DC=com", "CN=b,DC=example,DC=com"},
		"description": {},
	}

	// Single-valued attributes unwrap to their value.
	r.Equal("Team", set.Value("cn"))
	// Multi-valued attributes keep server order.
	r.Equal([]string{"CN=a,DC=example,DC=com", "CN=b,DC=example,DC=com"}, set.Values("member"))
	r.Equal("CN=a,DC=example,DC=com", set.Value("member"))

	r.Equal("", set.Value("description"))
	r.Equal("", set.Value("missing"))
	r.True(set.Has("cn"))
	r.False(set.Has("missing"))

	r.Equal([]string{"cn", "description", "member"}, set.Names())
}
