package ldapgroups_test

import (
	"os"
	"path/filepath"

	"github.com/adtools/ldapgroups"
)

func (suite *Suite) TestFromEnv() {
	r := suite.Require()
	t := suite.T()

	t.Setenv("LDAPGROUPS_SERVER_URI", "ldaps://ad.example.com")
	t.Setenv("LDAPGROUPS_BASE_DN", "DC=example,DC=com")
	t.Setenv("LDAPGROUPS_BIND_DN", "CN=svc,DC=example,DC=com")
	t.Setenv("LDAPGROUPS_BIND_PASSWORD", "hunter2")
	t.Setenv("LDAPGROUPS_ATTR_LIST", "cn mail sAMAccountName")

	c, err := ldapgroups.FromEnv()
	r.NoError(err)
	r.Equal("ldaps://ad.example.com", c.ServerURI)
	r.Equal("DC=example,DC=com", c.BaseDN)
	r.Equal("CN=svc,DC=example,DC=com", c.BindDN)
	r.Equal("hunter2", c.BindPassword)
	r.Equal([]string{"cn", "mail", "sAMAccountName"}, c.AttrList)
}

func (suite *Suite) TestLoadFile() {
	r := suite.Require()

	path := filepath.Join(suite.T().TempDir(), "ldapgroups.yml")
	err := os.WriteFile(path, []byte(`
server_uri: ldap://ad.example.com
base_dn: DC=example,DC=com
user_lookup_attr: uid
attr_list: [displayName, mail]
user_search_base_dn: OU=People,DC=example,DC=com
`), 0o600)
	r.NoError(err)

	c, err := ldapgroups.LoadFile(path)
	r.NoError(err)
	r.Equal("ldap://ad.example.com", c.ServerURI)
	r.Equal("DC=example,DC=com", c.BaseDN)
	r.Equal("uid", c.UserLookupAttr)
	r.Equal([]string{"displayName", "mail"}, c.AttrList)
	r.Equal("OU=People,DC=example,DC=com", c.UserSearchBaseDN)
}

func (suite *Suite) TestLoadFileMissing() {
	r := suite.Require()

	_, err := ldapgroups.LoadFile(filepath.Join(suite.T().TempDir(), "nope.yml"))
	r.Error(err)
}

func (suite *Suite) TestFindFileUserValueWins() {
	r := suite.Require()

	r.Equal("/tmp/custom.yml", ldapgroups.FindFile("/tmp/custom.yml"))
}
