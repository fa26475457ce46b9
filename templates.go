package ldapgroups

import (
	"fmt"
	"strings"

	ldap3 "github.com/go-ldap/ldap/v3"
)

type Scope int

func ParseScope(s string) (Scope, error) {
	switch s {
	case "sub":
		return ldap3.ScopeWholeSubtree, nil
	case "base":
		return ldap3.ScopeBaseObject, nil
	case "one":
		return ldap3.ScopeSingleLevel, nil
	default:
		return 0, fmt.Errorf("bad scope: %s", s)
	}
}

func (s Scope) String() string {
	switch s {
	case ldap3.ScopeBaseObject:
		return "base"
	case ldap3.ScopeWholeSubtree:
		return "sub"
	case ldap3.ScopeSingleLevel:
		return "one"
	default:
		return "!INVALID"
	}
}

// ObjectKind tags the directory class of an entry. Children and
// single-child searches dispatch on it.
type ObjectKind int

const (
	KindOther ObjectKind = iota
	KindGroup
	KindOrganizationalUnit
)

func (k ObjectKind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindOrganizationalUnit:
		return "organizationalUnit"
	default:
		return "other"
	}
}

func kindOf(objectClasses []string) ObjectKind {
	for _, class := range objectClasses {
		switch class {
		case "group":
			return KindGroup
		case "organizationalUnit":
			return KindOrganizationalUnit
		}
	}
	return KindOther
}

// Matches groups as well as organizational units.
const classFilter = `(|(objectClass=group)(objectClass=organizationalUnit))`

// noAttributes requests no attribute at all, only DNs. cf. RFC 4511 §4.5.1.8
var noAttributes = []string{"1.1"}

// SearchTemplate is an immutable prepared search: a base DN, a scope, a
// filter pattern and an attribute projection. A nil projection requests
// all attributes. Runtime filter values are substituted with Render.
type SearchTemplate struct {
	Base       string
	Scope      Scope
	Filter     string
	Attributes []string
}

// Render substitutes values in the filter pattern. Every value is
// escaped, whatever its origin.
func (t SearchTemplate) Render(values ...string) string {
	args := make([]any, len(values))
	for i, value := range values {
		args[i] = EscapeFilterValue(value)
	}
	return fmt.Sprintf(t.Filter, args...)
}

// bakeFilterValue escapes a value for direct embedding in a filter
// pattern, including the pattern escape itself.
func bakeFilterValue(value string) string {
	return strings.ReplaceAll(EscapeFilterValue(value), "%", "%%")
}

// searchTemplates holds the prepared searches of one group handle,
// derived once at construction. DNs baked in filters are escaped at
// derivation time.
type searchTemplates struct {
	attributes  SearchTemplate
	validity    SearchTemplate
	user        SearchTemplate
	group       SearchTemplate
	members     SearchTemplate
	children    map[ObjectKind]SearchTemplate
	singleChild map[ObjectKind]SearchTemplate
	descendants SearchTemplate
}

func newSearchTemplates(groupDN string, c Config) searchTemplates {
	self := bakeFilterValue(groupDN)
	return searchTemplates{
		attributes: SearchTemplate{
			Base:   groupDN,
			Scope:  ldap3.ScopeBaseObject,
			Filter: classFilter,
		},
		validity: SearchTemplate{
			Base:       groupDN,
			Scope:      ldap3.ScopeBaseObject,
			Filter:     classFilter,
			Attributes: noAttributes,
		},
		user: SearchTemplate{
			Base:       c.UserSearchBaseDN,
			Scope:      ldap3.ScopeWholeSubtree,
			Filter:     fmt.Sprintf(`(&(objectClass=user)(%s=%%s))`, c.UserLookupAttr),
			Attributes: noAttributes,
		},
		group: SearchTemplate{
			Base:       c.GroupSearchBaseDN,
			Scope:      ldap3.ScopeWholeSubtree,
			Filter:     fmt.Sprintf(`(&%s(%s=%%s))`, classFilter, c.GroupLookupAttr),
			Attributes: noAttributes,
		},
		members: SearchTemplate{
			Base:       c.BaseDN,
			Scope:      ldap3.ScopeWholeSubtree,
			Filter:     fmt.Sprintf(`(&(objectCategory=user)(memberOf=%s))`, self),
			Attributes: c.AttrList,
		},
		children: map[ObjectKind]SearchTemplate{
			KindGroup: {
				Base:       c.BaseDN,
				Scope:      ldap3.ScopeWholeSubtree,
				Filter:     fmt.Sprintf(`(&%s(memberOf=%s))`, classFilter, self),
				Attributes: noAttributes,
			},
			KindOrganizationalUnit: {
				Base:       groupDN,
				Scope:      ldap3.ScopeSingleLevel,
				Filter:     classFilter,
				Attributes: noAttributes,
			},
		},
		singleChild: map[ObjectKind]SearchTemplate{
			KindGroup: {
				Base:       c.BaseDN,
				Scope:      ldap3.ScopeWholeSubtree,
				Filter:     fmt.Sprintf(`(&%s(memberOf=%s)(%s=%%s))`, classFilter, self, c.GroupLookupAttr),
				Attributes: noAttributes,
			},
			KindOrganizationalUnit: {
				Base:       groupDN,
				Scope:      ldap3.ScopeSingleLevel,
				Filter:     fmt.Sprintf(`(&%s(%s=%%s))`, classFilter, c.GroupLookupAttr),
				Attributes: noAttributes,
			},
		},
		descendants: SearchTemplate{
			Base:       groupDN,
			Scope:      ldap3.ScopeWholeSubtree,
			Filter:     classFilter,
			Attributes: noAttributes,
		},
	}
}
