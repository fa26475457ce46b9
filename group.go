// Package ldapgroups manages Active Directory group and organizational
// unit membership over LDAP. A handle targets one group entry and
// offers membership inspection and modification plus traversal of the
// directory tree. Each handle owns one connection, opened at
// construction and released by Close.
package ldapgroups

import (
	"errors"
	"fmt"
	"log/slog"

	mapset "github.com/deckarep/golang-set/v2"
	ldap3 "github.com/go-ldap/ldap/v3"
)

// ADGroup is a handle on one group or organizational unit entry.
// Not safe for concurrent use; open one handle per goroutine.
type ADGroup struct {
	DN string

	config     Config
	conn       *ldap3.Conn
	templates  searchTemplates
	attributes AttributeSet
	kind       ObjectKind
	kindKnown  bool
}

// New connects to the directory and returns a handle on groupDN.
// Construction fails with ErrInvalidGroupDN unless groupDN denotes a
// group or an organizational unit. The connection is released on every
// construction failure past dialing.
func New(groupDN string, c Config) (*ADGroup, error) {
	err := c.normalize()
	if err != nil {
		return nil, err
	}
	conn, err := connect(c)
	if err != nil {
		return nil, err
	}
	g := &ADGroup{
		DN:        groupDN,
		config:    c,
		conn:      conn,
		templates: newSearchTemplates(groupDN, c),
	}
	err = g.checkValidity()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return g, nil
}

// Close unbinds and releases the handle connection.
func (g *ADGroup) Close() error {
	return g.conn.Close()
}

func (g *ADGroup) String() string {
	return "<ADGroup: " + firstRDN(g.DN) + ">"
}

// checkValidity gates construction: the only place distinguishing a
// bad target DN from other failures.
func (g *ADGroup) checkValidity() error {
	entries, err := g.search(g.templates.validity)
	if err != nil {
		if errors.Is(err, ErrImproperlyConfigured) {
			return err
		}
		switch resultCode(err) {
		case ldap3.LDAPResultInvalidDNSyntax:
			return fmt.Errorf("%w: Invalid DN Syntax: %s", ErrInvalidGroupDN, g.DN)
		case ldap3.LDAPResultNoSuchObject:
			return fmt.Errorf("%w: No such group: %s", ErrInvalidGroupDN, g.DN)
		case ldap3.LDAPResultSizeLimitExceeded:
			return fmt.Errorf("%w: this group has too many children to handle: %s", ErrInvalidGroupDN, g.DN)
		}
		return err
	}
	if 0 == len(entries) {
		// The entry exists but is neither a group nor an OU.
		return fmt.Errorf("%w: No such group: %s", ErrInvalidGroupDN, g.DN)
	}
	return nil
}

// GetAttributes returns the attributes of the group entry itself,
// fetched once and cached for the handle lifetime.
func (g *ADGroup) GetAttributes() (AttributeSet, error) {
	if 0 != len(g.attributes) {
		return g.attributes, nil
	}
	return g.RefreshAttributes()
}

// RefreshAttributes drops the cache and fetches the group attributes
// again.
func (g *ADGroup) RefreshAttributes() (AttributeSet, error) {
	entries, err := g.search(g.templates.attributes)
	if err != nil {
		return nil, err
	}
	g.attributes = AttributeSet{}
	if 0 < len(entries) {
		g.attributes = newAttributeSet(entries[0])
	}
	slog.Debug("Fetched group attributes.", "dn", g.DN, "attributes", g.attributes.Names())
	return g.attributes, nil
}

// GetAttribute returns the named attribute of the group, unwrapped to
// its first value. An absent attribute is not a fault: ok is false.
func (g *ADGroup) GetAttribute(name string) (value string, ok bool, err error) {
	attributes, err := g.GetAttributes()
	if err != nil {
		return "", false, err
	}
	if !attributes.Has(name) {
		slog.Debug("Group does not have the attribute.", "dn", g.DN, "attribute", name)
		return "", false, nil
	}
	return attributes.Value(name), true, nil
}

// objectKind resolves the directory class of the entry, once.
func (g *ADGroup) objectKind() (ObjectKind, error) {
	if g.kindKnown {
		return g.kind, nil
	}
	attributes, err := g.GetAttributes()
	if err != nil {
		return KindOther, err
	}
	g.kind = kindOf(attributes.Values("objectClass"))
	g.kindKnown = true
	return g.kind, nil
}

// Parent returns a new handle on the parent entry. At the domain root,
// the handle itself is returned unchanged.
func (g *ADGroup) Parent() (*ADGroup, error) {
	if atDomainRoot(g.DN) {
		return g, nil
	}
	return New(ParentDN(g.DN), g.config)
}

// Ancestor returns a new handle generation levels up the tree, stopping
// at the domain root. Zero or negative generations return the handle
// itself.
func (g *ADGroup) Ancestor(generation int) (*ADGroup, error) {
	if generation < 1 {
		return g, nil
	}
	return New(AncestorDN(g.DN, generation), g.config)
}

// Children returns new handles on the child groups and organizational
// units of this entry. An entry of any other kind has no children.
func (g *ADGroup) Children() ([]*ADGroup, error) {
	kind, err := g.objectKind()
	if err != nil {
		return nil, err
	}
	t, ok := g.templates.children[kind]
	if !ok {
		slog.Debug("Neither group nor organizational unit, no children.", "dn", g.DN, "kind", kind)
		return nil, nil
	}
	entries, err := g.search(t)
	if err != nil {
		return nil, err
	}
	children := make([]*ADGroup, 0, len(entries))
	for _, entry := range entries {
		child, err := New(entry.DN, g.config)
		if err != nil {
			closeHandles(children)
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

// Child returns a new handle on the child matching name. The name is
// matched against the configured group lookup attribute and does not
// contain CN= or OU=.
func (g *ADGroup) Child(name string) (*ADGroup, error) {
	kind, err := g.objectKind()
	if err != nil {
		return nil, err
	}
	t, ok := g.templates.singleChild[kind]
	if !ok {
		return nil, fmt.Errorf("%w: no child %q under %s", ErrGroupDoesNotExist, name, g.DN)
	}
	entries, err := g.search(t, name)
	if err != nil {
		return nil, err
	}
	if 0 == len(entries) {
		return nil, fmt.Errorf("%w: no child %q under %s", ErrGroupDoesNotExist, name, g.DN)
	}
	if 1 < len(entries) {
		slog.Debug("Multiple children match, using the first one.", "dn", g.DN, "name", name, "matches", len(entries))
	}
	return New(entries[0].DN, g.config)
}

// Descendants returns new handles on every group and organizational
// unit in the subtree below this entry.
func (g *ADGroup) Descendants() ([]*ADGroup, error) {
	entries, err := g.search(g.templates.descendants)
	if err != nil {
		return nil, err
	}
	seen := mapset.NewThreadUnsafeSet[string]()
	descendants := make([]*ADGroup, 0, len(entries))
	for _, entry := range entries {
		// Subtree scope includes the base entry.
		if entry.DN == g.DN || !seen.Add(entry.DN) {
			continue
		}
		descendant, err := New(entry.DN, g.config)
		if err != nil {
			closeHandles(descendants)
			return nil, err
		}
		descendants = append(descendants, descendant)
	}
	return descendants, nil
}

func closeHandles(groups []*ADGroup) {
	for _, g := range groups {
		_ = g.Close()
	}
}

// AddMember adds the user matching accountName to the group.
func (g *ADGroup) AddMember(accountName string) error {
	dn, err := g.userDN(accountName)
	if err != nil {
		return err
	}
	return g.modifyMembership(dn, true, "member", accountName)
}

// RemoveMember removes the user matching accountName from the group.
func (g *ADGroup) RemoveMember(accountName string) error {
	dn, err := g.userDN(accountName)
	if err != nil {
		return err
	}
	return g.modifyMembership(dn, false, "member", accountName)
}

// AddChild adds the group or OU matching groupName to the group.
func (g *ADGroup) AddChild(groupName string) error {
	dn, err := g.childDN(groupName)
	if err != nil {
		return err
	}
	return g.modifyMembership(dn, true, "child", groupName)
}

// RemoveChild removes the group or OU matching groupName from the
// group.
func (g *ADGroup) RemoveChild(groupName string) error {
	dn, err := g.childDN(groupName)
	if err != nil {
		return err
	}
	return g.modifyMembership(dn, false, "child", groupName)
}

// GetMemberInfo returns one record per user member of the group, with
// the configured attribute projection. The search pages through the
// member set pageSize entries at a time.
func (g *ADGroup) GetMemberInfo(pageSize uint32) ([]MemberRecord, error) {
	entries, err := g.searchPaged(g.templates.members, pageSize)
	if err != nil {
		return nil, err
	}
	records := make([]MemberRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, MemberRecord{
			DN:         entry.DN,
			Attributes: newAttributeSet(entry),
		})
	}
	return records, nil
}

// userDN resolves an account name to its DN with the user lookup
// template.
func (g *ADGroup) userDN(accountName string) (string, error) {
	entries, err := g.search(g.templates.user, accountName)
	if err != nil {
		return "", err
	}
	if 0 == len(entries) {
		return "", fmt.Errorf("%w: %q matched no user under %s", ErrAccountDoesNotExist, accountName, g.config.UserSearchBaseDN)
	}
	if 1 < len(entries) {
		slog.Debug("Multiple users match, using the first one.", "account", accountName, "matches", len(entries))
	}
	return entries[0].DN, nil
}

// childDN resolves a group name to its DN with the group lookup
// template.
func (g *ADGroup) childDN(groupName string) (string, error) {
	entries, err := g.search(g.templates.group, groupName)
	if err != nil {
		return "", err
	}
	if 0 == len(entries) {
		return "", fmt.Errorf("%w: %q matched no group under %s", ErrGroupDoesNotExist, groupName, g.config.GroupSearchBaseDN)
	}
	if 1 < len(entries) {
		slog.Debug("Multiple groups match, using the first one.", "group", groupName, "matches", len(entries))
	}
	return entries[0].DN, nil
}

// modifyMembership adds or deletes one value of the member attribute of
// the group entry.
func (g *ADGroup) modifyMembership(memberDN string, add bool, what, name string) error {
	verb, prep := "removing", "from"
	req := ldap3.NewModifyRequest(g.DN, nil)
	if add {
		verb, prep = "adding", "to"
		req.Add("member", []string{memberDN})
	} else {
		req.Delete("member", []string{memberDN})
	}

	err := g.conn.Modify(req)
	if err == nil {
		slog.Debug("Modified group membership.", "group", g.DN, "member", memberDN, "add", add)
		return nil
	}

	base := fmt.Sprintf("error %s %s %q %s group %q", verb, what, name, prep, g.DN)
	switch resultCode(err) {
	case ldap3.LDAPResultEntryAlreadyExists:
		return fmt.Errorf("%s: %w", base, ErrEntryAlreadyExists)
	case ldap3.LDAPResultInsufficientAccessRights:
		return fmt.Errorf("%s: %w", base, ErrInsufficientPermissions)
	}
	return fmt.Errorf("%s: %w: %v", base, ErrModificationFailed, err)
}
