package ldapgroups

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	ldap3 "github.com/go-ldap/ldap/v3"
	"golang.org/x/exp/maps"
)

// AttributeSet maps an attribute name to its values. Accessors unwrap
// single-valued attributes for caller convenience; multi-valued
// attributes keep their server order.
type AttributeSet map[string][]string

// Value returns the first value of the named attribute, or the empty
// string when absent.
func (s AttributeSet) Value(name string) string {
	values := s[name]
	if 0 == len(values) {
		return ""
	}
	return values[0]
}

// Values returns all values of the named attribute.
func (s AttributeSet) Values(name string) []string {
	return s[name]
}

func (s AttributeSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns attribute names, sorted.
func (s AttributeSet) Names() []string {
	names := maps.Keys(s)
	sort.Strings(names)
	return names
}

func newAttributeSet(entry *ldap3.Entry) AttributeSet {
	set := make(AttributeSet, len(entry.Attributes))
	for _, attribute := range entry.Attributes {
		set[attribute.Name] = attribute.Values
	}
	return set
}

// MemberRecord projects one member entry: its DN plus the requested
// attributes.
type MemberRecord struct {
	DN         string
	Attributes AttributeSet
}

// resultCode extracts the LDAP result code out of a possibly wrapped
// protocol error. Zero (success) when err carries no protocol code.
func resultCode(err error) uint16 {
	var ldapErr *ldap3.Error
	if errors.As(err, &ldapErr) {
		return ldapErr.ResultCode
	}
	return ldap3.LDAPResultSuccess
}

// search runs one prepared search on the handle connection and returns
// the matching entries. The go-ldap client already strips non-entry
// protocol messages from the result.
func (g *ADGroup) search(t SearchTemplate, values ...string) ([]*ldap3.Entry, error) {
	filter := t.Render(values...)
	slog.Debug("LDAP search.", "base", t.Base, "scope", t.Scope, "filter", filter)
	req := ldap3.NewSearchRequest(
		t.Base, int(t.Scope), ldap3.NeverDerefAliases,
		0, 0, false,
		filter, t.Attributes, nil,
	)
	res, err := g.conn.Search(req)
	if err != nil {
		if resultCode(err) == ldap3.LDAPResultOperationsError {
			return nil, fmt.Errorf("%w: the server most likely does not accept anonymous searches: %v", ErrImproperlyConfigured, err)
		}
		return nil, fmt.Errorf("search %s: %w", t.Base, err)
	}
	return res.Entries, nil
}

// searchPaged runs one prepared search with the simple paged results
// control, requesting pageSize entries per round trip. Pages are
// aggregated into a single finite result; a fresh call re-executes the
// whole search.
func (g *ADGroup) searchPaged(t SearchTemplate, pageSize uint32, values ...string) ([]*ldap3.Entry, error) {
	filter := t.Render(values...)
	slog.Debug("LDAP paged search.", "base", t.Base, "scope", t.Scope, "filter", filter, "page_size", pageSize)
	req := ldap3.NewSearchRequest(
		t.Base, int(t.Scope), ldap3.NeverDerefAliases,
		0, 0, false,
		filter, t.Attributes, nil,
	)
	res, err := g.conn.SearchWithPaging(req, pageSize)
	if err != nil {
		if resultCode(err) == ldap3.LDAPResultOperationsError {
			return nil, fmt.Errorf("%w: the server most likely does not accept anonymous searches: %v", ErrImproperlyConfigured, err)
		}
		return nil, fmt.Errorf("paged search %s: %w", t.Base, err)
	}
	slog.Debug("LDAP paged search done.", "base", t.Base, "entries", len(res.Entries))
	return res.Entries, nil
}
