package ldapgroups

import "strings"

// DN manipulation works on the string form. Distinguished names coming
// back from the server are well formed, so splitting on the first comma
// is enough to strip the leading RDN. The domain-root check assumes the
// marker "DC" never appears escaped inside an RDN value; a value
// legitimately containing "DC" defeats it. Known limitation, kept for
// compatibility with historical behavior.

// ParentDN strips the leading RDN component of dn. A DN without a comma
// is returned unchanged.
func ParentDN(dn string) string {
	_, parent, found := strings.Cut(dn, ",")
	if !found {
		return dn
	}
	return parent
}

// AncestorDN strips one RDN component per generation, stopping early at
// the domain root. Zero or negative generations return dn unchanged.
func AncestorDN(dn string, generation int) string {
	for ; generation > 0; generation-- {
		if atDomainRoot(dn) {
			break
		}
		dn = ParentDN(dn)
	}
	return dn
}

// atDomainRoot reports whether dn sits at the naming context, that is
// nothing but whitespace before the first "DC" marker.
func atDomainRoot(dn string) bool {
	head, _, found := strings.Cut(dn, "DC")
	return found && "" == strings.TrimSpace(head)
}

// firstRDN returns the leading RDN component, e.g. CN=Foo.
func firstRDN(dn string) string {
	rdn, _, _ := strings.Cut(dn, ",")
	return rdn
}
