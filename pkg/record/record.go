package record

import (
	"fmt"
	"slices"
	"strings"

	"github.com/miekg/dns"
)

// Type is a canonical record type tag.
type Type string

const (
	TypeA     Type = "A"
	TypeAAAA  Type = "AAAA"
	TypeALIAS Type = "ALIAS"
	TypeCAA   Type = "CAA"
	TypeCNAME Type = "CNAME"
	TypeMX    Type = "MX"
	TypeNS    Type = "NS"
	TypePTR   Type = "PTR"
	TypeSRV   Type = "SRV"
	TypeTXT   Type = "TXT"
)

// SupportedTypes lists every record type this module can represent.
var SupportedTypes = []Type{
	TypeA, TypeAAAA, TypeALIAS, TypeCAA, TypeCNAME,
	TypeMX, TypeNS, TypePTR, TypeSRV, TypeTXT,
}

// ParseType converts a type name such as "MX" into a Type.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	if !slices.Contains(SupportedTypes, t) {
		return "", fmt.Errorf("unsupported record type %q", s)
	}
	return t, nil
}

// IsSingleValue reports whether records of this type carry one scalar value
// instead of a value list.
func (t Type) IsSingleValue() bool {
	switch t {
	case TypeCNAME, TypePTR, TypeALIAS:
		return true
	}
	return false
}

// CAAValue is one certification authority authorization entry.
type CAAValue struct {
	Flags uint8  `yaml:"flags"`
	Tag   string `yaml:"tag"`
	Value string `yaml:"value"`
}

// MXValue is one mail exchanger entry.
type MXValue struct {
	Preference uint16 `yaml:"preference"`
	Exchange   string `yaml:"exchange"`
}

// SRVValue is one service locator entry.
type SRVValue struct {
	Priority uint16 `yaml:"priority"`
	Weight   uint16 `yaml:"weight"`
	Port     uint16 `yaml:"port"`
	Target   string `yaml:"target"`
}

// Record is the provider-agnostic representation of one (name, type) rrset.
//
// Exactly one value slot is used, selected by Type:
//   - Value for CNAME, PTR and ALIAS
//   - Values for A, AAAA, NS and TXT
//   - CAA, MX or SRV for the structured types
//
// TXT values are kept in escaped form: a literal semicolon is written "\;".
type Record struct {
	// Name is relative to the zone; "" is the apex.
	Name string
	Type Type
	TTL  uint32

	Value  string
	Values []string
	CAA    []CAAValue
	MX     []MXValue
	SRV    []SRVValue
}

// Key identifies a record within a zone.
type Key struct {
	Name string
	Type Type
}

// Key returns the (name, type) identity of the record.
func (r Record) Key() Key {
	return Key{Name: r.Name, Type: r.Type}
}

// FQDN returns the fully-qualified owner name of the record in zone.
func (r Record) FQDN(zone string) string {
	zone = dns.Fqdn(zone)
	if r.Name == "" {
		return zone
	}
	return dns.Fqdn(r.Name + "." + zone)
}

// IsApexNS reports whether r is the zone's root NS record set.
func (r Record) IsApexNS() bool {
	return r.Name == "" && r.Type == TypeNS
}

// Len returns the number of values held by the record.
func (r Record) Len() int {
	return len(r.rdata())
}

// Equal reports whether two records have the same identity, TTL and
// values. Value order is ignored.
func (r Record) Equal(o Record) bool {
	if r.Key() != o.Key() || r.TTL != o.TTL {
		return false
	}
	a, b := r.rdata(), o.rdata()
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

func (r Record) String() string {
	name := r.Name
	if name == "" {
		name = "@"
	}
	return fmt.Sprintf("%s %s %d %s", name, r.Type, r.TTL, strings.Join(r.rdata(), ", "))
}

// rdata renders the record's values as presentation strings.
func (r Record) rdata() []string {
	switch r.Type {
	case TypeCNAME, TypePTR, TypeALIAS:
		if r.Value == "" {
			return nil
		}
		return []string{r.Value}
	case TypeCAA:
		out := make([]string, 0, len(r.CAA))
		for _, v := range r.CAA {
			out = append(out, fmt.Sprintf("%d %s %s", v.Flags, v.Tag, v.Value))
		}
		return out
	case TypeMX:
		out := make([]string, 0, len(r.MX))
		for _, v := range r.MX {
			out = append(out, fmt.Sprintf("%d %s", v.Preference, v.Exchange))
		}
		return out
	case TypeSRV:
		out := make([]string, 0, len(r.SRV))
		for _, v := range r.SRV {
			out = append(out, fmt.Sprintf("%d %d %d %s", v.Priority, v.Weight, v.Port, v.Target))
		}
		return out
	default:
		return slices.Clone(r.Values)
	}
}

// RelativeName converts an owner FQDN into a name relative to zone.
// The apex maps to "". Names outside the zone are returned unchanged.
func RelativeName(zone, fqdn string) string {
	zone = dns.Fqdn(zone)
	fqdn = dns.Fqdn(fqdn)
	if strings.EqualFold(zone, fqdn) {
		return ""
	}
	if !dns.IsSubDomain(zone, fqdn) {
		return fqdn
	}
	return fqdn[:len(fqdn)-len(zone)-1]
}
