package ultra

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/miekg/dns"

	"github.com/nebari-dev/ultrasync/pkg/record"
)

const (
	rrtypeSOA = "SOA (6)"

	// wireTypeApexAlias is the vendor's name for ALIAS records.
	wireTypeApexAlias = "APEXALIAS"

	dirPoolContext = "http://schemas.ultradns.com/DirPool.jsonschema"
	rdPoolContext  = "http://schemas.ultradns.com/RDPool.jsonschema"

	poolOrderFixed = "FIXED"
)

var rrtypeToType = map[string]record.Type{
	"A (1)":             record.TypeA,
	"AAAA (28)":         record.TypeAAAA,
	"APEXALIAS (65282)": record.TypeALIAS,
	"CAA (257)":         record.TypeCAA,
	"CNAME (5)":         record.TypeCNAME,
	"MX (15)":           record.TypeMX,
	"NS (2)":            record.TypeNS,
	"PTR (12)":          record.TypePTR,
	"SRV (33)":          record.TypeSRV,
	"TXT (16)":          record.TypeTXT,
}

// TypeForRRType maps an rrtype label such as "A (1)" to its canonical type.
func TypeForRRType(rrtype string) (record.Type, bool) {
	t, ok := rrtypeToType[rrtype]
	return t, ok
}

// wireType returns the type segment used in rrset paths.
func wireType(t record.Type) string {
	if t == record.TypeALIAS {
		return wireTypeApexAlias
	}
	return string(t)
}

// rrsetPath builds /v2/zones/{zone}/rrsets/{wireType}/{fqdn}.
func rrsetPath(zone string, t record.Type, fqdn string) string {
	return fmt.Sprintf("/v2/zones/%s/rrsets/%s/%s", dns.Fqdn(zone), wireType(t), fqdn)
}

// classify returns the canonical type of rr, or the reason it cannot be
// represented.
func classify(name string, rr RRSet) (record.Type, error) {
	t, ok := TypeForRRType(rr.RRType)
	if !ok {
		return "", &UnsupportedTypeError{Name: name, RRType: rr.RRType}
	}
	if t == record.TypeA && rr.Profile != nil && rr.Profile.Context == dirPoolContext {
		return "", &UnsupportedRecordError{Name: name, RRType: rr.RRType, Reason: "directional pool (dynamic)"}
	}
	return t, nil
}

// Decode converts a vendor rrset of zone into a canonical record.
// Unknown rrtypes yield *UnsupportedTypeError; directional pools and
// malformed rdata yield *UnsupportedRecordError.
func Decode(zone string, rr RRSet) (record.Record, error) {
	name := record.RelativeName(zone, rr.OwnerName)
	t, err := classify(name, rr)
	if err != nil {
		return record.Record{}, err
	}

	rec := record.Record{Name: name, Type: t, TTL: rr.TTL}
	malformed := func(v string) error {
		return &UnsupportedRecordError{Name: name, RRType: rr.RRType, Reason: fmt.Sprintf("malformed rdata %q", v)}
	}

	switch t {
	case record.TypeA, record.TypeAAAA, record.TypeNS:
		rec.Values = append([]string{}, rr.RData...)
	case record.TypeTXT:
		rec.Values = make([]string, 0, len(rr.RData))
		for _, v := range rr.RData {
			rec.Values = append(rec.Values, escapeTXT(v))
		}
	case record.TypeCNAME, record.TypePTR, record.TypeALIAS:
		if len(rr.RData) == 0 {
			return record.Record{}, malformed("")
		}
		rec.Value = rr.RData[0]
	case record.TypeCAA:
		for _, v := range rr.RData {
			caa, ok := parseCAA(v)
			if !ok {
				return record.Record{}, malformed(v)
			}
			rec.CAA = append(rec.CAA, caa)
		}
	case record.TypeMX:
		for _, v := range rr.RData {
			mx, ok := parseMX(v)
			if !ok {
				return record.Record{}, malformed(v)
			}
			rec.MX = append(rec.MX, mx)
		}
	case record.TypeSRV:
		for _, v := range rr.RData {
			srv, ok := parseSRV(v)
			if !ok {
				return record.Record{}, malformed(v)
			}
			rec.SRV = append(rec.SRV, srv)
		}
	default:
		return record.Record{}, fmt.Errorf("no decoder for record type %q", t)
	}

	return rec, nil
}

// Encode builds the rrset path and payload for rec in zone.
func Encode(zone string, rec record.Record) (string, RRSetPayload, error) {
	fqdn := rec.FQDN(zone)
	path := rrsetPath(zone, rec.Type, fqdn)
	payload := RRSetPayload{TTL: rec.TTL}

	switch rec.Type {
	case record.TypeA, record.TypeAAAA:
		payload.RData = append([]string{}, rec.Values...)
		// More than one address is a fixed-order resource distribution pool.
		if len(rec.Values) > 1 {
			payload.Profile = &Profile{
				Context:     rdPoolContext,
				Order:       poolOrderFixed,
				Description: fqdn,
			}
		}
	case record.TypeNS:
		payload.RData = append([]string{}, rec.Values...)
	case record.TypeTXT:
		payload.RData = make([]string, 0, len(rec.Values))
		for _, v := range rec.Values {
			payload.RData = append(payload.RData, unescapeTXT(v))
		}
	case record.TypeCNAME, record.TypePTR, record.TypeALIAS:
		payload.RData = []string{rec.Value}
	case record.TypeSRV:
		payload.RData = make([]string, 0, len(rec.SRV))
		for _, v := range rec.SRV {
			payload.RData = append(payload.RData, fmt.Sprintf("%d %d %d %s", v.Priority, v.Weight, v.Port, v.Target))
		}
	case record.TypeCAA:
		payload.RData = make([]string, 0, len(rec.CAA))
		for _, v := range rec.CAA {
			payload.RData = append(payload.RData, fmt.Sprintf("%d %s %s", v.Flags, v.Tag, v.Value))
		}
	case record.TypeMX:
		payload.RData = make([]string, 0, len(rec.MX))
		for _, v := range rec.MX {
			payload.RData = append(payload.RData, fmt.Sprintf("%d %s", v.Preference, v.Exchange))
		}
	default:
		return "", RRSetPayload{}, fmt.Errorf("no encoder for record type %q", rec.Type)
	}

	return path, payload, nil
}

// The API stores TXT data unescaped; canonical values escape semicolons.
func escapeTXT(v string) string   { return strings.ReplaceAll(v, ";", `\;`) }
func unescapeTXT(v string) string { return strings.ReplaceAll(v, `\;`, ";") }

// parseCAA reads `flags tag "value"`; the quotes are dropped.
func parseCAA(s string) (record.CAAValue, bool) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return record.CAAValue{}, false
	}
	flags, err := strconv.ParseUint(fields[0], 10, 8)
	if err != nil {
		return record.CAAValue{}, false
	}
	value := strings.Trim(strings.Join(fields[2:], " "), `"`)
	return record.CAAValue{Flags: uint8(flags), Tag: fields[1], Value: value}, true
}

func parseMX(s string) (record.MXValue, bool) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return record.MXValue{}, false
	}
	pref, err := strconv.ParseUint(fields[0], 10, 16)
	if err != nil {
		return record.MXValue{}, false
	}
	return record.MXValue{Preference: uint16(pref), Exchange: fields[1]}, true
}

func parseSRV(s string) (record.SRVValue, bool) {
	fields := strings.Fields(s)
	if len(fields) != 4 {
		return record.SRVValue{}, false
	}
	var nums [3]uint16
	for i := range nums {
		n, err := strconv.ParseUint(fields[i], 10, 16)
		if err != nil {
			return record.SRVValue{}, false
		}
		nums[i] = uint16(n)
	}
	return record.SRVValue{Priority: nums[0], Weight: nums[1], Port: nums[2], Target: fields[3]}, true
}
