// Package zonefile reads and writes desired zone state as YAML.
//
// The layout follows octoDNS: every top-level key is a name relative to the
// zone ("" for the apex) mapping to one record object or a list of them.
//
//	'':
//	  - type: A
//	    values: [1.2.3.4, 1.2.3.5]
//	  - type: MX
//	    values:
//	      - preference: 10
//	        exchange: mx1.example.com.
//	www:
//	  type: CNAME
//	  ttl: 300
//	  value: example.com.
package zonefile

import (
	"context"
	"fmt"
	"net/netip"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/miekg/dns"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nebari-dev/ultrasync/pkg/record"
)

// DefaultTTL applies to records that do not set ttl
const DefaultTTL uint32 = 3600

// Zone is the desired state of one zone
type Zone struct {
	Name    string
	Records []record.Record
}

type rawRecord struct {
	Type   string `yaml:"type"`
	TTL    *int64 `yaml:"ttl,omitempty"`
	Value  any    `yaml:"value,omitempty"`
	Values []any  `yaml:"values,omitempty"`
}

// Path returns the file holding zone inside dir, e.g. "zones/example.com.yaml"
func Path(dir, zone string) string {
	return filepath.Join(dir, dns.Fqdn(zone)+"yaml")
}

// Load reads and parses the zone file for zone from dir
func Load(ctx context.Context, fs afero.Fs, dir, zone string) (*Zone, error) {
	tracer := otel.Tracer("ultrasync")
	_, span := tracer.Start(ctx, "zonefile.Load")
	defer span.End()

	path := Path(dir, zone)
	span.SetAttributes(
		attribute.String("zone", zone),
		attribute.String("zonefile.path", path),
	)

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read zone file %s: %w", path, err)
	}

	z, err := Parse(zone, data)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to parse zone file %s: %w", path, err)
	}

	span.SetAttributes(attribute.Int("record_count", len(z.Records)))
	return z, nil
}

// Parse parses zone file content. Records are returned sorted by name, then
// type.
func Parse(zone string, data []byte) (*Zone, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	z := &Zone{Name: dns.Fqdn(zone)}
	seen := make(map[record.Key]bool)

	for name, node := range doc {
		entries, ok := node.([]any)
		if !ok {
			entries = []any{node}
		}

		for i, entry := range entries {
			var raw rawRecord
			if err := remarshal(entry, &raw); err != nil {
				return nil, fmt.Errorf("%s: record %d: %w", displayName(name), i, err)
			}

			rec, err := buildRecord(name, raw)
			if err != nil {
				return nil, fmt.Errorf("%s: record %d: %w", displayName(name), i, err)
			}

			if seen[rec.Key()] {
				return nil, fmt.Errorf("%s: duplicate %s record", displayName(name), rec.Type)
			}
			seen[rec.Key()] = true
			z.Records = append(z.Records, rec)
		}
	}

	SortRecords(z.Records)
	return z, nil
}

// SortRecords orders records by name, then type
func SortRecords(records []record.Record) {
	slices.SortFunc(records, func(a, b record.Record) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(string(a.Type), string(b.Type))
	})
}

func buildRecord(name string, raw rawRecord) (record.Record, error) {
	if name != "" {
		if _, ok := dns.IsDomainName(name); !ok || dns.IsFqdn(name) {
			return record.Record{}, fmt.Errorf("invalid record name %q, must be relative to the zone", name)
		}
		if name != strings.ToLower(name) {
			return record.Record{}, fmt.Errorf("invalid record name %q, must be lowercase", name)
		}
	}

	t, err := record.ParseType(raw.Type)
	if err != nil {
		return record.Record{}, err
	}

	rec := record.Record{Name: name, Type: t, TTL: DefaultTTL}
	if raw.TTL != nil {
		if *raw.TTL < 0 || *raw.TTL > int64(^uint32(0)) {
			return record.Record{}, fmt.Errorf("ttl %d out of range", *raw.TTL)
		}
		rec.TTL = uint32(*raw.TTL)
	}

	values := raw.Values
	if raw.Value != nil {
		if len(values) > 0 {
			return record.Record{}, fmt.Errorf("only one of value and values may be set")
		}
		values = []any{raw.Value}
	}
	if len(values) == 0 {
		return record.Record{}, fmt.Errorf("%s record needs a value", t)
	}

	switch t {
	case record.TypeCNAME, record.TypePTR, record.TypeALIAS:
		if len(values) != 1 {
			return record.Record{}, fmt.Errorf("%s record takes exactly one value", t)
		}
		rec.Value = fmt.Sprint(values[0])
		if !dns.IsFqdn(rec.Value) {
			return record.Record{}, fmt.Errorf("%s value %q must be fully qualified", t, rec.Value)
		}
		if t == record.TypeALIAS && name != "" {
			return record.Record{}, fmt.Errorf("ALIAS records are only allowed at the zone apex")
		}
	case record.TypeA, record.TypeAAAA:
		for _, v := range values {
			s := fmt.Sprint(v)
			addr, err := netip.ParseAddr(s)
			if err != nil || (t == record.TypeA) != addr.Is4() {
				return record.Record{}, fmt.Errorf("invalid %s value %q", t, s)
			}
			rec.Values = append(rec.Values, s)
		}
	case record.TypeNS:
		for _, v := range values {
			s := fmt.Sprint(v)
			if !dns.IsFqdn(s) {
				return record.Record{}, fmt.Errorf("NS value %q must be fully qualified", s)
			}
			rec.Values = append(rec.Values, s)
		}
	case record.TypeTXT:
		for _, v := range values {
			s := fmt.Sprint(v)
			if hasUnescapedSemicolon(s) {
				return record.Record{}, fmt.Errorf(`TXT value %q has an unescaped ";", write it as "\;"`, s)
			}
			rec.Values = append(rec.Values, s)
		}
	case record.TypeCAA:
		for _, v := range values {
			var caa record.CAAValue
			if err := remarshal(v, &caa, yaml.Strict()); err != nil {
				return record.Record{}, fmt.Errorf("invalid CAA value: %w", err)
			}
			if caa.Tag == "" || caa.Value == "" {
				return record.Record{}, fmt.Errorf("CAA value needs tag and value")
			}
			rec.CAA = append(rec.CAA, caa)
		}
	case record.TypeMX:
		for _, v := range values {
			var mx record.MXValue
			if err := remarshal(v, &mx, yaml.Strict()); err != nil {
				return record.Record{}, fmt.Errorf("invalid MX value: %w", err)
			}
			if !dns.IsFqdn(mx.Exchange) {
				return record.Record{}, fmt.Errorf("MX exchange %q must be fully qualified", mx.Exchange)
			}
			rec.MX = append(rec.MX, mx)
		}
	case record.TypeSRV:
		if _, ok := dns.IsDomainName(name); !ok || !strings.HasPrefix(name, "_") {
			return record.Record{}, fmt.Errorf("SRV record name %q must look like _service._proto", name)
		}
		for _, v := range values {
			var srv record.SRVValue
			if err := remarshal(v, &srv, yaml.Strict()); err != nil {
				return record.Record{}, fmt.Errorf("invalid SRV value: %w", err)
			}
			if !dns.IsFqdn(srv.Target) {
				return record.Record{}, fmt.Errorf("SRV target %q must be fully qualified", srv.Target)
			}
			rec.SRV = append(rec.SRV, srv)
		}
	default:
		return record.Record{}, fmt.Errorf("unsupported record type %q", t)
	}

	return rec, nil
}

// hasUnescapedSemicolon reports whether s has a ";" not written as "\;".
func hasUnescapedSemicolon(s string) bool {
	return strings.Contains(strings.ReplaceAll(s, `\;`, ""), ";")
}

// remarshal converts a generic YAML node into target by marshaling it back
// to YAML and decoding again.
func remarshal(node any, target any, opts ...yaml.DecodeOption) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	return yaml.UnmarshalWithOptions(data, target, opts...)
}

func displayName(name string) string {
	if name == "" {
		return "(apex)"
	}
	return name
}
