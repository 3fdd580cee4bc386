package ultra

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nebari-dev/ultrasync/pkg/record"
)

// Populate returns the canonical records currently in zone and whether the
// zone has any rrsets at the vendor.
//
// SOA is never returned. Rrsets that cannot be represented (unknown rrtype,
// directional pools, malformed rdata) are logged and skipped. When the API
// returns more than one rrset for the same name and type, the last wins.
func (p *Provider) Populate(ctx context.Context, zone string) ([]record.Record, bool, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "ultra.Populate")
	defer span.End()

	span.SetAttributes(attribute.String("zone", zone))
	p.logger.Debug("populate", "zone", zone)

	rrsets, err := p.ZoneRecords(ctx, zone)
	if err != nil {
		span.RecordError(err)
		return nil, false, err
	}

	groups := make(map[record.Key]RRSet)
	var order []record.Key
	for _, rr := range rrsets {
		if rr.RRType == rrtypeSOA {
			continue
		}
		name := record.RelativeName(zone, rr.OwnerName)
		t, err := classify(name, rr)
		if err != nil {
			p.logger.Warn("populate: ignoring record", "zone", zone, "name", name, "rrtype", rr.RRType, "error", err)
			continue
		}
		key := record.Key{Name: name, Type: t}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = rr
	}

	records := make([]record.Record, 0, len(order))
	for _, key := range order {
		rec, err := Decode(zone, groups[key])
		if err != nil {
			p.logger.Warn("populate: ignoring record", "zone", zone, "name", key.Name, "type", key.Type, "error", err)
			continue
		}
		records = append(records, rec)
	}

	exists := len(rrsets) > 0
	span.SetAttributes(
		attribute.Int("record_count", len(records)),
		attribute.Bool("zone.exists", exists),
	)
	p.logger.Info("populate: found records", "zone", zone, "count", len(records), "exists", exists)

	return records, exists, nil
}
