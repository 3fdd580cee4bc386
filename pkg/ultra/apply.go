package ultra

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nebari-dev/ultrasync/pkg/record"
	"github.com/nebari-dev/ultrasync/pkg/status"
)

// Apply applies changes to zone strictly in the given order and returns
// the number of changes processed.
//
// A zone missing from the account is created first. The vendor provisions
// apex NS records for new zones, so apex NS creates are sent as updates in
// that case. Deleting a record that is not at the vendor is a no-op.
// The first failure aborts; changes already sent stay applied and are
// counted in the returned number.
func (p *Provider) Apply(ctx context.Context, zone string, changes []record.Change) (int, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "ultra.Apply")
	defer span.End()

	span.SetAttributes(
		attribute.String("zone", zone),
		attribute.Int("change_count", len(changes)),
	)
	p.logger.Debug("apply", "zone", zone, "changes", len(changes))

	known, err := p.hasZone(ctx, zone)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	// Vendor state changes from here on, so the rrset cache is stale
	// whether or not every change succeeds.
	defer p.InvalidateZone(zone)

	if !known {
		span.SetAttributes(attribute.Bool("zone.created", true))
		if err := p.createZone(ctx, zone); err != nil {
			span.RecordError(err)
			return 0, err
		}
		changes = forceRootNSUpdate(changes, p.logger.Info)
	}

	for i, change := range changes {
		rec := change.Record()
		status.Send(ctx, status.NewUpdate(status.LevelProgress,
			fmt.Sprintf("Applying change %d of %d", i+1, len(changes))).
			ForZone(zone).
			WithAction(change.Kind()).
			WithRecord(fmt.Sprintf("%s %s", rec.FQDN(zone), rec.Type)))

		var err error
		switch c := change.(type) {
		case record.Create:
			err = p.applyCreate(ctx, zone, c)
		case record.Update:
			err = p.applyUpdate(ctx, zone, c)
		case record.Delete:
			err = p.applyDelete(ctx, zone, c)
		default:
			err = fmt.Errorf("unsupported change %T", change)
		}
		if err != nil {
			span.RecordError(err)
			return i, fmt.Errorf("failed to %s %s %s in zone %s: %w", change.Kind(), rec.FQDN(zone), rec.Type, zone, err)
		}
	}

	return len(changes), nil
}

func (p *Provider) createZone(ctx context.Context, zone string) error {
	p.logger.Debug("apply: no matching zone, creating", "zone", zone)
	status.Send(ctx, status.NewUpdate(status.LevelInfo, "Creating zone").ForZone(zone).WithAction("create-zone"))

	body := createZoneRequest{
		Properties: zoneProperties{
			Name:        zone,
			AccountName: p.account,
			Type:        "PRIMARY",
		},
		PrimaryCreateInfo: primaryCreateInfo{CreateType: "NEW"},
	}
	if _, err := p.client.request(ctx, http.MethodPost, "/v2/zones", nil, body, true); err != nil {
		return fmt.Errorf("failed to create zone %s: %w", zone, err)
	}

	p.zones = append(p.zones, zone)
	p.zoneRecords[zone] = []RRSet{}
	return nil
}

// forceRootNSUpdate rewrites apex NS creates into updates. The input slice
// is not modified.
func forceRootNSUpdate(changes []record.Change, logf func(msg string, args ...any)) []record.Change {
	out := make([]record.Change, len(changes))
	for i, change := range changes {
		if c, ok := change.(record.Create); ok && c.New.IsApexNS() {
			logf("apply: found root NS record creation, changing to update")
			out[i] = record.Update{Existing: nil, New: c.New}
			continue
		}
		out[i] = change
	}
	return out
}

func (p *Provider) applyCreate(ctx context.Context, zone string, c record.Create) error {
	p.logger.Debug("apply: create", "name", c.New.Name, "type", c.New.Type, "ttl", c.New.TTL)
	path, payload, err := Encode(zone, c.New)
	if err != nil {
		return err
	}
	_, err = p.client.request(ctx, http.MethodPost, path, nil, payload, true)
	return err
}

func (p *Provider) applyUpdate(ctx context.Context, zone string, c record.Update) error {
	p.logger.Debug("apply: update", "name", c.New.Name, "type", c.New.Type, "ttl", c.New.TTL)
	path, payload, err := Encode(zone, c.New)
	if err != nil {
		return err
	}
	_, err = p.client.request(ctx, http.MethodPut, path, nil, payload, true)
	return err
}

func (p *Provider) applyDelete(ctx context.Context, zone string, c record.Delete) error {
	existing := c.Existing
	fqdn := existing.FQDN(zone)

	rrsets, err := p.ZoneRecords(ctx, zone)
	if err != nil {
		return err
	}

	for _, rr := range rrsets {
		if rr.RRType == rrtypeSOA {
			continue
		}
		t, ok := TypeForRRType(rr.RRType)
		if !ok || rr.OwnerName != fqdn || t != existing.Type {
			continue
		}
		p.logger.Debug("apply: delete", "name", existing.Name, "type", existing.Type)
		_, err := p.client.request(ctx, http.MethodDelete, rrsetPath(zone, existing.Type, fqdn), nil, nil, false)
		return err
	}

	// TODO: surface a planned delete that no longer matches vendor state
	// once callers can tell drift apart from a stale plan.
	p.logger.Debug("apply: nothing to delete", "name", existing.Name, "type", existing.Type)
	return nil
}
