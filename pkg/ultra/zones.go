package ultra

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Zones returns the names of all primary zones in the account, in the
// order the API returns them. The result is cached until ResetZones.
func (p *Provider) Zones(ctx context.Context) ([]string, error) {
	if p.zones != nil {
		return slices.Clone(p.zones), nil
	}

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "ultra.Zones")
	defer span.End()

	query := url.Values{
		"limit": {strconv.Itoa(zoneRequestLimit)},
		"q":     {"zone_type:PRIMARY"},
	}

	zones := []string{}
	pages := 0
	for {
		var resp zoneListResponse
		err := p.client.getJSON(ctx, "/v3/zones", query, &resp)
		if errors.Is(err, ErrNoZonesExist) {
			break
		}
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to list zones: %w", err)
		}
		pages++

		for _, z := range resp.Zones {
			zones = append(zones, z.Properties.Name)
		}

		if resp.CursorInfo.Next == "" {
			break
		}
		query.Set("cursor", resp.CursorInfo.Next)
	}

	span.SetAttributes(
		attribute.Int("zone_count", len(zones)),
		attribute.Int("page_count", pages),
	)
	p.logger.Debug("zones loaded", "count", len(zones), "pages", pages)

	p.zones = zones
	return slices.Clone(p.zones), nil
}

// ListZones is an alias of Zones.
func (p *Provider) ListZones(ctx context.Context) ([]string, error) {
	return p.Zones(ctx)
}

// ResetZones drops the cached zone list so the next Zones call refetches.
func (p *Provider) ResetZones() {
	p.zones = nil
}

func (p *Provider) hasZone(ctx context.Context, zone string) (bool, error) {
	zones, err := p.Zones(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(zones, zone), nil
}
