package ultra

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// ZoneRecords returns every rrset of zone in API order. Zones that are not
// in the account yield an empty result without querying rrsets. Results are
// cached per zone until InvalidateZone.
func (p *Provider) ZoneRecords(ctx context.Context, zone string) ([]RRSet, error) {
	if rrsets, ok := p.zoneRecords[zone]; ok {
		return rrsets, nil
	}

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "ultra.ZoneRecords")
	defer span.End()

	span.SetAttributes(attribute.String("zone", zone))

	known, err := p.hasZone(ctx, zone)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !known {
		span.SetAttributes(attribute.Bool("zone.exists", false))
		return nil, nil
	}

	path := fmt.Sprintf("/v2/zones/%s/rrsets", zone)
	rrsets := []RRSet{}
	offset := 0
	pages := 0
	for {
		query := url.Values{
			"offset": {strconv.Itoa(offset)},
			"limit":  {strconv.Itoa(rrsetRequestLimit)},
		}

		var resp rrsetListResponse
		err := p.client.getJSON(ctx, path, query, &resp)
		if errors.Is(err, ErrNoZonesExist) {
			break
		}
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to list rrsets for zone %s: %w", zone, err)
		}
		pages++
		rrsets = append(rrsets, resp.RRSets...)

		info := resp.ResultInfo
		if info.ReturnedCount <= 0 || info.Offset+info.ReturnedCount >= info.TotalCount {
			break
		}
		offset += info.ReturnedCount
	}

	span.SetAttributes(
		attribute.Int("rrset_count", len(rrsets)),
		attribute.Int("page_count", pages),
	)

	p.zoneRecords[zone] = rrsets
	return rrsets, nil
}

// InvalidateZone drops the cached rrsets of zone.
func (p *Provider) InvalidateZone(zone string) {
	delete(p.zoneRecords, zone)
}
