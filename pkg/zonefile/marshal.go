package zonefile

import (
	"context"
	"fmt"
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nebari-dev/ultrasync/pkg/record"
)

// Marshal renders records in zone file layout. A name holding a single
// record is written as one object, otherwise as a list.
func Marshal(records []record.Record) ([]byte, error) {
	sorted := slices.Clone(records)
	SortRecords(sorted)

	doc := yaml.MapSlice{}
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j].Name == sorted[i].Name {
			j++
		}

		nodes := make([]yaml.MapSlice, 0, j-i)
		for _, rec := range sorted[i:j] {
			nodes = append(nodes, recordNode(rec))
		}
		if len(nodes) == 1 {
			doc = append(doc, yaml.MapItem{Key: sorted[i].Name, Value: nodes[0]})
		} else {
			doc = append(doc, yaml.MapItem{Key: sorted[i].Name, Value: nodes})
		}
		i = j
	}

	return yaml.Marshal(doc)
}

func recordNode(rec record.Record) yaml.MapSlice {
	node := yaml.MapSlice{{Key: "type", Value: string(rec.Type)}}
	if rec.TTL != DefaultTTL {
		node = append(node, yaml.MapItem{Key: "ttl", Value: rec.TTL})
	}

	switch rec.Type {
	case record.TypeCNAME, record.TypePTR, record.TypeALIAS:
		return append(node, yaml.MapItem{Key: "value", Value: rec.Value})
	case record.TypeCAA:
		return append(node, valuesItem(rec.CAA)...)
	case record.TypeMX:
		return append(node, valuesItem(rec.MX)...)
	case record.TypeSRV:
		return append(node, valuesItem(rec.SRV)...)
	default:
		return append(node, valuesItem(rec.Values)...)
	}
}

func valuesItem[T any](values []T) []yaml.MapItem {
	if len(values) == 1 {
		return []yaml.MapItem{{Key: "value", Value: values[0]}}
	}
	return []yaml.MapItem{{Key: "values", Value: values}}
}

// Save writes records as the zone file for zone in dir, creating dir if
// needed.
func Save(ctx context.Context, fs afero.Fs, dir, zone string, records []record.Record) error {
	tracer := otel.Tracer("ultrasync")
	_, span := tracer.Start(ctx, "zonefile.Save")
	defer span.End()

	path := Path(dir, zone)
	span.SetAttributes(
		attribute.String("zone", zone),
		attribute.String("zonefile.path", path),
		attribute.Int("record_count", len(records)),
	)

	data, err := Marshal(records)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to render zone %s: %w", zone, err)
	}

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to write zone file %s: %w", path, err)
	}
	return nil
}
