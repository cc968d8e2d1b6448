package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"campaigniq-backend/internal/catalog"
)

// RowError describes one validation failure. Row is the zero-based index
// into the uploaded batch.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Rule    string `json:"rule"` // missing, type, negative, enum, expression
	Message string `json:"message"`
}

// Result is the outcome of validating one uploaded batch. Accepted holds
// the typed rows for the validated kind; Errors lists every failing row.
// Validation is exhaustive: a bad row never blocks the rows around it.
type Result struct {
	Kind     catalog.Kind
	Accepted *Tables
	Errors   []RowError
}

// Validate checks a raw batch against the dataset schema and the optional
// expression rules, producing typed rows for every clean row and a RowError
// for every violation. Pure: neither input is mutated.
func Validate(ds *catalog.Dataset, rows []RawRow, rules *RuleSet) Result {
	res := Result{Kind: ds.Kind, Accepted: NewTables()}

	for i, raw := range rows {
		normalized, errs := normalizeRow(ds, i, raw)
		if len(errs) == 0 && rules != nil {
			errs = rules.Check(ds.Kind, i, normalized)
		}
		if len(errs) > 0 {
			res.Errors = append(res.Errors, errs...)
			continue
		}
		appendTyped(res.Accepted, ds.Kind, normalized)
	}

	return res
}

// normalizeRow applies the schema checks in order: required columns present,
// values coercible, numerics non-negative, enums matched. All failing fields
// of the row are reported, not just the first.
func normalizeRow(ds *catalog.Dataset, idx int, raw RawRow) (map[string]any, []RowError) {
	normalized := make(map[string]any, len(ds.Fields))
	var errs []RowError

	for _, f := range ds.Fields {
		v, present := rawValue(raw, f.Name)
		if !present {
			if f.Required {
				errs = append(errs, RowError{
					Row: idx, Field: f.Name, Rule: "missing",
					Message: fmt.Sprintf("required column %q is missing", f.Name),
				})
			}
			continue
		}

		coerced, err := coerce(f, v)
		if err != nil {
			errs = append(errs, RowError{
				Row: idx, Field: f.Name, Rule: "type",
				Message: fmt.Sprintf("%s: %v", f.Name, err),
			})
			continue
		}

		if f.IsNumeric() && isNegative(coerced) {
			errs = append(errs, RowError{
				Row: idx, Field: f.Name, Rule: "negative",
				Message: fmt.Sprintf("%s must be non-negative, got %v", f.Name, coerced),
			})
			continue
		}

		if len(f.Enum) > 0 {
			canon, ok := catalog.NormalizeEnum(coerced.(string), f.Enum)
			if !ok {
				errs = append(errs, RowError{
					Row: idx, Field: f.Name, Rule: "enum",
					Message: fmt.Sprintf("invalid %s %q (allowed: %s)", f.Name, coerced, strings.Join(f.Enum, ", ")),
				})
				continue
			}
			coerced = canon
		}

		normalized[f.Name] = coerced
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return normalized, nil
}

// rawValue looks a column up by its schema name. Empty strings count as
// absent so that blank CSV cells fall through to the required-column check.
func rawValue(raw RawRow, name string) (any, bool) {
	v, ok := raw[name]
	if !ok || v == nil {
		return nil, false
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return v, true
}

func coerce(f catalog.Field, v any) (any, error) {
	switch f.Type {
	case "int":
		return coerceInt(v)
	case "decimal":
		return coerceFloat(v)
	case "date":
		return coerceDate(v)
	default:
		return coerceString(v)
	}
}

func coerceString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s), nil
	case json.Number:
		return s.String(), nil
	case float64:
		if s == math.Trunc(s) {
			return strconv.FormatInt(int64(s), 10), nil
		}
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(s), nil
	case int64:
		return strconv.FormatInt(s, 10), nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func coerceInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("expected integer, got %v", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %q", n.String())
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %q", n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func coerceFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected number, got %q", n.String())
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("expected number, got %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

var dateLayouts = []string{DateLayout, time.RFC3339, "2006-01-02 15:04:05"}

func coerceDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d, nil
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("invalid date %q", d)
	default:
		return time.Time{}, fmt.Errorf("expected date, got %T", v)
	}
}

func isNegative(v any) bool {
	switch n := v.(type) {
	case int:
		return n < 0
	case float64:
		return n < 0
	}
	return false
}

// appendTyped builds the typed row for the kind from a fully normalized
// column map and appends it to the accepted tables.
func appendTyped(t *Tables, kind catalog.Kind, row map[string]any) {
	switch kind {
	case catalog.KindInfluencers:
		t.Influencers = append(t.Influencers, Influencer{
			ID:            row["id"].(string),
			Name:          row["name"].(string),
			Category:      row["category"].(string),
			Gender:        row["gender"].(string),
			FollowerCount: row["follower_count"].(int),
			Platform:      row["platform"].(string),
		})
	case catalog.KindPosts:
		p := Post{
			InfluencerID: row["influencer_id"].(string),
			Platform:     row["platform"].(string),
			Date:         row["date"].(time.Time),
			URL:          row["url"].(string),
			Reach:        row["reach"].(int),
			Likes:        row["likes"].(int),
			Comments:     row["comments"].(int),
		}
		if c, ok := row["caption"].(string); ok {
			p.Caption = c
		}
		t.Posts = append(t.Posts, p)
	case catalog.KindTracking:
		t.Tracking = append(t.Tracking, TrackingRecord{
			InfluencerID: row["influencer_id"].(string),
			Campaign:     row["campaign"].(string),
			Product:      row["product"].(string),
			Brand:        row["brand"].(string),
			Date:         row["date"].(time.Time),
			Orders:       row["orders"].(int),
			Revenue:      row["revenue"].(float64),
		})
	case catalog.KindPayouts:
		p := Payout{
			InfluencerID: row["influencer_id"].(string),
			Basis:        row["basis"].(string),
			Rate:         row["rate"].(float64),
		}
		if n, ok := row["orders"].(int); ok {
			p.Orders = &n
		}
		if tp, ok := row["total_payout"].(float64); ok {
			p.TotalPayout = tp
		} else if p.Basis == catalog.BasisPerOrder && p.Orders != nil {
			// total_payout is "derived or supplied": derive when we can.
			p.TotalPayout = p.Rate * float64(*p.Orders)
		}
		t.Payouts = append(t.Payouts, p)
	}
}
