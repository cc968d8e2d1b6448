package catalog

import "strings"

// Platforms is the closed set of social platforms an influencer or post
// may belong to. Matching is case-insensitive; values are normalized to
// these spellings.
var Platforms = []string{"Instagram", "YouTube", "Twitter", "Facebook", "TikTok", "LinkedIn"}

// Canonical payout basis values.
const (
	BasisPerPost  = "per-post"
	BasisPerOrder = "per-order"
)

// PayoutBases is the closed set of payout basis values.
var PayoutBases = []string{BasisPerPost, BasisPerOrder}

// basisAliases maps legacy basis spellings to the canonical values.
var basisAliases = map[string]string{
	"post":  BasisPerPost,
	"order": BasisPerOrder,
}

// NormalizeEnum resolves a raw value against an enum set, case-insensitively.
// Payout basis accepts the bare "post"/"order" aliases.
func NormalizeEnum(raw string, allowed []string) (string, bool) {
	v := strings.TrimSpace(raw)
	if canon, ok := basisAliases[strings.ToLower(v)]; ok {
		for _, a := range allowed {
			if a == canon {
				return canon, true
			}
		}
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return a, true
		}
	}
	return "", false
}

// Registry holds the static schemas for the four dataset kinds. It is
// immutable after construction.
type Registry struct {
	datasets map[Kind]*Dataset
}

// Dataset returns the schema for the given kind, or nil.
func (r *Registry) Dataset(kind Kind) *Dataset {
	return r.datasets[kind]
}

// All returns the datasets in canonical kind order.
func (r *Registry) All() []*Dataset {
	out := make([]*Dataset, 0, len(r.datasets))
	for _, k := range AllKinds() {
		out = append(out, r.datasets[k])
	}
	return out
}

// NewRegistry builds the schema registry for the four dataset kinds.
func NewRegistry() *Registry {
	datasets := map[Kind]*Dataset{
		KindInfluencers: {
			Kind:  KindInfluencers,
			Table: "influencers",
			Fields: []Field{
				{Name: "id", Type: "string", Required: true, NaturalKey: true},
				{Name: "name", Type: "string", Required: true},
				{Name: "category", Type: "string", Required: true},
				{Name: "gender", Type: "string", Required: true},
				{Name: "follower_count", Type: "int", Required: true},
				{Name: "platform", Type: "string", Required: true, Enum: Platforms},
			},
		},
		KindPosts: {
			Kind:  KindPosts,
			Table: "posts",
			Fields: []Field{
				{Name: "influencer_id", Type: "string", Required: true, NaturalKey: true},
				{Name: "platform", Type: "string", Required: true, Enum: Platforms},
				{Name: "date", Type: "date", Required: true},
				{Name: "url", Type: "text", Required: true, NaturalKey: true},
				{Name: "caption", Type: "text", Nullable: true},
				{Name: "reach", Type: "int", Required: true},
				{Name: "likes", Type: "int", Required: true},
				{Name: "comments", Type: "int", Required: true},
			},
		},
		KindTracking: {
			Kind:  KindTracking,
			Table: "tracking_records",
			Fields: []Field{
				{Name: "influencer_id", Type: "string", Required: true, NaturalKey: true},
				{Name: "campaign", Type: "string", Required: true, NaturalKey: true},
				{Name: "product", Type: "string", Required: true, NaturalKey: true},
				{Name: "brand", Type: "string", Required: true},
				{Name: "date", Type: "date", Required: true, NaturalKey: true},
				{Name: "orders", Type: "int", Required: true},
				{Name: "revenue", Type: "decimal", Required: true, Precision: 2},
			},
		},
		KindPayouts: {
			Kind:  KindPayouts,
			Table: "payouts",
			Fields: []Field{
				{Name: "influencer_id", Type: "string", Required: true, NaturalKey: true},
				{Name: "basis", Type: "string", Required: true, Enum: PayoutBases, NaturalKey: true},
				{Name: "rate", Type: "decimal", Required: true, Precision: 2},
				{Name: "orders", Type: "int", Nullable: true},
				{Name: "total_payout", Type: "decimal", Precision: 2, Nullable: true},
			},
		},
	}
	return &Registry{datasets: datasets}
}
