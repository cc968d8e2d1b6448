package catalog

import "strings"

// Kind identifies one of the four dataset kinds a session holds.
type Kind string

const (
	KindInfluencers Kind = "influencers"
	KindPosts       Kind = "posts"
	KindTracking    Kind = "tracking"
	KindPayouts     Kind = "payouts"
)

func (k Kind) String() string { return string(k) }

// AllKinds returns the kinds in their canonical order.
func AllKinds() []Kind {
	return []Kind{KindInfluencers, KindPosts, KindTracking, KindPayouts}
}

// ParseKind resolves a kind from user input. The plural canonical names and
// a few common aliases are accepted.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "influencers", "influencer":
		return KindInfluencers, true
	case "posts", "post":
		return KindPosts, true
	case "tracking", "tracking_data", "tracking_records":
		return KindTracking, true
	case "payouts", "payout":
		return KindPayouts, true
	}
	return "", false
}
