package session

import (
	"time"

	"campaigniq-backend/internal/dataset"
)

// LoadSample replaces the session tables with the built-in demonstration
// fixture. The repository is not touched; call SaveAll to persist.
func (m *Manager) LoadSample() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables = SampleTables()
}

func date(y int, mo time.Month, d int) time.Time {
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func intp(n int) *int { return &n }

// SampleTables returns the deterministic first-run fixture: eight
// influencers across the supported platforms, a month of posts and tracking,
// and payouts covering both bases — including one influencer with tracked
// revenue but no payout row, so the null-ROI path shows up in the demo.
func SampleTables() *dataset.Tables {
	return &dataset.Tables{
		Influencers: []dataset.Influencer{
			{ID: "INF001", Name: "Asha Mehta", Category: "Fitness", Gender: "female", FollowerCount: 850000, Platform: "Instagram"},
			{ID: "INF002", Name: "Ben Carter", Category: "Tech", Gender: "male", FollowerCount: 420000, Platform: "YouTube"},
			{ID: "INF003", Name: "Carla Diaz", Category: "Beauty", Gender: "female", FollowerCount: 1200000, Platform: "TikTok"},
			{ID: "INF004", Name: "Dev Patel", Category: "Fitness", Gender: "male", FollowerCount: 95000, Platform: "Instagram"},
			{ID: "INF005", Name: "Elena Voss", Category: "Fashion", Gender: "female", FollowerCount: 2300000, Platform: "Instagram"},
			{ID: "INF006", Name: "Farid Khan", Category: "Tech", Gender: "male", FollowerCount: 8000, Platform: "Twitter"},
			{ID: "INF007", Name: "Grace Lin", Category: "Food", Gender: "female", FollowerCount: 310000, Platform: "YouTube"},
			{ID: "INF008", Name: "Hugo Brandt", Category: "Business", Gender: "male", FollowerCount: 150000, Platform: "LinkedIn"},
		},
		Posts: []dataset.Post{
			{InfluencerID: "INF001", Platform: "Instagram", Date: date(2025, 6, 2), URL: "https://instagram.com/p/asha-1", Caption: "Summer shred starts now", Reach: 320000, Likes: 45000, Comments: 1800},
			{InfluencerID: "INF001", Platform: "Instagram", Date: date(2025, 6, 16), URL: "https://instagram.com/p/asha-2", Caption: "Protein pancakes", Reach: 280000, Likes: 38000, Comments: 1500},
			{InfluencerID: "INF002", Platform: "YouTube", Date: date(2025, 6, 5), URL: "https://youtube.com/watch?v=ben-1", Caption: "Smartwatch teardown", Reach: 190000, Likes: 21000, Comments: 3200},
			{InfluencerID: "INF003", Platform: "TikTok", Date: date(2025, 6, 8), URL: "https://tiktok.com/@carla/1", Caption: "GRWM", Reach: 900000, Likes: 140000, Comments: 5100},
			{InfluencerID: "INF004", Platform: "Instagram", Date: date(2025, 6, 10), URL: "https://instagram.com/p/dev-1", Caption: "Home gym tour", Reach: 40000, Likes: 5200, Comments: 240},
			{InfluencerID: "INF005", Platform: "Instagram", Date: date(2025, 6, 12), URL: "https://instagram.com/p/elena-1", Caption: "Monsoon lookbook", Reach: 1100000, Likes: 160000, Comments: 6000},
			{InfluencerID: "INF007", Platform: "YouTube", Date: date(2025, 6, 20), URL: "https://youtube.com/watch?v=grace-1", Caption: "30-minute meal prep", Reach: 120000, Likes: 9800, Comments: 1100},
			{InfluencerID: "INF008", Platform: "LinkedIn", Date: date(2025, 6, 22), URL: "https://linkedin.com/posts/hugo-1", Caption: "Scaling a D2C brand", Reach: 60000, Likes: 2400, Comments: 310},
		},
		Tracking: []dataset.TrackingRecord{
			{InfluencerID: "INF001", Campaign: "SummerShred", Product: "Whey Protein", Brand: "MuscleBlaze", Date: date(2025, 6, 3), Orders: 240, Revenue: 36000},
			{InfluencerID: "INF001", Campaign: "SummerShred", Product: "Creatine", Brand: "MuscleBlaze", Date: date(2025, 6, 17), Orders: 110, Revenue: 14300},
			{InfluencerID: "INF002", Campaign: "GadgetDrop", Product: "Smartwatch", Brand: "Boltt", Date: date(2025, 6, 6), Orders: 85, Revenue: 42500},
			{InfluencerID: "INF003", Campaign: "GlowUp", Product: "Serum", Brand: "Plum", Date: date(2025, 6, 9), Orders: 630, Revenue: 56700},
			{InfluencerID: "INF004", Campaign: "SummerShred", Product: "Whey Protein", Brand: "MuscleBlaze", Date: date(2025, 6, 11), Orders: 35, Revenue: 5250},
			{InfluencerID: "INF005", Campaign: "MonsoonEdit", Product: "Kurta Set", Brand: "Libas", Date: date(2025, 6, 13), Orders: 410, Revenue: 82000},
			{InfluencerID: "INF006", Campaign: "GadgetDrop", Product: "Earbuds", Brand: "Boltt", Date: date(2025, 6, 15), Orders: 6, Revenue: 900},
			{InfluencerID: "INF007", Campaign: "KitchenEssentials", Product: "Air Fryer", Brand: "Wonderchef", Date: date(2025, 6, 21), Orders: 95, Revenue: 47500},
		},
		Payouts: []dataset.Payout{
			{InfluencerID: "INF001", Basis: "per-order", Rate: 50, Orders: intp(350), TotalPayout: 17500},
			{InfluencerID: "INF002", Basis: "per-post", Rate: 15000, TotalPayout: 15000},
			{InfluencerID: "INF003", Basis: "per-order", Rate: 30, Orders: intp(630), TotalPayout: 18900},
			{InfluencerID: "INF004", Basis: "per-order", Rate: 40, TotalPayout: 0}, // orders absent: engine falls back to tracked orders
			{InfluencerID: "INF005", Basis: "per-post", Rate: 60000, TotalPayout: 60000},
			{InfluencerID: "INF006", Basis: "per-order", Rate: 25, Orders: intp(6), TotalPayout: 150},
			{InfluencerID: "INF008", Basis: "per-post", Rate: 8000, TotalPayout: 8000},
			// INF007 has revenue but no payout: ROI/ROAS stay null for her.
		},
	}
}
