package store

import "testing"

func TestClientRatingAverage(t *testing.T) {
	tests := []struct {
		name      string
		apps      []Application
		wantAvg   float64
		wantCount int
	}{
		{
			name: "averages only rated records",
			apps: []Application{
				{ClientRating: 4},
				{ClientRating: 5},
				{ClientRating: 0},
			},
			wantAvg:   4.5,
			wantCount: 2,
		},
		{
			name: "counts a client rating before the freelancer rates back",
			apps: []Application{
				{ClientRating: 3, Rated: false},
			},
			wantAvg:   3,
			wantCount: 1,
		},
		{
			name:      "no ratings yet",
			apps:      []Application{{}, {}},
			wantAvg:   0,
			wantCount: 0,
		},
		{
			name:      "empty",
			apps:      nil,
			wantAvg:   0,
			wantCount: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avg, count := clientRatingAverage(tt.apps)
			if avg != tt.wantAvg || count != tt.wantCount {
				t.Errorf("clientRatingAverage() = (%v, %d), want (%v, %d)", avg, count, tt.wantAvg, tt.wantCount)
			}
		})
	}
}
