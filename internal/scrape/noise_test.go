package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripNoise(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "footer link cluster",
			raw:  "Jane Doe\nSoftware Engineer at Acme\nAbout\nAccessibility\nPrivacy Policy",
			want: "Jane Doe\nSoftware Engineer at Acme",
		},
		{
			name: "footer talent solutions variant",
			raw:  "Jane Doe\nSoftware Engineer\nAbout\nTalent Solutions\nCommunity Guidelines",
			want: "Jane Doe\nSoftware Engineer",
		},
		{
			name: "more profiles sidebar",
			raw:  "Experience\nAcme Corp 2019-2024\nMore profiles for you\nJohn Smith\nMary Jones",
			want: "Experience\nAcme Corp 2019-2024",
		},
		{
			name: "people also viewed",
			raw:  "Education\nState University\nPeople also viewed\nSomeone Else",
			want: "Education\nState University",
		},
		{
			name: "premium upsell",
			raw:  "Honors\nDean's List\nExplore premium profiles\nTry Premium for free",
			want: "Honors\nDean's List",
		},
		{
			name: "search limit notice",
			raw:  "Results\nYou've approached your profile search limit\nUpgrade to continue",
			want: "Results",
		},
		{
			name: "earliest marker wins",
			raw:  "Profile\nPeople also viewed\nNoise\nAbout\nAccessibility",
			want: "Profile",
		},
		{
			name: "profile about section survives",
			raw:  "About\nExperienced engineer with a decade in infrastructure.\nExperience\nAcme Corp",
			want: "About\nExperienced engineer with a decade in infrastructure.\nExperience\nAcme Corp",
		},
		{
			name: "no marker trims whitespace",
			raw:  "  \nJane Doe\nEngineer\n\n  ",
			want: "Jane Doe\nEngineer",
		},
		{
			name: "empty input",
			raw:  "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripNoise(tt.raw))
		})
	}
}

func TestStripNoiseMidLineMarkerIgnored(t *testing.T) {
	// Markers only match at line start; prose mentioning them is content.
	raw := "She wrote an article titled People also viewed and other stories"
	assert.Equal(t, raw, StripNoise(raw))
}
