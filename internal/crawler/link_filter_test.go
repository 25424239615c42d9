package crawler

import (
	"reflect"
	"testing"
)

func TestFilter(t *testing.T) {
	links := []string{
		"https://example.com/",
		"https://example.com/homes/for_rent/1_p/",
		"https://example.com/homedetails/123_zpid/",
		"https://example.com/homes/for_rent/2_p/",
		"https://ads.example.net/click?x=1",
		"https://example.com/homes/for_rent/1_p/",
		"https://example.com/homes/for_sale/1_p/",
	}

	tests := []struct {
		name     string
		require  []string
		exclude  []string
		expected []string
	}{
		{
			name:     "No patterns keeps everything",
			expected: links,
		},
		{
			name:    "All required patterns must match",
			require: []string{"/homes/", "_p/$"},
			expected: []string{
				"https://example.com/homes/for_rent/1_p/",
				"https://example.com/homes/for_rent/2_p/",
				"https://example.com/homes/for_rent/1_p/",
				"https://example.com/homes/for_sale/1_p/",
			},
		},
		{
			name:    "Exclude wins over require",
			require: []string{"/homes/"},
			exclude: []string{"for_sale"},
			expected: []string{
				"https://example.com/homes/for_rent/1_p/",
				"https://example.com/homes/for_rent/2_p/",
				"https://example.com/homes/for_rent/1_p/",
			},
		},
		{
			name:     "Nothing matches",
			require:  []string{"/reviews/"},
			expected: []string{},
		},
		{
			name:     "Regex anchors",
			require:  []string{`^https://example\.com/homedetails/\d+_zpid/$`},
			expected: []string{"https://example.com/homedetails/123_zpid/"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pattern, err := CompilePattern(tt.require, tt.exclude)
			if err != nil {
				t.Fatalf("CompilePattern() error = %v", err)
			}

			got := Filter(links, pattern)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Filter() = %v, want %v", got, tt.expected)
			}

			// Filtering is idempotent
			again := Filter(got, pattern)
			if !reflect.DeepEqual(again, got) {
				t.Errorf("Filter(Filter()) = %v, want %v", again, got)
			}
		})
	}
}

func TestFilterNilPattern(t *testing.T) {
	links := []string{"a", "b", "a"}
	if got := Filter(links, nil); !reflect.DeepEqual(got, links) {
		t.Errorf("Filter() with nil pattern = %v, want %v", got, links)
	}
}

func TestCompilePatternInvalid(t *testing.T) {
	if _, err := CompilePattern([]string{"("}, nil); err == nil {
		t.Error("Expected error for invalid require pattern")
	}
	if _, err := CompilePattern(nil, []string{"[a-"}); err == nil {
		t.Error("Expected error for invalid exclude pattern")
	}
}
