package memory

import "testing"

func TestRuleExtractor(t *testing.T) {
	t.Parallel()

	extractor := NewRuleExtractor()

	tests := []struct {
		name     string
		text     string
		wantKey  string
		wantCat  Category
		wantVal  string
		wantNone bool
	}{
		{name: "name", text: "Hi, my name is Alice.", wantKey: "name", wantCat: CategoryPersonal, wantVal: "Alice"},
		{name: "nickname", text: "please call me Al", wantKey: "nickname", wantCat: CategoryPersonal, wantVal: "Al"},
		{name: "location", text: "I live in Berlin", wantKey: "location", wantCat: CategoryPersonal, wantVal: "Berlin"},
		{name: "occupation as", text: "I work as a developer", wantKey: "occupation", wantCat: CategoryContext, wantVal: "developer"},
		{name: "occupation at", text: "i work at Globex", wantKey: "occupation", wantCat: CategoryContext, wantVal: "Globex"},
		{name: "likes", text: "I like strong coffee", wantKey: "likes", wantCat: CategoryPreference, wantVal: "strong coffee"},
		{name: "dislikes", text: "I hate mornings", wantKey: "dislikes", wantCat: CategoryPreference, wantVal: "mornings"},
		{name: "allergy", text: "I'm allergic to peanuts", wantKey: "allergies", wantCat: CategoryFact, wantVal: "peanuts"},
		{name: "case insensitive", text: "MY NAME IS BOB", wantKey: "name", wantCat: CategoryPersonal, wantVal: "BOB"},
		{name: "no match", text: "what is the weather today?", wantNone: true},
		{name: "empty", text: "   ", wantNone: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := extractor.ExtractFacts(tt.text)
			if tt.wantNone {
				if len(got) != 0 {
					t.Fatalf("expected no candidates, got %+v", got)
				}
				return
			}
			found := false
			for _, c := range got {
				if c.Key == tt.wantKey {
					found = true
					if c.Category != tt.wantCat {
						t.Fatalf("category = %q, want %q", c.Category, tt.wantCat)
					}
					if c.Value != tt.wantVal {
						t.Fatalf("value = %q, want %q", c.Value, tt.wantVal)
					}
				}
			}
			if !found {
				t.Fatalf("no candidate with key %q in %+v", tt.wantKey, got)
			}
		})
	}
}

func TestRuleExtractor_MultipleFacts(t *testing.T) {
	t.Parallel()

	got := NewRuleExtractor().ExtractFacts("my name is Alice, I live in Berlin and I like tea")
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d: %+v", len(got), got)
	}
}
