package extract

import (
	"reflect"
	"testing"
)

func TestSignificantWords(t *testing.T) {
	words := SignificantWords("The committee reviewed the annual budget, et les chiffres du budget.")

	for _, want := range []string{"committee", "reviewed", "annual", "budget", "chiffres"} {
		if _, ok := words[want]; !ok {
			t.Errorf("expected %q in significant words, got %v", want, words)
		}
	}
	// Stopwords and short tokens must be gone
	for _, banned := range []string{"the", "et", "les", "du"} {
		if _, ok := words[banned]; ok {
			t.Errorf("stopword %q leaked into significant words", banned)
		}
	}
}

func TestSignificantWords_LengthThreshold(t *testing.T) {
	// "ab" (len 2) excluded, "abc" (len 3) kept
	words := SignificantWords("ab abc")
	if _, ok := words["ab"]; ok {
		t.Error("two-character token should be excluded")
	}
	if _, ok := words["abc"]; !ok {
		t.Error("three-character token should be kept")
	}
}

func TestKeywords_RankingAndThreshold(t *testing.T) {
	text := "budget budget budget committee committee rules tree tree tree tree"
	got := Keywords(text, 3)

	// "tree" (len 4) appears 4x, "budget" 3x, "committee" 2x; "rules" drops off at topN=3
	want := []string{"tree", "budget", "committee"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Keywords() = %v, want %v", got, want)
	}
}

func TestKeywords_Deterministic(t *testing.T) {
	text := "alpha beta gamma delta alpha beta gamma delta"
	first := Keywords(text, 10)
	for i := 0; i < 5; i++ {
		if got := Keywords(text, 10); !reflect.DeepEqual(got, first) {
			t.Fatalf("ranking not deterministic: %v vs %v", got, first)
		}
	}
}

func TestKeywords_ExcludesShortTokens(t *testing.T) {
	// "data" has length 4 and is kept; "gdp" (3) is below the query threshold
	got := Keywords("data gdp data gdp gdp", 10)
	if !reflect.DeepEqual(got, []string{"data"}) {
		t.Errorf("Keywords() = %v, want [data]", got)
	}
}

func TestEntities_Dates(t *testing.T) {
	entities := Entities("The report was published 12 January 2020, revised in March 2021, and archived in 1999.")

	for _, want := range []string{"12 january 2020", "march 2021", "1999"} {
		if _, ok := entities[want]; !ok {
			t.Errorf("expected date entity %q, got %v", want, entities)
		}
	}
}

func TestEntities_ProperNouns(t *testing.T) {
	entities := Entities("Yesterday the delegation met Marie Dubois at the Banque de France headquarters.")

	for _, want := range []string{"marie dubois", "banque de france"} {
		if _, ok := entities[want]; !ok {
			t.Errorf("expected proper-noun entity %q, got %v", want, entities)
		}
	}
	// "Yesterday" starts the sentence: ordinary sentence case, not an entity
	if _, ok := entities["yesterday"]; ok {
		t.Error("sentence-initial capitalized token should not be an entity")
	}
}

func TestEntities_Percentages(t *testing.T) {
	entities := Entities("Roughly 87% of the sample and 12.5% of the control group agreed.")

	if _, ok := entities["87%"]; !ok {
		t.Errorf("expected percentage entity 87%%, got %v", entities)
	}
	if _, ok := entities["12.5%"]; !ok {
		t.Errorf("expected percentage entity 12.5%%, got %v", entities)
	}
}

func TestEntities_Deterministic(t *testing.T) {
	text := "Marie Dubois presented 45% of the findings in March 2021."
	first := Entities(text)
	for i := 0; i < 5; i++ {
		if got := Entities(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("entity extraction not deterministic")
		}
	}
}
