package sentiment

import "testing"

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		label string
	}{
		{name: "positive", text: "The volunteers were very helpful and kind!", label: "positive"},
		{name: "negative", text: "Terrible experience, the upload form is broken.", label: "negative"},
		{name: "negated positive", text: "The pickup was not good", label: "negative"},
		{name: "negated negative", text: "Honestly it wasn't bad at all", label: "positive"},
		{name: "neutral", text: "I submitted a report on Monday near the market", label: "neutral"},
		{name: "empty", text: "", label: "neutral"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Analyze(tc.text)
			if got.Label() != tc.label {
				t.Fatalf("Analyze(%q) = %+v, label %q, want %q", tc.text, got, got.Label(), tc.label)
			}
			if got.Polarity < -1 || got.Polarity > 1 {
				t.Fatalf("polarity out of range: %v", got.Polarity)
			}
			if got.Subjectivity < 0 || got.Subjectivity > 1 {
				t.Fatalf("subjectivity out of range: %v", got.Subjectivity)
			}
		})
	}
}

func TestAnalyzeNeutralScoresZero(t *testing.T) {
	if got := Analyze("the dog sat under the bench"); got != (Score{}) {
		t.Fatalf("expected zero score, got %+v", got)
	}
}

func TestIntensifierStrengthens(t *testing.T) {
	plain := Analyze("good")
	strong := Analyze("very good")
	if strong.Polarity <= plain.Polarity {
		t.Fatalf("intensified polarity %v should exceed %v", strong.Polarity, plain.Polarity)
	}
}

func TestPolarityIsClamped(t *testing.T) {
	got := Analyze("extremely excellent")
	if got.Polarity != 1 {
		t.Fatalf("polarity = %v, want 1", got.Polarity)
	}
}
