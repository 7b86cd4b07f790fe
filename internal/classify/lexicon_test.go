package classify

import (
	"context"
	"testing"
)

func TestLexicon_SafeText(t *testing.T) {
	l := NewLexicon()

	tests := []struct {
		name  string
		input string
	}{
		{"plain message", "see you at the meeting tomorrow"},
		{"empty", ""},
		{"partial word no match", "this kindness is appreciated"},
		{"substring no match", "the vermintide game is fun"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := l.Classify(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("Classify(%q) error: %v", tt.input, err)
			}
			if result.Label != LabelSafe {
				t.Errorf("Classify(%q).Label = %q, want %q", tt.input, result.Label, LabelSafe)
			}
		})
	}
}

func TestLexicon_ToxicAndHate(t *testing.T) {
	l := NewLexicon()

	tests := []struct {
		name  string
		input string
		label string
	}{
		{"insult word", "you are an idiot", LabelToxic},
		{"case insensitive", "IDIOT", LabelToxic},
		{"with punctuation", "idiot, go away!", LabelToxic},
		{"threat phrase", "kill yourself now", LabelToxic},
		{"dehumanizing word", "they are subhuman", LabelHate},
		{"identity phrase", "go back to your country", LabelHate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := l.Classify(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("Classify(%q) error: %v", tt.input, err)
			}
			if result.Label != tt.label {
				t.Errorf("Classify(%q).Label = %q, want %q", tt.input, result.Label, tt.label)
			}
			if result.Confidence <= 0 || result.Confidence > 1 {
				t.Errorf("Classify(%q).Confidence = %v, want (0,1]", tt.input, result.Confidence)
			}
		})
	}
}

func TestLexicon_NoisyORReinforcement(t *testing.T) {
	l := newLexiconWithTerms([]term{
		{text: "weak", label: LabelToxic, weight: 0.5},
		{text: "weaker", label: LabelToxic, weight: 0.5},
	})

	single, _ := l.Classify(context.Background(), "weak")
	double, _ := l.Classify(context.Background(), "weak and weaker")

	if single.Confidence != 0.5 {
		t.Errorf("single match confidence = %v, want 0.5", single.Confidence)
	}
	if double.Confidence <= single.Confidence {
		t.Errorf("two matches (%v) should score above one (%v)", double.Confidence, single.Confidence)
	}
	if double.Confidence != 0.75 {
		t.Errorf("noisy-OR of two 0.5 terms = %v, want 0.75", double.Confidence)
	}
}

func TestLexicon_PhraseWordBoundaries(t *testing.T) {
	l := newLexiconWithTerms([]term{{text: "your kind", label: LabelHate, weight: 0.9}})

	matched, _ := l.Classify(context.Background(), "people like your kind")
	if matched.Label != LabelHate {
		t.Errorf("expected phrase match, got label %q", matched.Label)
	}

	unmatched, _ := l.Classify(context.Background(), "thanks for your kindness")
	if unmatched.Label != LabelSafe {
		t.Errorf("phrase must not match inside a longer word, got label %q", unmatched.Label)
	}
}

func TestLexicon_DominantLabelWins(t *testing.T) {
	l := newLexiconWithTerms([]term{
		{text: "mild", label: LabelToxic, weight: 0.4},
		{text: "severe", label: LabelHate, weight: 0.9},
	})

	result, _ := l.Classify(context.Background(), "mild and severe")
	if result.Label != LabelHate {
		t.Errorf("expected strongest label %q, got %q", LabelHate, result.Label)
	}
}
