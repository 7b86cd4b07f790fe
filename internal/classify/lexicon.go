package classify

import (
	"context"
	"strings"
	"unicode"
)

// term is one lexicon entry: a word or multi-word phrase, the label it
// contributes to, and its weight in (0,1].
type term struct {
	text   string
	label  string
	weight float64
}

// defaultTerms is the built-in lexicon. Weights are per-term confidence
// contributions combined with a noisy-OR, so a single strong term is enough
// to cross the default 0.7 threshold while weak terms need reinforcement.
var defaultTerms = []term{
	// Insults and threats -> toxic.
	{"idiot", LabelToxic, 0.72},
	{"moron", LabelToxic, 0.72},
	{"imbecile", LabelToxic, 0.70},
	{"stupid", LabelToxic, 0.55},
	{"pathetic", LabelToxic, 0.50},
	{"loser", LabelToxic, 0.55},
	{"trash", LabelToxic, 0.45},
	{"garbage", LabelToxic, 0.45},
	{"shut up", LabelToxic, 0.60},
	{"kill yourself", LabelToxic, 0.97},
	{"nobody likes you", LabelToxic, 0.75},
	{"i will hurt you", LabelToxic, 0.92},
	{"i will find you", LabelToxic, 0.80},

	// Identity attacks and dehumanization -> hate.
	{"subhuman", LabelHate, 0.93},
	{"vermin", LabelHate, 0.85},
	{"parasite", LabelHate, 0.75},
	{"go back to your country", LabelHate, 0.95},
	{"your kind", LabelHate, 0.60},
	{"you people", LabelHate, 0.50},
	{"doesn't belong here", LabelHate, 0.72},
	{"should be exterminated", LabelHate, 0.98},
	{"inferior race", LabelHate, 0.97},
}

// Lexicon is a deterministic in-process classifier scoring messages against
// a weighted term list. It backs the classifier service and serves as the
// default adapter when no external model is configured. Safe for concurrent
// use: all state is read-only after construction.
type Lexicon struct {
	words   map[string]term // single-token terms, matched per token
	phrases []term          // multi-word terms, matched on normalized text
}

// NewLexicon builds a classifier over the built-in term list.
func NewLexicon() *Lexicon {
	return newLexiconWithTerms(defaultTerms)
}

// newLexiconWithTerms builds a classifier over a custom term list.
// Used by tests to isolate scoring behavior from the default lexicon.
func newLexiconWithTerms(terms []term) *Lexicon {
	l := &Lexicon{words: make(map[string]term)}
	for _, t := range terms {
		t.text = strings.ToLower(t.text)
		if strings.ContainsRune(t.text, ' ') {
			l.phrases = append(l.phrases, t)
		} else {
			l.words[t.text] = t
		}
	}
	return l
}

// Classify scores text and returns the dominant label with its confidence.
// Matched weights are combined per label as a noisy-OR
// (1 - product(1-w)), so repeated offenses raise confidence without ever
// reaching 1. Text with no matches is safe.
func (l *Lexicon) Classify(_ context.Context, text string) (Result, error) {
	normalized := normalize(text)

	// survival[label] is product(1 - weight) over matched terms.
	survival := map[string]float64{}

	for _, tok := range strings.Fields(normalized) {
		if t, ok := l.words[tok]; ok {
			mergeMatch(survival, t)
		}
	}
	for _, t := range l.phrases {
		if containsPhrase(normalized, t.text) {
			mergeMatch(survival, t)
		}
	}

	if len(survival) == 0 {
		return Result{Label: LabelSafe, Confidence: 0.99}, nil
	}

	best := Result{Label: LabelSafe}
	for label, surv := range survival {
		if conf := 1 - surv; conf > best.Confidence {
			best = Result{Label: label, Confidence: conf}
		}
	}
	return best, nil
}

func mergeMatch(survival map[string]float64, t term) {
	surv, ok := survival[t.label]
	if !ok {
		surv = 1
	}
	survival[t.label] = surv * (1 - t.weight)
}

// normalize lowercases text and replaces punctuation with spaces so token
// matching is unaffected by adjacent commas, quotes, etc.
func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '\'' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// containsPhrase reports whether phrase occurs in normalized text on word
// boundaries ("your kind" must not match "your kindness").
func containsPhrase(normalized, phrase string) bool {
	idx := 0
	for {
		i := strings.Index(normalized[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		startOK := start == 0 || normalized[start-1] == ' '
		endOK := end == len(normalized) || normalized[end] == ' '
		if startOK && endOK {
			return true
		}
		idx = start + 1
	}
}
