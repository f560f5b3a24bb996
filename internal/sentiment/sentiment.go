package sentiment

import (
	"strings"

	"github.com/grassmudhorses/vader-go/lexicon"
	"github.com/grassmudhorses/vader-go/sentitext"
)

// Score is the bounded sentiment feature attached to a query. Compound is
// in [-1, 1]; Label is a coarse reading for prompt context. The score is
// informational only and never drives control flow.
type Score struct {
	Compound float64 `json:"compound"`
	Lexicon  float64 `json:"lexicon"`
	Rule     float64 `json:"rule"`
	Label    string  `json:"label"`
}

// Analyze blends two independent techniques: VADER's general valence
// lexicon and a small rule-based polarity over finance vocabulary that
// VADER does not cover. Empty input maps to a neutral score.
func Analyze(text string) Score {
	text = strings.TrimSpace(text)
	if text == "" {
		return Score{Label: "neutral"}
	}
	lex := sentitext.PolarityScore(sentitext.Parse(text, lexicon.DefaultLexicon)).Compound
	rule := financePolarity(text)
	compound := clamp(0.5*lex + 0.5*rule)
	return Score{
		Compound: compound,
		Lexicon:  lex,
		Rule:     rule,
		Label:    label(compound),
	}
}

var bullishTerms = map[string]float64{
	"buy": 1, "bullish": 1, "undervalued": 1, "upside": 1, "rally": 1,
	"growth": 0.6, "beat": 0.6, "outperform": 1, "upgrade": 0.8, "surge": 0.8,
	"profit": 0.6, "dividend": 0.4, "breakout": 0.8, "moon": 0.6,
}

var bearishTerms = map[string]float64{
	"sell": 1, "bearish": 1, "overvalued": 1, "downside": 1, "crash": 1,
	"miss": 0.6, "underperform": 1, "downgrade": 0.8, "plunge": 0.8,
	"loss": 0.6, "bankruptcy": 1, "bubble": 0.6, "short": 0.4, "dump": 0.8,
}

var negations = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "don't": {}, "dont": {},
	"won't": {}, "wont": {}, "isn't": {}, "isnt": {}, "hardly": {},
}

// financePolarity scores bullish/bearish vocabulary with single-token
// negation flipping. The result is normalized by hit count so long queries
// are not louder than short ones.
func financePolarity(text string) float64 {
	words := strings.Fields(strings.ToLower(text))
	var sum float64
	hits := 0
	for i, w := range words {
		w = strings.Trim(w, ".,!?;:\"'()")
		weight := 0.0
		if v, ok := bullishTerms[w]; ok {
			weight = v
		} else if v, ok := bearishTerms[w]; ok {
			weight = -v
		} else {
			continue
		}
		if i > 0 {
			prev := strings.Trim(words[i-1], ".,!?;:\"'()")
			if _, negated := negations[prev]; negated {
				weight = -weight
			}
		}
		sum += weight
		hits++
	}
	if hits == 0 {
		return 0
	}
	return clamp(sum / float64(hits))
}

func label(compound float64) string {
	switch {
	case compound >= 0.2:
		return "bullish"
	case compound <= -0.2:
		return "bearish"
	default:
		return "neutral"
	}
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
