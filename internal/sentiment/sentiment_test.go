package sentiment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnalyzeEmptyIsNeutral(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		s := Analyze(text)
		require.Equal(t, "neutral", s.Label)
		require.Zero(t, s.Compound)
	}
}

func TestAnalyzeBullishQuery(t *testing.T) {
	s := Analyze("Strong earnings beat, time to buy this undervalued rally")
	require.Equal(t, "bullish", s.Label)
	require.Greater(t, s.Compound, 0.0)
	require.Greater(t, s.Rule, 0.0)
}

func TestAnalyzeBearishQuery(t *testing.T) {
	s := Analyze("Sell before the crash, this overvalued bubble will plunge")
	require.Equal(t, "bearish", s.Label)
	require.Less(t, s.Compound, 0.0)
	require.Less(t, s.Rule, 0.0)
}

func TestAnalyzeNegationFlipsPolarity(t *testing.T) {
	straight := Analyze("buy")
	negated := Analyze("don't buy")
	require.Greater(t, straight.Rule, 0.0)
	require.Less(t, negated.Rule, 0.0)
}

func TestAnalyzeStaysBounded(t *testing.T) {
	bull := Analyze("buy buy buy bullish rally surge upside breakout outperform upgrade")
	require.LessOrEqual(t, bull.Compound, 1.0)
	require.GreaterOrEqual(t, bull.Compound, -1.0)

	bear := Analyze("sell sell crash plunge bankruptcy downgrade bearish dump overvalued")
	require.LessOrEqual(t, bear.Compound, 1.0)
	require.GreaterOrEqual(t, bear.Compound, -1.0)
}

func TestAnalyzeUnrelatedVocabularyScoresNoRuleHits(t *testing.T) {
	s := Analyze("what time does the market open on Monday")
	require.Zero(t, s.Rule)
}
