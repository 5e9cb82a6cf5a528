// Package sentiment scores short feedback texts with a small word lexicon.
// Polarity is in [-1, 1] and subjectivity in [0, 1]; texts without any known
// opinion word score 0 on both.
package sentiment

import (
	"math"
	"strings"
	"unicode"
)

// Score is the result of analysing a text.
type Score struct {
	Polarity     float64 `json:"polarity"`
	Subjectivity float64 `json:"subjectivity"`
}

// Label buckets a polarity into positive, negative or neutral.
func (s Score) Label() string {
	switch {
	case s.Polarity > 0.05:
		return "positive"
	case s.Polarity < -0.05:
		return "negative"
	default:
		return "neutral"
	}
}

type entry struct {
	polarity     float64
	subjectivity float64
}

var lexicon = map[string]entry{
	"good":         {0.7, 0.6},
	"great":        {0.8, 0.75},
	"excellent":    {1.0, 1.0},
	"amazing":      {0.6, 0.9},
	"awesome":      {1.0, 1.0},
	"wonderful":    {1.0, 1.0},
	"fantastic":    {0.4, 0.9},
	"love":         {0.5, 0.6},
	"loved":        {0.7, 0.8},
	"lovely":       {0.5, 0.75},
	"nice":         {0.6, 1.0},
	"happy":        {0.8, 1.0},
	"helpful":      {0.5, 0.5},
	"kind":         {0.6, 0.9},
	"easy":         {0.43, 0.83},
	"useful":       {0.3, 0.0},
	"thanks":       {0.2, 0.2},
	"thank":        {0.2, 0.2},
	"best":         {1.0, 0.3},
	"better":       {0.5, 0.5},
	"beautiful":    {0.85, 1.0},
	"safe":         {0.5, 0.5},
	"fast":         {0.2, 0.6},
	"quick":        {0.33, 0.5},
	"caring":       {0.5, 0.6},
	"grateful":     {0.6, 0.8},
	"bad":          {-0.7, 0.67},
	"poor":         {-0.4, 0.6},
	"terrible":     {-1.0, 1.0},
	"awful":        {-1.0, 1.0},
	"horrible":     {-1.0, 1.0},
	"worst":        {-1.0, 1.0},
	"worse":        {-0.4, 0.6},
	"hate":         {-0.8, 0.9},
	"sad":          {-0.5, 1.0},
	"slow":         {-0.3, 0.39},
	"broken":       {-0.4, 0.4},
	"difficult":    {-0.5, 1.0},
	"confusing":    {-0.3, 0.7},
	"useless":      {-0.5, 0.2},
	"angry":        {-0.5, 1.0},
	"cruel":        {-1.0, 1.0},
	"dirty":        {-0.6, 0.8},
	"hungry":       {-0.3, 0.5},
	"injured":      {-0.4, 0.5},
	"disappointed": {-0.75, 0.75},
}

var intensifiers = map[string]float64{
	"very":       1.3,
	"really":     1.2,
	"extremely":  1.5,
	"so":         1.2,
	"super":      1.3,
	"quite":      1.1,
	"incredibly": 1.5,
}

var negations = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "n't": {}, "dont": {}, "don't": {}, "isnt": {}, "isn't": {},
	"wasnt": {}, "wasn't": {}, "cannot": {}, "cant": {}, "can't": {}, "hardly": {},
}

// negationFactor follows the common convention of flipping and halving a negated opinion.
const negationFactor = -0.5

// Analyze scores text.
func Analyze(text string) Score {
	tokens := tokenize(text)
	var (
		polSum, subjSum float64
		n               int
	)
	for i, tok := range tokens {
		e, ok := lexicon[tok]
		if !ok {
			continue
		}
		pol, subj := e.polarity, e.subjectivity
		for j := i - 1; j >= 0 && j >= i-2; j-- {
			prev := tokens[j]
			if f, ok := intensifiers[prev]; ok {
				pol *= f
				subj *= f
				continue
			}
			if _, ok := negations[prev]; ok {
				pol *= negationFactor
				break
			}
			break
		}
		polSum += clamp(pol, -1, 1)
		subjSum += clamp(subj, 0, 1)
		n++
	}
	if n == 0 {
		return Score{}
	}
	return Score{
		Polarity:     round(clamp(polSum/float64(n), -1, 1)),
		Subjectivity: round(clamp(subjSum/float64(n), 0, 1)),
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64) float64 {
	return math.Round(v*1000) / 1000
}
