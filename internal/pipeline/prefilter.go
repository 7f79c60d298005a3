package pipeline

import (
	"log"
	"regexp"
	"strings"
	"unicode"

	"github.com/sadhaka-labs/leadstream/internal/models"
)

// SkipReason explains why the pre-filter rejected a comment.
type SkipReason string

const (
	ReasonEmpty      SkipReason = "empty"
	ReasonTooShort   SkipReason = "too_short"
	ReasonEmojiOnly  SkipReason = "emoji_only"
	ReasonPraiseOnly SkipReason = "praise_only"
	ReasonNoContent  SkipReason = "no_meaningful_content"
	ReasonPassed     SkipReason = "passed"
)

var wordPattern = regexp.MustCompile(`\w+`)

// praiseOnlyWords are generic positive words with no action intent.
var praiseOnlyWords = newSet(
	"namaskaram", "amazing", "thank", "thanks", "love", "loved",
	"great", "wow", "nice", "good", "beautiful", "powerful",
	"first", "om", "namaste", "jai", "bless", "blessed",
	"fantastic", "awesome", "excellent", "wonderful", "perfect",
	"sadhguru", "video", "watching", "from", "india", "pakistan",
	"nepal", "bangladesh", "country", "city", "state",
)

// fillerWords are removed before the praise-only check.
var fillerWords = newSet(
	"the", "a", "an", "is", "are", "was", "were", "be", "been",
	"this", "that", "these", "those", "so", "very", "much",
	"from", "to", "in", "on", "at", "for", "with", "by",
)

// actionVerbs indicate meaningful engagement.
var actionVerbs = newSet(
	"want", "need", "help", "how", "can", "will", "should",
	"would", "could", "may", "might", "struggling", "struggle",
	"feeling", "feel", "felt", "experiencing", "experience",
	"suffering", "suffer", "dealing", "deal", "seeking", "seek",
	"looking", "look", "trying", "try", "learning", "learn",
	"doing", "do", "practicing", "practice", "practise",
	"stopped", "stop", "quit", "started", "start", "begin",
	"register", "enroll", "join", "sign", "signup",
	"pain", "hurt", "ache", "anxiety", "depression", "stress",
	"confused", "lost", "empty", "transformation",
)

// painKeywords bypass the no-meaningful-content rejection so borderline
// leads are never dropped silently.
var painKeywords = newSet(
	"pain", "hurt", "ache", "anxiety", "depression", "stress",
	"suffering", "struggle", "problem", "issue", "difficulty",
	"lost", "confused", "empty", "purpose", "meaning",
)

func newSet(words ...string) map[string]bool {
	s := make(map[string]bool, len(words))
	for _, w := range words {
		s[w] = true
	}
	return s
}

// PreFilter rejects low-quality comments before the expensive AI classifier.
type PreFilter struct{}

func NewPreFilter() *PreFilter {
	return &PreFilter{}
}

// ShouldSkip applies the rejection rules in fixed precedence order; the
// first matching rule wins.
func (f *PreFilter) ShouldSkip(text string) (bool, SkipReason) {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return true, ReasonEmpty
	}

	// Emoji-only is checked before the length rule: an emoji string splits
	// into very few tokens and would otherwise always read as too_short.
	if emojiOnly(clean) {
		return true, ReasonEmojiOnly
	}

	if len(strings.Fields(clean)) < 4 {
		return true, ReasonTooShort
	}

	lower := strings.ToLower(clean)
	if isPraiseOnly(lower) {
		return true, ReasonPraiseOnly
	}

	if !hasActionVerb(lower) {
		// A question mark or pain keyword keeps a borderline comment in.
		if !strings.Contains(clean, "?") && !hasPainKeyword(lower) {
			return true, ReasonNoContent
		}
	}

	return false, ReasonPassed
}

// emojiOnly reports whether the text consists solely of emoji, punctuation
// and whitespace code points.
func emojiOnly(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isPraiseOnly(lower string) bool {
	meaningful := make(map[string]bool)
	for _, w := range wordPattern.FindAllString(lower, -1) {
		if !fillerWords[w] {
			meaningful[w] = true
		}
	}
	if len(meaningful) == 0 {
		return false
	}
	for w := range meaningful {
		if !praiseOnlyWords[w] {
			return false
		}
	}
	return true
}

func hasActionVerb(lower string) bool {
	for _, w := range wordPattern.FindAllString(lower, -1) {
		if actionVerbs[w] {
			return true
		}
	}
	return false
}

func hasPainKeyword(lower string) bool {
	for _, w := range wordPattern.FindAllString(lower, -1) {
		if painKeywords[w] {
			return true
		}
	}
	return false
}

// PreFilterStats aggregates batch results. The pass rate is the system's
// cost-reduction metric.
type PreFilterStats struct {
	Total   int
	Passed  int
	Skipped map[SkipReason]int
}

// PassRate returns the fraction of comments that passed, in [0,1].
func (s PreFilterStats) PassRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Total)
}

// FilterBatch annotates every comment with its pre-filter status and returns
// the passing subset in input order, plus aggregate counts per reason.
func (f *PreFilter) FilterBatch(comments []*models.Comment) ([]*models.Comment, PreFilterStats) {
	stats := PreFilterStats{
		Total:   len(comments),
		Skipped: make(map[SkipReason]int),
	}

	var passed []*models.Comment
	for _, c := range comments {
		skip, reason := f.ShouldSkip(c.Text)
		if skip {
			stats.Skipped[reason]++
			c.PrefilterStatus = "skipped_" + string(reason)
			continue
		}
		stats.Passed++
		c.PrefilterStatus = string(ReasonPassed)
		passed = append(passed, c)
	}

	log.Printf("Pre-filter: %d/%d passed (%.1f%% cost reduction)",
		stats.Passed, stats.Total, (1-stats.PassRate())*100)
	return passed, stats
}
