package pipeline

import (
	"log"
	"sort"
	"strings"

	"github.com/sadhaka-labs/leadstream/internal/models"
)

// Fixed keyword vocabularies, matched case-insensitively. Multi-word phrases
// are tried before their substrings so "back pain" is never shadowed by "pain".
var (
	physicalPainKeywords = []string{
		"back pain", "backpain", "knee pain", "kneepain", "neck pain", "neckpain",
		"stiffness", "stiff", "fatigue", "tired", "exhausted", "obesity", "obese",
		"thyroid", "spine", "spinal", "posture", "chronic pain", "body pain",
		"flexibility", "flexible", "injury", "injured", "sore", "ache", "aching",
	}

	mentalPainKeywords = []string{
		"anxiety", "anxious", "depression", "depressed", "stress", "stressed",
		"confusion", "confused", "anger", "angry", "overthinking", "overthink",
		"restless", "restlessness", "mental chaos", "worry", "worried", "fear",
		"fearful", "panic", "panicking", "overwhelm", "overwhelmed", "mental health",
		"emotional", "emotions", "mood", "sad", "sadness", "lonely", "loneliness",
	}

	disciplineKeywords = []string{
		"quit", "quitting", "stopped", "stop practicing", "cant stay consistent",
		"can't stay consistent", "lost motivation", "losing motivation", "discipline",
		"undisciplined", "irregular", "inconsistent", "struggle to practice",
		"struggling to practice", "gave up", "giving up", "difficult to continue",
		"hard to continue", "not practicing", "stopped doing",
	}

	spiritualKeywords = []string{
		"purpose", "life purpose", "transformation", "transform", "awakening",
		"awaken", "inner peace", "peace", "self-realization", "self realization",
		"enlightenment", "enlightened", "meaning", "meaningful", "meaningless",
		"seeking", "searching", "lost", "empty", "emptiness", "disconnected",
		"connection", "consciousness", "awareness", "spiritual", "spirituality",
		"soul", "divine", "truth", "liberation", "moksha", "bliss", "joy",
	}

	practiceKeywords = []string{
		"angamardana", "surya kriya", "surya shakti", "yogasanas", "yoga asanas",
		"shambhavi mahamudra", "shambhavi", "shakti chalana kriya", "hatha yoga",
		"sadhguru", "isha foundation", "isha kriya", "isha", "adiyogi",
		"inner engineering", "yogic practices", "meditation", "dhyanalinga",
		"bhuta shuddhi",
		// common misspellings
		"sambhavi", "shambavy",
	}
)

// KeywordDetector scans comment text for pain signals and practice mentions.
// Its output is advisory context for the AI classifier.
type KeywordDetector struct {
	physical   []string
	mental     []string
	discipline []string
	spiritual  []string
	practices  []string
}

func NewKeywordDetector() *KeywordDetector {
	return &KeywordDetector{
		physical:   longestFirst(physicalPainKeywords),
		mental:     longestFirst(mentalPainKeywords),
		discipline: longestFirst(disciplineKeywords),
		spiritual:  longestFirst(spiritualKeywords),
		practices:  longestFirst(practiceKeywords),
	}
}

func longestFirst(keywords []string) []string {
	sorted := make([]string, len(keywords))
	copy(sorted, keywords)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	return sorted
}

// Detect scans the text and returns per-category flags, deduplicated match
// lists, and the preliminary score and intent.
func (d *KeywordDetector) Detect(text string) *models.KeywordSignals {
	if strings.TrimSpace(text) == "" {
		return emptySignals()
	}

	lower := strings.ToLower(text)

	physical := matchCategory(lower, d.physical)
	mental := matchCategory(lower, d.mental)
	discipline := matchCategory(lower, d.discipline)
	spiritual := matchCategory(lower, d.spiritual)
	practices := matchCategory(lower, d.practices)

	// Presence, not count, drives the score: each matched category adds a
	// fixed weight, clamped to 10.
	score := 0
	if len(spiritual) > 0 {
		score += 4
	}
	if len(mental) > 0 {
		score += 3
	}
	if len(discipline) > 0 {
		score += 2
	}
	if len(physical) > 0 {
		score += 1
	}
	if score > 10 {
		score = 10
	}

	return &models.KeywordSignals{
		HasPhysicalPain:      len(physical) > 0,
		HasMentalPain:        len(mental) > 0,
		HasDisciplineIssue:   len(discipline) > 0,
		HasSpiritualLonging:  len(spiritual) > 0,
		PracticeMentions:     practices,
		KeywordsFound:        dedupe(physical, mental, discipline, spiritual, practices),
		PreliminaryPainScore: score,
		PreliminaryIntent:    preliminaryIntent(physical, mental, discipline, spiritual, practices),
	}
}

// matchCategory finds keyword occurrences longest-first, masking each match
// so a shorter keyword cannot re-match inside a longer phrase.
func matchCategory(lower string, keywords []string) []string {
	masked := []byte(lower)
	var found []string
	for _, kw := range keywords {
		matched := false
		for from := 0; ; {
			idx := strings.Index(string(masked[from:]), kw)
			if idx < 0 {
				break
			}
			start := from + idx
			for i := start; i < start+len(kw); i++ {
				masked[i] = 0
			}
			from = start + len(kw)
			matched = true
		}
		if matched {
			found = append(found, kw)
		}
	}
	return found
}

// preliminaryIntent applies the fixed tie-break order: a practice mention
// combined with spiritual, mental or discipline pain outranks everything.
func preliminaryIntent(physical, mental, discipline, spiritual, practices []string) models.IntentType {
	switch {
	case len(practices) > 0 && (len(spiritual) > 0 || len(mental) > 0 || len(discipline) > 0):
		return models.IntentPracticeAligned
	case len(spiritual) > 0:
		return models.IntentSpiritual
	case len(mental) > 0:
		return models.IntentMentalPain
	case len(discipline) > 0:
		return models.IntentDiscipline
	case len(physical) > 0:
		return models.IntentPhysicalPain
	default:
		return models.IntentLowIntent
	}
}

func dedupe(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, kw := range list {
			if !seen[kw] {
				seen[kw] = true
				out = append(out, kw)
			}
		}
	}
	return out
}

func emptySignals() *models.KeywordSignals {
	return &models.KeywordSignals{
		PracticeMentions:  []string{},
		KeywordsFound:     []string{},
		PreliminaryIntent: models.IntentLowIntent,
	}
}

// DetectBatch annotates each comment with its keyword signals.
func (d *KeywordDetector) DetectBatch(comments []*models.Comment) {
	practiceCount, spiritualCount, mentalCount := 0, 0, 0
	for _, c := range comments {
		c.Signals = d.Detect(c.Text)
		if len(c.Signals.PracticeMentions) > 0 {
			practiceCount++
		}
		if c.Signals.HasSpiritualLonging {
			spiritualCount++
		}
		if c.Signals.HasMentalPain {
			mentalCount++
		}
	}
	log.Printf("Keyword detection complete: practice=%d, spiritual=%d, mental=%d of %d comments",
		practiceCount, spiritualCount, mentalCount, len(comments))
}
