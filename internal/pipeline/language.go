package pipeline

import (
	"log"
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// LanguageUnknown is returned when detection fails or is ambiguous.
const LanguageUnknown = "unknown"

// DefaultLanguage is assumed when the detector itself is unavailable.
const DefaultLanguage = "en"

// SupportedLanguages is the allow-list of ISO 639-1 codes that pass the
// language filter.
var SupportedLanguages = map[string]bool{
	"en": true,
	"hi": true,
	"mr": true,
}

// candidateLanguages is the set the detector discriminates between. It has to
// be wider than the allow-list or every comment would be forced into a
// supported language.
var candidateLanguages = []lingua.Language{
	lingua.English, lingua.Hindi, lingua.Marathi,
	lingua.Spanish, lingua.French, lingua.Portuguese, lingua.German,
	lingua.Arabic, lingua.Russian, lingua.Tamil, lingua.Telugu,
	lingua.Bengali, lingua.Urdu,
}

// LanguageFilter classifies comment text into a supported-language allow-list.
type LanguageFilter struct {
	detector lingua.LanguageDetector
	warnOnce sync.Once
}

func NewLanguageFilter() *LanguageFilter {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(candidateLanguages...).
		WithMinimumRelativeDistance(0.1).
		Build()
	return &LanguageFilter{detector: detector}
}

// Detect returns the ISO 639-1 code of the text, or LanguageUnknown when
// detection fails or the text is empty. When the detector is unavailable the
// default language is assumed so the pipeline never crashes on this stage.
func (f *LanguageFilter) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return LanguageUnknown
	}
	if f.detector == nil {
		f.warnOnce.Do(func() {
			log.Printf("Warning: language detector unavailable, assuming %q for all comments", DefaultLanguage)
		})
		return DefaultLanguage
	}

	lang, ok := f.detector.DetectLanguageOf(text)
	if !ok {
		return LanguageUnknown
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}

// Supported reports whether a detected language code passes the allow-list.
// Unknown and ambiguous detections are skipped, not treated as errors.
func (f *LanguageFilter) Supported(code string) bool {
	return SupportedLanguages[code]
}
