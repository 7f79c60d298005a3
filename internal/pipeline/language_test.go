package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLanguageDetect(t *testing.T) {
	f := NewLanguageFilter()

	t.Run("english", func(t *testing.T) {
		code := f.Detect("I have been struggling with anxiety for many years and want help")
		assert.Equal(t, "en", code)
	})

	t.Run("hindi", func(t *testing.T) {
		code := f.Detect("मुझे ध्यान करना बहुत अच्छा लगता है और मैं रोज़ अभ्यास करता हूँ")
		assert.Equal(t, "hi", code)
	})

	t.Run("spanish is detected but unsupported", func(t *testing.T) {
		code := f.Detect("Muchas gracias por este video tan hermoso, me encanta la meditación")
		assert.Equal(t, "es", code)
		assert.False(t, f.Supported(code))
	})

	t.Run("empty text", func(t *testing.T) {
		assert.Equal(t, LanguageUnknown, f.Detect("   "))
	})
}

func TestLanguageSupported(t *testing.T) {
	f := NewLanguageFilter()

	assert.True(t, f.Supported("en"))
	assert.True(t, f.Supported("hi"))
	assert.True(t, f.Supported("mr"))
	assert.False(t, f.Supported("es"))
	assert.False(t, f.Supported(LanguageUnknown))
}

func TestLanguageDetectorUnavailable(t *testing.T) {
	f := &LanguageFilter{}

	assert.Equal(t, DefaultLanguage, f.Detect("some comment text here"))
	assert.Equal(t, LanguageUnknown, f.Detect(""))
}
