package pipeline

import (
	"testing"

	"github.com/pemistahl/lingua-go"

	"horse.fit/tickerwire/internal/config"
)

func testLanguageService(t *testing.T) *Service {
	t.Helper()
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.Spanish,
			lingua.French,
			lingua.German,
			lingua.Portuguese,
		).
		Build()
	return &Service{
		cfg:      &config.Config{FeedLanguage: "en"},
		detector: detector,
	}
}

func TestLanguageAllowedEnglish(t *testing.T) {
	t.Parallel()

	svc := testLanguageService(t)
	if !svc.languageAllowed("The Federal Reserve held interest rates steady on Wednesday afternoon") {
		t.Fatal("English text rejected")
	}
}

func TestLanguageAllowedRejectsOtherLanguage(t *testing.T) {
	t.Parallel()

	svc := testLanguageService(t)
	if svc.languageAllowed("El presidente anunció nuevas medidas económicas para el próximo año fiscal") {
		t.Fatal("Spanish text accepted")
	}
}

func TestLanguageAllowedShortTextPasses(t *testing.T) {
	t.Parallel()

	svc := testLanguageService(t)
	if !svc.languageAllowed("Fed cut") {
		t.Fatal("short text must pass unfiltered")
	}
}

func TestLanguageAllowedNilDetector(t *testing.T) {
	t.Parallel()

	svc := &Service{cfg: &config.Config{FeedLanguage: "en"}}
	if !svc.languageAllowed("cualquier texto en cualquier idioma debería pasar sin detector") {
		t.Fatal("nil detector must allow everything")
	}
}
