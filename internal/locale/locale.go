// Package locale holds the operator-facing text in each supported language.
package locale

import (
	"golang.org/x/text/language"
)

// Messages is the text shown to the operator.
type Messages struct {
	Tag            language.Tag
	EnterYaw       string // heading prompt
	InvalidNumber  string
	ClickStart     string
	ClickEnd       string
	StartLabel     string
	EndLabel       string
	Planned        string // formatted with the path word, length and sample count
	PlanningFailed string // formatted with the error
	ResetHint      string
	Probe          string // formatted with index, x, y and heading in degrees
}

var english = Messages{
	Tag:            language.English,
	EnterYaw:       "Enter yaw (degrees): ",
	InvalidNumber:  "Invalid input. Please enter a number.",
	ClickStart:     "Click the start point.",
	ClickEnd:       "Click the end point.",
	StartLabel:     "Start",
	EndLabel:       "End",
	Planned:        "Path %s: length %.2f, %d samples.",
	PlanningFailed: "Planning failed: %v. Click a new start point.",
	ResetHint:      "Press r to plan another path, q to quit.",
	Probe:          "sample %d at (%.2f, %.2f) heading %.1f°",
}

var turkish = Messages{
	Tag:            language.Turkish,
	EnterYaw:       "Yaw değerini girin (derece): ",
	InvalidNumber:  "Geçersiz giriş. Lütfen bir sayı girin.",
	ClickStart:     "Başlangıç noktasına tıklayın.",
	ClickEnd:       "Bitiş noktasına tıklayın.",
	StartLabel:     "Başlangıç",
	EndLabel:       "Bitiş",
	Planned:        "Yol %s: uzunluk %.2f, %d örnek.",
	PlanningFailed: "Yol hesaplanamadı: %v. Yeni bir başlangıç noktasına tıklayın.",
	ResetHint:      "Yeni yol için r, çıkmak için q tuşuna basın.",
	Probe:          "örnek %d (%.2f, %.2f) yön %.1f°",
}

var (
	supported = []Messages{english, turkish}
	matcher   = language.NewMatcher([]language.Tag{language.English, language.Turkish})
)

// For returns the messages best matching lang, a BCP 47 tag such as "tr" or "en-GB".
// Unknown or empty tags fall back to English.
func For(lang string) Messages {
	_, idx := language.MatchStrings(matcher, lang)
	return supported[idx]
}

// Default returns the English messages.
func Default() Messages {
	return english
}
