package usecase

import (
	"testing"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.LanguageCode
	}{
		{name: "english", text: "What is EMI?", want: domain.LangEnglish},
		{name: "empty", text: "", want: domain.LangEnglish},
		{name: "digits and punctuation", text: "12345 ?!", want: domain.LangEnglish},
		{name: "hindi", text: "ईएमआई क्या है?", want: domain.LangHindi},
		{name: "telugu", text: "ఈఎంఐ అంటే ఏమిటి?", want: domain.LangTelugu},
		{name: "tamil", text: "இஎம்ஐ என்றால் என்ன?", want: domain.LangTamil},
		{name: "bengali", text: "ইএমআই কী?", want: domain.LangBengali},
		{name: "kannada", text: "ಇಎಂಐ ಎಂದರೇನು?", want: domain.LangKannada},
		{name: "malayalam", text: "ഇഎംഐ എന്താണ്?", want: domain.LangMalayalam},
		{name: "gujarati", text: "ઇએમઆઇ શું છે?", want: domain.LangGujarati},
		{name: "punjabi", text: "ਈਐਮਆਈ ਕੀ ਹੈ?", want: domain.LangPunjabi},
		{name: "mixed picks first indic", text: "What is ईएमआई and ఈఎంఐ", want: domain.LangHindi},
		{name: "marathi reads as hindi", text: "ईएमआय म्हणजे काय?", want: domain.LangHindi},
		{name: "invalid utf8", text: "abc\xff\xfe", want: domain.LangEnglish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectLanguage(tt.text); got != tt.want {
				t.Fatalf("DetectLanguage(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestDetectLanguageNeverReportsMarathi(t *testing.T) {
	for r := rune(0x0900); r <= 0x0D7F; r++ {
		if got := DetectLanguage(string(r)); got == domain.LangMarathi {
			t.Fatalf("rune %U detected as marathi", r)
		}
	}
}

func TestDetectLanguageReturnsSupportedCode(t *testing.T) {
	for r := rune(0); r <= 0x0E00; r++ {
		if got := DetectLanguage(string(r)); !got.IsSupported() {
			t.Fatalf("rune %U detected as unsupported %q", r, got)
		}
	}
}
