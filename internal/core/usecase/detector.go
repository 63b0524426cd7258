package usecase

import "github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"

type scriptRange struct {
	lang   domain.LanguageCode
	lo, hi rune
}

// Marathi shares Devanagari with Hindi and is never reported here.
var scriptRanges = []scriptRange{
	{lang: domain.LangHindi, lo: 0x0900, hi: 0x097F},
	{lang: domain.LangBengali, lo: 0x0980, hi: 0x09FF},
	{lang: domain.LangPunjabi, lo: 0x0A00, hi: 0x0A7F},
	{lang: domain.LangGujarati, lo: 0x0A80, hi: 0x0AFF},
	{lang: domain.LangTamil, lo: 0x0B80, hi: 0x0BFF},
	{lang: domain.LangTelugu, lo: 0x0C00, hi: 0x0C7F},
	{lang: domain.LangKannada, lo: 0x0C80, hi: 0x0CFF},
	{lang: domain.LangMalayalam, lo: 0x0D00, hi: 0x0D7F},
}

// DetectLanguage classifies text by the Indic script of the first character
// that falls inside a known block. Text without any such character is English.
func DetectLanguage(text string) domain.LanguageCode {
	for _, r := range text {
		if r < scriptRanges[0].lo {
			continue
		}
		for _, sr := range scriptRanges {
			if r >= sr.lo && r <= sr.hi {
				return sr.lang
			}
		}
	}
	return domain.LangEnglish
}
