package domain

import (
	"fmt"
	"strings"
)

// LanguageCode is a two-letter ISO-639-1 code.
type LanguageCode string

const (
	LangEnglish   LanguageCode = "en"
	LangHindi     LanguageCode = "hi"
	LangTelugu    LanguageCode = "te"
	LangTamil     LanguageCode = "ta"
	LangBengali   LanguageCode = "bn"
	LangKannada   LanguageCode = "kn"
	LangMalayalam LanguageCode = "ml"
	LangMarathi   LanguageCode = "mr"
	LangGujarati  LanguageCode = "gu"
	LangPunjabi   LanguageCode = "pa"

	// LangAuto asks the translation backend to detect the source itself.
	LangAuto LanguageCode = "auto"
)

type Language struct {
	Code LanguageCode `json:"code"`
	Name string       `json:"name"`
}

var supportedLanguages = []Language{
	{Code: LangEnglish, Name: "English"},
	{Code: LangHindi, Name: "Hindi"},
	{Code: LangTelugu, Name: "Telugu"},
	{Code: LangTamil, Name: "Tamil"},
	{Code: LangBengali, Name: "Bengali"},
	{Code: LangKannada, Name: "Kannada"},
	{Code: LangMalayalam, Name: "Malayalam"},
	{Code: LangMarathi, Name: "Marathi"},
	{Code: LangGujarati, Name: "Gujarati"},
	{Code: LangPunjabi, Name: "Punjabi"},
}

// SupportedLanguages returns a fresh copy of the language table in display order.
func SupportedLanguages() []Language {
	out := make([]Language, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

func (c LanguageCode) Name() string {
	for _, lang := range supportedLanguages {
		if lang.Code == c {
			return lang.Name
		}
	}
	return string(c)
}

func (c LanguageCode) IsSupported() bool {
	for _, lang := range supportedLanguages {
		if lang.Code == c {
			return true
		}
	}
	return false
}

// ParseLanguageCode normalizes raw input and rejects codes outside the supported table.
func ParseLanguageCode(raw string) (LanguageCode, error) {
	code := LanguageCode(strings.ToLower(strings.TrimSpace(raw)))
	if !code.IsSupported() {
		return "", WrapError(ErrInvalidInput, "parse language", fmt.Errorf("unsupported language code %q", raw))
	}
	return code, nil
}
