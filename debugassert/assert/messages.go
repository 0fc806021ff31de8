package assert

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// titleKey is both the catalog key and the English notice title.
const titleKey = "Assertion failed. The process will exit in %d seconds, take a screenshot now."

var (
	supportedLanguages = []language.Tag{
		language.English,
		language.SimplifiedChinese,
	}

	languageMatcher = language.NewMatcher(supportedLanguages)
	titleCatalog    = newTitleCatalog()
)

func newTitleCatalog() catalog.Catalog {
	builder := catalog.NewBuilder(catalog.Fallback(language.English))

	// SetString only fails for malformed messages; both entries are constants.
	_ = builder.SetString(language.English, titleKey, titleKey)
	_ = builder.SetString(language.SimplifiedChinese, titleKey, "断言崩溃，将在%d秒后退出，请及时截图")

	return builder
}

// Title returns the localized notice title for the given grace delay.
// Unsupported languages get the English text.
func Title(lang language.Tag, delay time.Duration) string {
	_, index, _ := languageMatcher.Match(lang)
	printer := message.NewPrinter(supportedLanguages[index], message.Catalog(titleCatalog))

	return printer.Sprintf(titleKey, wholeSeconds(delay))
}

// ParseLanguage parses a BCP 47 tag, falling back to English.
func ParseLanguage(tag string) language.Tag {
	parsed, err := language.Parse(tag)
	if err != nil {
		return language.English
	}

	return parsed
}

// wholeSeconds rounds delay up so a 500ms grace period is not announced as 0 seconds.
func wholeSeconds(delay time.Duration) int {
	if delay <= 0 {
		return 0
	}

	return int((delay + time.Second - 1) / time.Second)
}
