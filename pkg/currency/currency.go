/**
 * @description
 * This package formats monetary amounts for display. A Formatter owns an
 * explicit cache of printers keyed by locale and currency, built on demand
 * and held for the life of the process. It is constructed once in main and
 * injected where needed rather than living as package-level state.
 *
 * @notes
 * - golang.org/x/text/currency does not implement symbol positioning from
 *   CLDR patterns, so prefix placement is maintained as a manual list.
 * - Unknown currency codes fall back to the code itself as the symbol so
 *   formatting never fails.
 */

package currency

import (
	"strings"
	"sync"

	xcurrency "golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// symbolOverrides provides custom symbols where x/text defaults aren't ideal.
var symbolOverrides = map[string]string{
	"SEK": "kr",
	"NOK": "kr",
	"DKK": "kr",
	"ISK": "kr",
}

// defaultLocaleForCurrency provides fallback locales when a currency is
// requested without a locale. Uses a "home" locale for each currency.
var defaultLocaleForCurrency = map[string]language.Tag{
	"SEK": language.Swedish,
	"USD": language.AmericanEnglish,
	"EUR": language.German,
	"GBP": language.BritishEnglish,
	"NOK": language.Norwegian,
	"DKK": language.Danish,
	"CHF": language.German,
	"JPY": language.Japanese,
	"CAD": language.CanadianFrench,
	"AUD": language.MustParse("en-AU"),
	"BRL": language.BrazilianPortuguese,
	"MXN": language.LatinAmericanSpanish,
	"INR": language.MustParse("en-IN"),
	"CNY": language.Chinese,
	"KRW": language.Korean,
	"PLN": language.Polish,
	"CZK": language.Czech,
	"HUF": language.Hungarian,
	"RUB": language.Russian,
	"TRY": language.Turkish,
	"ZAR": language.MustParse("en-ZA"),
	"NZD": language.MustParse("en-NZ"),
	"SGD": language.MustParse("en-SG"),
	"HKD": language.MustParse("zh-HK"),
	"THB": language.Thai,
}

// prefixCurrencies lists currencies whose symbol is placed before the amount.
var prefixCurrencies = map[string]bool{
	"USD": true,
	"GBP": true,
	"JPY": true,
	"CAD": true,
	"AUD": true,
	"MXN": true,
	"HKD": true,
	"SGD": true,
	"NZD": true,
	"ZAR": true,
}

// entry holds the resolved formatting pieces for one locale+currency pair.
type entry struct {
	printer *message.Printer
	symbol  string
	prefix  bool
}

// Formatter renders amounts in a currency for a locale. Lookups are cached
// per locale+currency pair. Safe for concurrent use.
type Formatter struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewFormatter creates an empty formatter cache.
func NewFormatter() *Formatter {
	return &Formatter{entries: make(map[string]entry)}
}

// Format renders amount using the given ISO currency code and BCP 47 locale.
// An empty or unparseable locale falls back to the currency's home locale,
// then to English.
func (f *Formatter) Format(amount float64, currencyCode, localeCode string) string {
	e := f.lookup(currencyCode, localeCode)
	formatted := e.printer.Sprint(number.Decimal(amount, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
	if e.prefix {
		return e.symbol + formatted
	}
	return formatted + " " + e.symbol
}

func (f *Formatter) lookup(currencyCode, localeCode string) entry {
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	if code == "" {
		code = "USD"
	}
	key := strings.TrimSpace(localeCode) + "|" + code

	f.mu.RLock()
	e, ok := f.entries[key]
	f.mu.RUnlock()
	if ok {
		return e
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.entries[key]; ok {
		return e
	}
	e = buildEntry(code, localeCode)
	f.entries[key] = e
	return e
}

func buildEntry(code, localeCode string) entry {
	unit, err := xcurrency.ParseISO(code)
	isUnknown := err != nil
	if isUnknown {
		unit = xcurrency.USD // fallback unit for number formatting only
	}

	tag := language.Und
	if trimmed := strings.TrimSpace(localeCode); trimmed != "" {
		if parsed, parseErr := language.Parse(trimmed); parseErr == nil {
			tag = parsed
		}
	}
	if tag == language.Und {
		if home, ok := defaultLocaleForCurrency[code]; ok {
			tag = home
		} else {
			tag = language.English
		}
	}

	printer := message.NewPrinter(tag)

	symbol := code
	if !isUnknown {
		if sym, ok := symbolOverrides[code]; ok {
			symbol = sym
		} else {
			symbol = printer.Sprint(xcurrency.NarrowSymbol(unit))
		}
	}

	return entry{
		printer: printer,
		symbol:  symbol,
		prefix:  prefixCurrencies[code],
	}
}
