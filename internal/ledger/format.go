package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// maxFractionDigits matches what the ledger shows for amounts: up to three
// decimals, trailing zeros dropped.
const maxFractionDigits = 3

// Formatter renders numbers with locale grouping separators.
type Formatter struct {
	p *message.Printer
}

// NewFormatter builds a Formatter for a BCP 47 locale such as "en" or "zh-TW".
// Unknown locales fall back to English.
func NewFormatter(locale string) Formatter {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.English
	}
	return Formatter{p: message.NewPrinter(tag)}
}

// DefaultFormatter groups with commas.
var DefaultFormatter = NewFormatter("en")

// Number formats a raw numeric string with grouping separators. Existing
// commas are ignored, so both "1500" and "1,500" become "1,500". Anything
// that does not parse as a number renders as "0".
func (f Formatter) Number(raw string) string {
	d, ok := ParseAmount(raw)
	if !ok {
		return "0"
	}
	d = d.Round(maxFractionDigits)
	neg := d.Sign() < 0
	d = d.Abs()
	whole := d.Truncate(0)
	printer := f.p
	if printer == nil {
		printer = DefaultFormatter.p
	}
	out := printer.Sprintf("%d", whole.IntPart())
	if frac := d.Sub(whole); !frac.IsZero() {
		out += "." + strings.TrimPrefix(frac.String(), "0.")
	}
	if neg {
		out = "-" + out
	}
	return out
}

// ParseAmount parses a number that may carry grouping commas.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// EditValue is the text an editor opens with: number cells drop their
// grouping separators so the user edits the bare value.
func EditValue(kind Kind, display string) string {
	display = strings.TrimSpace(display)
	if kind == KindNumber {
		return strings.ReplaceAll(display, ",", "")
	}
	return display
}

// Display converts a server-confirmed value into cell text.
func (f Formatter) Display(kind Kind, value string) string {
	if kind == KindNumber {
		return f.Number(value)
	}
	return value
}
