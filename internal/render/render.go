package render

import (
	"strings"

	"github.com/shopspring/decimal"

	"poolScope/internal/model"
)

// Style selects the text layout.
type Style int

const (
	// Console is plain text for a terminal.
	Console Style = iota
	// ChatMessage is Telegram legacy Markdown.
	ChatMessage
)

const (
	header       = "Currency reserves"
	roundingNote = "(Note: Total percentage may not add up to 100% due to rounding)"
)

var markdownEscaper = strings.NewReplacer(
	`_`, `\_`,
	`*`, `\*`,
	"`", "\\`",
	`[`, `\[`,
)

// Render formats a report. Rounding happens only here; the report keeps full precision.
func Render(report model.PoolReport, style Style) string {
	var b strings.Builder

	if style == ChatMessage {
		b.WriteString("*" + header + "*\n")
	} else {
		b.WriteString(header + "\n")
	}

	for _, line := range report.Lines {
		symbol := line.Symbol
		if style == ChatMessage {
			symbol = EscapeMarkdown(symbol)
		}
		b.WriteString(symbol + "\n")
		b.WriteString("$" + line.USDPrice.StringFixed(5) + " (current USD price)\n")
		b.WriteString(FormatAmount(line.HumanBalance) + " " + symbol + "\n")
		b.WriteString("$" + FormatAmount(line.USDValue) + " USD (equivalent value)\n")
		b.WriteString(line.PercentShare.StringFixed(2) + "% (share in the pool)\n")
		b.WriteString("\n")
	}

	b.WriteString("USD total $" + FormatAmount(report.TotalUSD) + "\n")
	b.WriteString("Total percentage: " + report.TotalPercent.StringFixed(2) + "%\n")
	b.WriteString(roundingNote)

	return b.String()
}

// FormatAmount renders a value with two decimal places and comma thousands separators.
func FormatAmount(value decimal.Decimal) string {
	text := value.StringFixed(2)

	sign := ""
	if strings.HasPrefix(text, "-") {
		sign = "-"
		text = text[1:]
	}

	intPart, fracPart, _ := strings.Cut(text, ".")
	return sign + groupThousands(intPart) + "." + fracPart
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// EscapeMarkdown escapes the characters that legacy Telegram Markdown treats as entity
// delimiters.
func EscapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}
