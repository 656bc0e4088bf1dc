package funcs

import (
	"strings"
	"text/template"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

var TemplateFuncs = template.FuncMap{
	"formatMoney": FormatMoney,
	"formatTime":  formatTime,
	"upper":       strings.ToUpper,
}

// FormatMoney renders an amount with thousands separators and two decimal
// places next to its ISO currency code, e.g. "1,250.00 EGP".
func FormatMoney(amount decimal.Decimal, currency string) string {
	return printer.Sprintf("%.2f %s", amount.InexactFloat64(), currency)
}

func formatTime(t time.Time) string {
	return t.UTC().Format("02 Jan 2006 15:04 MST")
}
