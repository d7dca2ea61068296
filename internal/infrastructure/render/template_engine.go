package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateEngine renders HTML templates with invoice data.
// It uses Go's html/template package with custom formatting functions.
type TemplateEngine struct {
	funcMap template.FuncMap
}

// NewTemplateEngine creates a new template engine with default configuration
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{}

	e.funcMap = template.FuncMap{
		// Money formatting
		"formatMoney":   formatMoney,
		"amountInWords": AmountInWords,

		// Date formatting
		"formatDate": formatDate,

		// String utilities
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"title": titleCase,
		"trim":  strings.TrimSpace,

		// Arithmetic
		"add": func(a, b int) int { return a + b },

		// Conditional
		"default": defaultFunc,
	}

	return e
}

// Render parses and executes a template against the given data
func (e *TemplateEngine) Render(name, tmpl string, data any) (string, error) {
	t, err := template.New(name).Funcs(e.funcMap).Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %q: %w", name, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %q: %w", name, err)
	}
	return buf.String(), nil
}

// formatMoney formats a decimal amount with a space as thousands separator
// and two decimal places, e.g. 1234567.5 -> "1 234 567.50"
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)

	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}

	dot := strings.Index(s, ".")
	intPart, fracPart := s[:dot], s[dot:]

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	result := strings.Join(groups, " ") + fracPart
	if negative {
		result = "-" + result
	}
	return result
}

// formatDate formats a time in the DD.MM.YYYY form used on invoices
func formatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// titleCase converts a string to title case
func titleCase(s string) string {
	return cases.Title(language.Russian).String(s)
}

// defaultFunc returns the default value if the given value is empty
func defaultFunc(def, value string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

// ---------------------------------------------------------------------------
// Amount in words (Russian)
// ---------------------------------------------------------------------------

var (
	onesMasculine = []string{"ноль", "один", "два", "три", "четыре", "пять", "шесть", "семь", "восемь", "девять"}
	onesFeminine  = []string{"ноль", "одна", "две", "три", "четыре", "пять", "шесть", "семь", "восемь", "девять"}
	teens         = []string{"десять", "одиннадцать", "двенадцать", "тринадцать", "четырнадцать",
		"пятнадцать", "шестнадцать", "семнадцать", "восемнадцать", "девятнадцать"}
	tens = []string{"", "", "двадцать", "тридцать", "сорок", "пятьдесят",
		"шестьдесят", "семьдесят", "восемьдесят", "девяносто"}
	hundreds = []string{"", "сто", "двести", "триста", "четыреста", "пятьсот",
		"шестьсот", "семьсот", "восемьсот", "девятьсот"}
)

// scale describes one thousands group: its declension forms and gender
type scale struct {
	one      string
	few      string
	many     string
	feminine bool
}

var scales = []scale{
	{"", "", "", false}, // units, currency word supplied by the caller
	{"тысяча", "тысячи", "тысяч", true},
	{"миллион", "миллиона", "миллионов", false},
	{"миллиард", "миллиарда", "миллиардов", false},
	{"триллион", "триллиона", "триллионов", false},
	{"квадриллион", "квадриллиона", "квадриллионов", false},
	{"квинтиллион", "квинтиллиона", "квинтиллионов", false},
}

// AmountInWords spells out a ruble amount in Russian with correct
// declension, e.g. 1532.05 -> "Одна тысяча пятьсот тридцать два рубля 05 копеек".
// Kopeks are printed as digits, matching the usual invoice convention.
func AmountInWords(amount decimal.Decimal) string {
	// Round to kopeks first so sub-kopek fractions carry into rubles
	// instead of producing "100 копеек".
	amount = amount.Round(2)
	rubles := amount.IntPart()
	kopeks := amount.Sub(decimal.NewFromInt(rubles)).Mul(decimal.NewFromInt(100)).IntPart()
	if kopeks < 0 {
		kopeks = -kopeks
	}
	if rubles < 0 {
		rubles = -rubles
	}

	words := numberInWords(rubles)
	phrase := fmt.Sprintf("%s %s %02d %s",
		words,
		pluralRu(rubles, "рубль", "рубля", "рублей"),
		kopeks,
		pluralRu(kopeks, "копейка", "копейки", "копеек"),
	)

	// Capitalize the first letter only
	runes := []rune(phrase)
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}

// numberInWords spells out a non-negative integer in Russian
func numberInWords(n int64) string {
	if n == 0 {
		return onesMasculine[0]
	}

	// Split into thousands groups, lowest first
	var groups []int64
	for n > 0 {
		groups = append(groups, n%1000)
		n /= 1000
	}

	var parts []string
	for i := len(groups) - 1; i >= 0; i-- {
		group := groups[i]
		if group == 0 {
			continue
		}
		sc := scales[i]
		parts = append(parts, tripletInWords(group, sc.feminine))
		if i > 0 {
			parts = append(parts, pluralRu(group, sc.one, sc.few, sc.many))
		}
	}
	return strings.Join(parts, " ")
}

// tripletInWords spells out a number from 1 to 999
func tripletInWords(n int64, feminine bool) string {
	ones := onesMasculine
	if feminine {
		ones = onesFeminine
	}

	var parts []string
	if h := n / 100; h > 0 {
		parts = append(parts, hundreds[h])
	}

	rest := n % 100
	switch {
	case rest >= 10 && rest < 20:
		parts = append(parts, teens[rest-10])
	case rest > 0:
		if t := rest / 10; t > 0 {
			parts = append(parts, tens[t])
		}
		if o := rest % 10; o > 0 {
			parts = append(parts, ones[o])
		}
	}
	return strings.Join(parts, " ")
}

// pluralRu picks the Russian plural form for a number:
// 1 рубль, 2-4 рубля, 5-20 рублей, then by the last digit.
func pluralRu(n int64, one, few, many string) string {
	n = n % 100
	if n < 0 {
		n = -n
	}
	if n >= 11 && n <= 19 {
		return many
	}
	switch n % 10 {
	case 1:
		return one
	case 2, 3, 4:
		return few
	default:
		return many
	}
}
