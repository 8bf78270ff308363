package evaluator

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// Number-formatting builtins. The picture-string engine covers
// zero-padded minimum integer digits, grouping separators, fixed fraction
// digits, percent/per-mille scaling, and custom symbols; XPath's
// exponential notation and multi-subpicture (positive;negative) patterns
// are not implemented.

// DecimalFormat carries the symbol set $formatNumber's options argument
// can override.
type DecimalFormat struct {
	DecimalSeparator  rune
	GroupSeparator    rune
	ExponentSeparator rune
	MinusSign         rune
	Infinity          string
	NaN               string
	Percent           string
	PerMille          string
	ZeroDigit         rune
	OptionalDigit     rune
	PatternSeparator  rune
}

func NewDecimalFormat() DecimalFormat {
	return DecimalFormat{
		DecimalSeparator:  '.',
		GroupSeparator:    ',',
		ExponentSeparator: 'e',
		MinusSign:         '-',
		Infinity:          "Infinity",
		NaN:               "NaN",
		Percent:           "%",
		PerMille:          "‰",
		ZeroDigit:         '0',
		OptionalDigit:     '#',
		PatternSeparator:  ';',
	}
}

func decimalFormatFromOptions(opts interface{}) DecimalFormat {
	format := NewDecimalFormat()
	var values map[string]interface{}
	switch v := opts.(type) {
	case *types.OrderedObject:
		values = v.Values
	case map[string]interface{}:
		values = v
	default:
		return format
	}
	firstRune := func(s string) (rune, bool) {
		for _, r := range s {
			return r, true
		}
		return 0, false
	}
	if s, ok := values["decimal-separator"].(string); ok {
		if r, ok := firstRune(s); ok {
			format.DecimalSeparator = r
		}
	}
	if s, ok := values["grouping-separator"].(string); ok {
		if r, ok := firstRune(s); ok {
			format.GroupSeparator = r
		}
	}
	if s, ok := values["exponent-separator"].(string); ok {
		if r, ok := firstRune(s); ok {
			format.ExponentSeparator = r
		}
	}
	if s, ok := values["minus-sign"].(string); ok {
		if r, ok := firstRune(s); ok {
			format.MinusSign = r
		}
	}
	if s, ok := values["infinity"].(string); ok {
		format.Infinity = s
	}
	if s, ok := values["NaN"].(string); ok {
		format.NaN = s
	}
	if s, ok := values["percent"].(string); ok {
		format.Percent = s
	}
	if s, ok := values["per-mille"].(string); ok {
		format.PerMille = s
	}
	if s, ok := values["zero-digit"].(string); ok {
		if r, ok := firstRune(s); ok {
			format.ZeroDigit = r
		}
	}
	if s, ok := values["digit"].(string); ok {
		if r, ok := firstRune(s); ok {
			format.OptionalDigit = r
		}
	}
	if s, ok := values["pattern-separator"].(string); ok {
		if r, ok := firstRune(s); ok {
			format.PatternSeparator = r
		}
	}
	return format
}

// pictureSpec is the parsed shape of one (non-subpicture) picture string.
type pictureSpec struct {
	minIntDigits  int
	groupEvery    int
	minFracDigits int
	maxFracDigits int
	isPercent     bool
	isPerMille    bool
	prefix        string
	suffix        string
}

func parsePicture(picture string, format *DecimalFormat) pictureSpec {
	spec := pictureSpec{groupEvery: -1}

	body := picture
	for strings.HasPrefix(body, format.Percent) {
		spec.isPercent = true
		body = strings.TrimPrefix(body, format.Percent)
	}
	for strings.HasPrefix(body, format.PerMille) {
		spec.isPerMille = true
		body = strings.TrimPrefix(body, format.PerMille)
	}
	trailingPercent := false
	trailingPerMille := false
	for strings.HasSuffix(body, format.Percent) {
		trailingPercent = true
		body = strings.TrimSuffix(body, format.Percent)
	}
	for strings.HasSuffix(body, format.PerMille) {
		trailingPerMille = true
		body = strings.TrimSuffix(body, format.PerMille)
	}
	spec.isPercent = spec.isPercent || trailingPercent
	spec.isPerMille = spec.isPerMille || trailingPerMille

	intPart, fracPart, hasFrac := body, "", false
	if idx := strings.IndexRune(body, format.DecimalSeparator); idx >= 0 {
		intPart = body[:idx]
		fracPart = body[idx+1:]
		hasFrac = true
	}

	sinceGroup := 0
	for _, r := range intPart {
		switch {
		case r == format.GroupSeparator:
			if sinceGroup > 0 {
				spec.groupEvery = sinceGroup
			}
			sinceGroup = 0
		case r == format.ZeroDigit:
			spec.minIntDigits++
			sinceGroup++
		case r == format.OptionalDigit:
			sinceGroup++
		}
	}

	if hasFrac {
		for _, r := range fracPart {
			switch {
			case r == format.ZeroDigit:
				spec.minFracDigits++
				spec.maxFracDigits++
			case r == format.OptionalDigit:
				spec.maxFracDigits++
			}
		}
	}

	if spec.minIntDigits == 0 {
		spec.minIntDigits = 1
	}
	return spec
}

func formatNumberWithPicture(value float64, picture string, format DecimalFormat) (string, error) {
	if math.IsNaN(value) {
		return format.NaN, nil
	}
	if math.IsInf(value, 0) {
		if value > 0 {
			return format.Infinity, nil
		}
		return string(format.MinusSign) + format.Infinity, nil
	}

	spec := parsePicture(picture, &format)

	scaled := value
	if spec.isPercent {
		scaled *= 100
	}
	if spec.isPerMille {
		scaled *= 1000
	}

	isNegative := scaled < 0
	scaled = math.Abs(scaled)
	scaled = roundBankers(scaled, spec.maxFracDigits)

	intDigits := int64(scaled)
	frac := scaled - math.Floor(scaled)

	intStr := strconv.FormatInt(intDigits, 10)
	for len(intStr) < spec.minIntDigits {
		intStr = "0" + intStr
	}
	intStr = translateDigits(intStr, format.ZeroDigit)
	if spec.groupEvery > 0 {
		intStr = groupDigits(intStr, spec.groupEvery, format.GroupSeparator)
	}

	var fracStr string
	if spec.maxFracDigits > 0 {
		scaledFrac := int64(math.Round(frac * math.Pow(10, float64(spec.maxFracDigits))))
		fracStr = strconv.FormatInt(scaledFrac, 10)
		for len(fracStr) < spec.maxFracDigits {
			fracStr = "0" + fracStr
		}
		for len(fracStr) > spec.minFracDigits && strings.HasSuffix(fracStr, "0") {
			fracStr = fracStr[:len(fracStr)-1]
		}
		fracStr = translateDigits(fracStr, format.ZeroDigit)
	}

	var b strings.Builder
	if isNegative {
		b.WriteRune(format.MinusSign)
	}
	b.WriteString(intStr)
	if fracStr != "" {
		b.WriteRune(format.DecimalSeparator)
		b.WriteString(fracStr)
	}
	if spec.isPercent {
		b.WriteString(format.Percent)
	}
	if spec.isPerMille {
		b.WriteString(format.PerMille)
	}
	return b.String(), nil
}

func translateDigits(s string, zeroDigit rune) string {
	if zeroDigit == '0' {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(zeroDigit + (r - '0'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func groupDigits(s string, every int, sep rune) string {
	if every <= 0 || len(s) <= every {
		return s
	}
	var b strings.Builder
	rem := len(s) % every
	if rem == 0 {
		rem = every
	}
	b.WriteString(s[:rem])
	for i := rem; i < len(s); i += every {
		b.WriteRune(sep)
		b.WriteString(s[i : i+every])
	}
	return b.String()
}

func fnFormatNumber(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	num, err := toNumber(args[0])
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		return formatNumber(num), nil
	}
	picture, ok := args[1].(string)
	if !ok {
		return nil, types.NewError(types.ErrCannotConvertString, "the picture argument of $formatNumber must be a string")
	}
	var format DecimalFormat
	if len(args) > 2 && args[2] != nil {
		format = decimalFormatFromOptions(args[2])
	} else {
		format = NewDecimalFormat()
	}
	return formatNumberWithPicture(num, picture, format)
}

func fnFormatBase(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	num, err := toNumber(args[0])
	if err != nil {
		return nil, err
	}
	if err := checkFinite(num); err != nil {
		return nil, err
	}
	radix := 10
	if len(args) > 1 && args[1] != nil {
		r, err := toNumber(args[1])
		if err != nil {
			return nil, err
		}
		radix = int(r)
		if radix < 2 || radix > 36 {
			return nil, types.NewError(types.ErrRadixRange, "the radix of $formatBase must be between 2 and 36")
		}
	}
	intNum := int64(roundBankers(num, 0))
	return strconv.FormatInt(intNum, radix), nil
}

func fnFormatInteger(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	num, err := toNumber(args[0])
	if err != nil {
		return nil, err
	}
	if err := checkFinite(num); err != nil {
		return nil, err
	}
	intNum := int(num)

	if len(args) < 2 || args[1] == nil {
		return strconv.Itoa(intNum), nil
	}
	picture, ok := args[1].(string)
	if !ok {
		return nil, types.NewError(types.ErrCannotConvertString, "the picture argument of $formatInteger must be a string")
	}

	switch picture {
	case "i":
		return strings.ToLower(toRomanNumeral(intNum)), nil
	case "I":
		return toRomanNumeral(intNum), nil
	case "w":
		return strings.ToLower(numberToWords(intNum)), nil
	case "W":
		return strings.ToUpper(numberToWords(intNum)), nil
	case "Ww":
		return titleCase(numberToWords(intNum)), nil
	default:
		return strconv.Itoa(intNum), nil
	}
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func toRomanNumeral(num int) string {
	if num <= 0 || num >= 4000 {
		return strconv.Itoa(num)
	}
	val := []int{1000, 900, 500, 400, 100, 90, 50, 40, 10, 9, 5, 4, 1}
	sym := []string{"M", "CM", "D", "CD", "C", "XC", "L", "XL", "X", "IX", "V", "IV", "I"}
	var result strings.Builder
	for i := 0; i < len(val); i++ {
		for num >= val[i] {
			result.WriteString(sym[i])
			num -= val[i]
		}
	}
	return result.String()
}

var onesWords = []string{"", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine"}
var teenWords = []string{"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen", "seventeen", "eighteen", "nineteen"}
var tensWords = []string{"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety"}

func numberToWords(num int) string {
	if num == 0 {
		return "zero"
	}
	if num < 0 {
		return "minus " + numberToWords(-num)
	}
	if num < 10 {
		return onesWords[num]
	}
	if num < 20 {
		return teenWords[num-10]
	}
	if num < 100 {
		word := tensWords[num/10]
		if num%10 != 0 {
			word += "-" + onesWords[num%10]
		}
		return word
	}
	if num < 1000 {
		result := onesWords[num/100] + " hundred"
		if num%100 != 0 {
			result += " " + numberToWords(num%100)
		}
		return result
	}
	if num < 1000000 {
		result := numberToWords(num/1000) + " thousand"
		if num%1000 != 0 {
			result += " " + numberToWords(num%1000)
		}
		return result
	}
	return strconv.Itoa(num)
}

func fnParseInteger(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, ok := args[0].(string)
	if !ok {
		return nil, types.NewError(types.ErrCannotConvertString, "the first argument of $parseInteger must be a string")
	}
	str = strings.TrimSpace(str)

	radix := 10
	if len(args) > 1 && args[1] != nil {
		r, err := toNumber(args[1])
		if err != nil {
			return nil, err
		}
		radix = int(r)
		if radix < 2 || radix > 36 {
			return nil, types.NewError(types.ErrRadixRange, "the radix of $parseInteger must be between 2 and 36")
		}
	}

	num, err := strconv.ParseInt(str, radix, 64)
	if err != nil {
		return nil, types.NewError(types.ErrCannotConvertNumber, "unable to parse \""+str+"\" as an integer")
	}
	return float64(num), nil
}
