package evaluator

import (
	"context"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// Date/time builtins.
//
// One timestamp (and one $random seed) is captured per top-level
// evaluation, stored on the root Environment's *timestamp rather than a
// package global — every nested $now()/$millis()/$random() call within one
// Evaluate sees the same snapshot, and a fresh Evaluate gets a fresh one.

func (e *Environment) snapshot() *timestamp {
	ts := e.root().now
	ts.once.Do(func() {
		ts.millis = time.Now().UnixMilli()
		ts.randSrc = rand.New(rand.NewSource(ts.millis))
	})
	return ts
}

func fnNow(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	millis := env.snapshot().millis
	picture := ""
	if len(args) > 0 && args[0] != nil {
		s, ok := args[0].(string)
		if !ok {
			return nil, types.NewError(types.ErrCannotConvertString, "the picture argument of $now must be a string")
		}
		picture = s
	}
	tz := ""
	if len(args) > 1 && args[1] != nil {
		s, ok := args[1].(string)
		if !ok {
			return nil, types.NewError(types.ErrCannotConvertString, "the timezone argument of $now must be a string")
		}
		tz = s
	}
	if picture == "" {
		return formatISO8601(millis, tz), nil
	}
	return formatTimestampWithPicture(millis, picture, tz)
}

func fnMillis(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	return float64(env.snapshot().millis), nil
}

func fnFromMillis(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	millisF, err := toNumber(args[0])
	if err != nil {
		return nil, err
	}
	millis := int64(millisF)
	picture := ""
	if len(args) > 1 && args[1] != nil {
		s, ok := args[1].(string)
		if !ok {
			return nil, types.NewError(types.ErrCannotConvertString, "the picture argument of $fromMillis must be a string")
		}
		picture = s
	}
	tz := ""
	if len(args) > 2 && args[2] != nil {
		s, ok := args[2].(string)
		if !ok {
			return nil, types.NewError(types.ErrCannotConvertString, "the timezone argument of $fromMillis must be a string")
		}
		tz = s
	}
	if picture == "" {
		return formatISO8601(millis, tz), nil
	}
	return formatTimestampWithPicture(millis, picture, tz)
}

func fnToMillis(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, ok := args[0].(string)
	if !ok {
		return nil, types.NewError(types.ErrCannotConvertString, "the first argument of $toMillis must be a string")
	}
	picture := ""
	if len(args) > 1 && args[1] != nil {
		p, ok := args[1].(string)
		if !ok {
			return nil, types.NewError(types.ErrCannotConvertString, "the picture argument of $toMillis must be a string")
		}
		picture = p
	}
	if picture == "" {
		t, err := parseISO8601(str)
		if err != nil {
			return nil, types.NewError(types.ErrDateTimeParse, "$toMillis(): "+err.Error())
		}
		return float64(t.UnixMilli()), nil
	}
	return parseTimestampWithPicture(str, picture)
}

func resolveLocation(tz string) (*time.Location, error) {
	if tz == "" {
		return time.UTC, nil
	}
	sign := 1
	rest := tz
	switch rest[0] {
	case '+':
		rest = rest[1:]
	case '-':
		sign = -1
		rest = rest[1:]
	}
	rest = strings.ReplaceAll(rest, ":", "")
	if len(rest) != 4 {
		return nil, types.NewError(types.ErrDateTimeParse, "invalid timezone offset: "+tz)
	}
	hh, err1 := strconv.Atoi(rest[:2])
	mm, err2 := strconv.Atoi(rest[2:])
	if err1 != nil || err2 != nil {
		return nil, types.NewError(types.ErrDateTimeParse, "invalid timezone offset: "+tz)
	}
	offsetSeconds := sign * (hh*3600 + mm*60)
	return time.FixedZone(tz, offsetSeconds), nil
}

func formatISO8601(millis int64, tz string) string {
	loc, err := resolveLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	t := time.UnixMilli(millis).In(loc)
	return t.Format("2006-01-02T15:04:05.000Z07:00")
}

func parseISO8601(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05.000Z07:00",
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02T15:04:05.000",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	var lastErr error
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}

// formatTimestampWithPicture expands the XPath-style picture markers
// JSONata supports inside `[...]`: Y (year), M (month), D (day), H (hour),
// m (minute), s (second), f (fractional seconds), Z/z (timezone), X
// (ISO week-numbering year), W (ISO week of year), F (day of week number).
func formatTimestampWithPicture(millis int64, picture string, tz string) (string, error) {
	loc, err := resolveLocation(tz)
	if err != nil {
		return "", err
	}
	t := time.UnixMilli(millis).In(loc)

	var b strings.Builder
	i := 0
	for i < len(picture) {
		if picture[i] == '[' {
			end := strings.IndexByte(picture[i:], ']')
			if end < 0 {
				return "", types.NewError(types.ErrDateTimeParse, "unterminated picture marker in $now/$fromMillis")
			}
			marker := picture[i+1 : i+end]
			rendered, err := renderPictureMarker(marker, t)
			if err != nil {
				return "", err
			}
			b.WriteString(rendered)
			i += end + 1
			continue
		}
		b.WriteByte(picture[i])
		i++
	}
	return b.String(), nil
}

var pictureMarkerRe = regexp.MustCompile(`^([A-Za-z])(\d*)$`)

func renderPictureMarker(marker string, t time.Time) (string, error) {
	m := pictureMarkerRe.FindStringSubmatch(marker)
	if m == nil {
		return "", types.NewError(types.ErrDateTimeParse, "unrecognized picture marker: "+marker)
	}
	code, width := m[1], 0
	if m[2] != "" {
		width, _ = strconv.Atoi(m[2])
	}
	pad := func(n int) string {
		s := strconv.Itoa(n)
		for width > 0 && len(s) < width {
			s = "0" + s
		}
		return s
	}
	switch code {
	case "Y":
		if width == 2 {
			return pad(t.Year() % 100), nil
		}
		return pad(t.Year()), nil
	case "M":
		return pad(int(t.Month())), nil
	case "D":
		return pad(t.Day()), nil
	case "H":
		return pad(t.Hour()), nil
	case "h":
		h := t.Hour() % 12
		if h == 0 {
			h = 12
		}
		return pad(h), nil
	case "m":
		return pad(t.Minute()), nil
	case "s":
		return pad(t.Second()), nil
	case "f":
		nanos := t.Nanosecond()
		if width == 0 {
			width = 3
		}
		s := strconv.Itoa(nanos)
		for len(s) < 9 {
			s = "0" + s
		}
		return s[:width], nil
	case "X":
		year, _ := t.ISOWeek()
		return pad(year), nil
	case "W":
		_, week := t.ISOWeek()
		return pad(week), nil
	case "F":
		wd := int(t.Weekday())
		if wd == 0 {
			wd = 7
		}
		return strconv.Itoa(wd), nil
	case "Z", "z":
		_, offset := t.Zone()
		sign := "+"
		if offset < 0 {
			sign = "-"
			offset = -offset
		}
		return sign + pad2(offset/3600) + ":" + pad2((offset%3600)/60), nil
	default:
		return "", types.NewError(types.ErrDateTimeParse, "unsupported picture marker: "+code)
	}
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// parseTimestampWithPicture parses str against a picture template by
// converting its markers into a named-capture regex, then interpreting
// the captured fields. Supports the common Y/M/D/H/m/s/f markers used by
// $toMillis's picture argument.
func parseTimestampWithPicture(str, picture string) (float64, error) {
	var reBuilder strings.Builder
	reBuilder.WriteString("^")
	var fieldOrder []string
	i := 0
	for i < len(picture) {
		if picture[i] == '[' {
			end := strings.IndexByte(picture[i:], ']')
			if end < 0 {
				return 0, types.NewError(types.ErrDateTimeParse, "unterminated picture marker in $toMillis")
			}
			marker := picture[i+1 : i+end]
			m := pictureMarkerRe.FindStringSubmatch(marker)
			if m == nil {
				return 0, types.NewError(types.ErrDateTimeParse, "unrecognized picture marker: "+marker)
			}
			code := m[1]
			fieldOrder = append(fieldOrder, code)
			reBuilder.WriteString("(\\d+)")
			i += end + 1
			continue
		}
		reBuilder.WriteString(regexp.QuoteMeta(string(picture[i])))
		i++
	}
	reBuilder.WriteString("$")

	re, err := regexp.Compile(reBuilder.String())
	if err != nil {
		return 0, types.NewError(types.ErrDateTimeParse, "$toMillis(): invalid picture")
	}
	match := re.FindStringSubmatch(str)
	if match == nil {
		return 0, types.NewError(types.ErrDateTimeParse, "$toMillis(): timestamp does not match picture")
	}

	year, month, day, hour, minute, second := 1970, 1, 1, 0, 0, 0
	nanos := 0
	for idx, code := range fieldOrder {
		v, _ := strconv.Atoi(match[idx+1])
		switch code {
		case "Y":
			year = v
		case "M":
			month = v
		case "D":
			day = v
		case "H", "h":
			hour = v
		case "m":
			minute = v
		case "s":
			second = v
		case "f":
			frac := match[idx+1]
			for len(frac) < 9 {
				frac += "0"
			}
			nanos, _ = strconv.Atoi(frac[:9])
		}
	}
	t := time.Date(year, time.Month(month), day, hour, minute, second, nanos, time.UTC)
	return float64(t.UnixMilli()), nil
}
