package intelligence

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The utterance interpreter is a set of pure heuristics over the raw user
// text. It never touches the datastore or the completion service, so every
// rule is directly unit-testable.

// SlotSelection is a deterministic slot choice extracted from free text.
// Ordinal is 1-based (0 when the user did not pick by number); Hour is the
// channel-local start hour (-1 when absent).
type SlotSelection struct {
	Ordinal int
	Hour    int
}

var (
	bareNumberRe = regexp.MustCompile(`^\s*(\d{1,2})\s*\.?\s*$`)
	optionRe     = regexp.MustCompile(`(?i)\bopci[oó]n\s+(\d{1,2})\b|\boption\s+(\d{1,2})\b|\bla\s+(\d{1,2})\b`)
	hourRe       = regexp.MustCompile(`(?i)\b(?:a\s+las?|de\s+las?|at)\s+(\d{1,2})(?::\d{2})?\s*(am|pm|hrs?\.?)?\b`)
)

// ParseSlotSelection reports whether text reads as a slot pick, either by
// ordinal ("2", "opción 3", "option 1") or by start hour ("el de las 10").
func ParseSlotSelection(text string) (SlotSelection, bool) {
	trimmed := strings.TrimSpace(text)

	if m := bareNumberRe.FindStringSubmatch(trimmed); m != nil {
		n, _ := strconv.Atoi(m[1])
		// Bare numbers above the option-list ceiling are not selections.
		if n >= 1 && n <= 10 {
			return SlotSelection{Ordinal: n, Hour: -1}, true
		}
		return SlotSelection{}, false
	}

	if m := optionRe.FindStringSubmatch(trimmed); m != nil {
		for _, g := range m[1:] {
			if g == "" {
				continue
			}
			n, _ := strconv.Atoi(g)
			if n >= 1 && n <= 10 {
				return SlotSelection{Ordinal: n, Hour: -1}, true
			}
		}
	}

	if m := hourRe.FindStringSubmatch(trimmed); m != nil {
		hour, _ := strconv.Atoi(m[1])
		suffix := strings.ToLower(m[2])
		if strings.HasPrefix(suffix, "pm") && hour < 12 {
			hour += 12
		}
		if hour >= 0 && hour <= 23 {
			return SlotSelection{Ordinal: 0, Hour: hour}, true
		}
	}

	return SlotSelection{}, false
}

var spanishWeekdayNames = []struct {
	name string
	day  time.Weekday
}{
	{"lunes", time.Monday},
	{"martes", time.Tuesday},
	{"miercoles", time.Wednesday},
	{"miércoles", time.Wednesday},
	{"jueves", time.Thursday},
	{"viernes", time.Friday},
	{"sabado", time.Saturday},
	{"sábado", time.Saturday},
	{"domingo", time.Sunday},
}

var spanishMonthIndex = map[string]time.Month{
	"enero":      time.January,
	"febrero":    time.February,
	"marzo":      time.March,
	"abril":      time.April,
	"mayo":       time.May,
	"junio":      time.June,
	"julio":      time.July,
	"agosto":     time.August,
	"septiembre": time.September,
	"octubre":    time.October,
	"noviembre":  time.November,
	"diciembre":  time.December,
}

var (
	dayMonthRe     = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})\b`)
	dayMonthNameRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s+de\s+([a-záéíóú]+)\b`)
)

// ExtractPreferredDate pulls a concrete "YYYY-MM-DD" out of free text:
// weekday names resolve to the next such weekday, "mañana" to tomorrow,
// and day/month forms to the admission cycle containing them. now anchors
// all relative arithmetic.
func ExtractPreferredDate(text string, now time.Time) (string, bool) {
	lower := strings.ToLower(text)

	if strings.Contains(lower, "mañana") && !strings.Contains(lower, "en la mañana") && !strings.Contains(lower, "por la mañana") {
		return now.AddDate(0, 0, 1).Format("2006-01-02"), true
	}

	// When several weekdays are named ("lunes o martes"), the first one
	// mentioned wins.
	firstAt, firstDay := -1, time.Sunday
	for _, wd := range spanishWeekdayNames {
		at := strings.Index(lower, wd.name)
		if at >= 0 && (firstAt < 0 || at < firstAt) {
			firstAt, firstDay = at, wd.day
		}
	}
	if firstAt >= 0 {
		days := (int(firstDay) - int(now.Weekday()) + 7) % 7
		if days == 0 {
			days = 7
		}
		return now.AddDate(0, 0, days).Format("2006-01-02"), true
	}

	if m := dayMonthNameRe.FindStringSubmatch(lower); m != nil {
		day, _ := strconv.Atoi(m[1])
		if month, ok := spanishMonthIndex[m[2]]; ok && day >= 1 && day <= 31 {
			return cycleDate(now, month, day).Format("2006-01-02"), true
		}
	}

	if m := dayMonthRe.FindStringSubmatch(lower); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if day >= 1 && day <= 31 && month >= 1 && month <= 12 {
			return cycleDate(now, time.Month(month), day).Format("2006-01-02"), true
		}
	}

	return "", false
}

// cycleDate places a month/day inside the admission cycle running August
// through July around now. A January date mentioned in November belongs to
// the coming year; a September date mentioned in March belongs to the next
// cycle's opening.
func cycleDate(now time.Time, month time.Month, day int) time.Time {
	year := now.Year()
	candidate := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	if candidate.Before(now.Truncate(24 * time.Hour)) {
		candidate = candidate.AddDate(1, 0, 0)
	}
	return candidate
}

var noteKeywordCategories = []struct {
	note     string
	keywords []string
}{
	{
		note:     "Interesado en beca o apoyo financiero",
		keywords: []string{"beca", "becas", "apoyo financiero", "descuento", "financial aid", "scholarship"},
	},
	{
		note:     "Solicitó información de costos",
		keywords: []string{"costo", "costos", "colegiatura", "precio", "cuánto cuesta", "cuanto cuesta"},
	},
	{
		note:     "Mencionó cambio de escuela a mitad de ciclo",
		keywords: []string{"cambio de escuela", "mitad de ciclo", "transferencia"},
	},
}

// ClassifyNoteKeywords returns the well-known note categories whose keywords
// appear in the utterance. It is a fallback net behind the add-note tool.
func ClassifyNoteKeywords(text string) []string {
	lower := strings.ToLower(text)
	var notes []string
	for _, cat := range noteKeywordCategories {
		for _, kw := range cat.keywords {
			if strings.Contains(lower, kw) {
				notes = append(notes, cat.note)
				break
			}
		}
	}
	return notes
}
