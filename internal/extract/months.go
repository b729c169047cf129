package extract

import (
	"strconv"

	"golang.org/x/text/cases"
)

var (
	englishMonths = [12]string{
		"january", "february", "march", "april", "may", "june",
		"july", "august", "september", "october", "november", "december",
	}
	englishAbbrev = [12]string{
		"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec",
	}
	germanMonths = [12]string{
		"jänner", "februar", "märz", "april", "mai", "juni",
		"juli", "august", "september", "oktober", "november", "dezember",
	}
	germanMonthsPlain = [12]string{
		"jaenner", "februar", "maerz", "april", "mai", "juni",
		"juli", "august", "september", "oktober", "november", "dezember",
	}
	germanAbbrev = [12]string{
		"jan", "feb", "mär", "apr", "mai", "jun", "jul", "aug", "sep", "okt", "nov", "dez",
	}
	germanAbbrevPlain = [12]string{
		"jan", "feb", "mar", "apr", "mai", "jun", "jul", "aug", "sep", "okt", "nov", "dez",
	}
)

var monthsByName = buildMonthIndex()

func buildMonthIndex() map[string]int {
	index := make(map[string]int, 72)
	for _, table := range [][12]string{germanMonths, germanMonthsPlain, germanAbbrev, germanAbbrevPlain, englishMonths, englishAbbrev} {
		for i, name := range table {
			if _, ok := index[name]; !ok {
				index[name] = i + 1
			}
		}
	}
	return index
}

// parseMonth converts a numeric or named month to 1-12. Names are matched
// case-insensitively against English and German full names and three letter
// abbreviations. Numeric values are returned unchecked so that an invalid
// month fails calendar validation instead of being silently dropped.
func parseMonth(value string) (int, bool) {
	if n, err := strconv.Atoi(value); err == nil {
		return n, true
	}
	month, ok := monthsByName[cases.Fold().String(value)]
	return month, ok
}
