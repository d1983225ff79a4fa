package formats

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/samirrijal/siteloc/internal/core/domain"
)

var (
	reProjCS     = keywordPattern("PROJCS")
	reGeogCS     = keywordPattern("GEOGCS")
	reDatum      = keywordPattern("DATUM")
	reSpheroid   = keywordPattern("SPHEROID")
	reProjection = keywordPattern("PROJECTION")
	reUnit       = keywordPattern("UNIT")
	reAuthority  = regexp.MustCompile(`AUTHORITY\s*\[\s*"([^"]*)"\s*,\s*"?([^"\]\s]*)"?\s*\]`)
	reParameter  = regexp.MustCompile(`PARAMETER\s*\[\s*"([^"]*)"\s*,\s*([^\],\s]+)\s*\]`)
)

func keywordPattern(kw string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + kw + `\s*\[\s*"([^"]*)"`)
}

// ParseProjectionDescription extracts the named fields of a WKT-style
// projection description. Each field is matched independently; a missing
// field is an empty string. Only empty or non-UTF-8 input fails.
func ParseProjectionDescription(text string) (domain.ProjectionDescription, bool) {
	if !utf8.ValidString(text) {
		return domain.ProjectionDescription{}, false
	}
	norm := strings.Join(strings.Fields(text), " ")
	if norm == "" {
		return domain.ProjectionDescription{}, false
	}

	pd := domain.ProjectionDescription{
		ProjectedCRS:  firstMatch(reProjCS, norm),
		GeographicCRS: firstMatch(reGeogCS, norm),
		Datum:         firstMatch(reDatum, norm),
		Spheroid:      firstMatch(reSpheroid, norm),
		Projection:    firstMatch(reProjection, norm),
		Parameters:    make(map[string]float64),
	}

	// Only UNIT and AUTHORITY directly inside the outermost object describe
	// it; nested ones belong to GEOGCS, DATUM, axes and the like.
	if m := topLevel(reUnit, norm); m != nil {
		pd.LinearUnit = strings.TrimSpace(m[1])
	} else if m := reUnit.FindStringSubmatch(norm); m != nil {
		pd.LinearUnit = strings.TrimSpace(m[1])
	}
	if m := topLevel(reAuthority, norm); m != nil {
		if name, code := strings.TrimSpace(m[1]), strings.TrimSpace(m[2]); name != "" && code != "" {
			pd.Authority = strings.ToUpper(name) + ":" + code
		}
	}

	for _, m := range reParameter.FindAllStringSubmatch(norm, -1) {
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		pd.Parameters[strings.ToLower(strings.TrimSpace(m[1]))] = v
	}

	return pd, true
}

// topLevel returns the first match of re that starts at bracket depth one,
// that is, as a direct child of the outermost WKT object.
func topLevel(re *regexp.Regexp, s string) []string {
	for _, loc := range re.FindAllStringSubmatchIndex(s, -1) {
		if depthAt(s, loc[0]) != 1 {
			continue
		}
		m := make([]string, len(loc)/2)
		for i := range m {
			if loc[2*i] >= 0 {
				m[i] = s[loc[2*i]:loc[2*i+1]]
			}
		}
		return m
	}
	return nil
}

// depthAt counts the brackets open before pos, ignoring quoted text.
func depthAt(s string, pos int) int {
	depth, quoted := 0, false
	for i := 0; i < pos; i++ {
		switch c := s[i]; {
		case c == '"':
			quoted = !quoted
		case quoted:
		case c == '[' || c == '(':
			depth++
		case c == ']' || c == ')':
			depth--
		}
	}
	return depth
}

func firstMatch(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
