package intent

import (
	"regexp"
	"strings"
)

// spokenReplacements maps dictated connector words to symbols. Order matters:
// " at the rate " must be consumed before the shorter " at ".
var spokenReplacements = []struct {
	spoken, symbol string
}{
	{" at the rate ", "@"},
	{" at ", "@"},
	{" underscore ", "_"},
	{" under score ", "_"},
	{" dot ", "."},
	{" dash ", "-"},
	{" hyphen ", "-"},
	{" space ", ""},
}

var (
	spaceAroundAt  = regexp.MustCompile(`\s*@\s*`)
	spaceAroundDot = regexp.MustCompile(`\s*\.\s*`)
	emailPattern   = regexp.MustCompile(`[\w.-]+@[\w.-]+\.[A-Za-z]+`)
)

// NormalizeSpokenEmail rewrites dictated email phrasing ("john dot doe at
// gmail dot com") into symbolic form ("john.doe@gmail.com"). The result is
// lowercase. Empty input reports false.
func NormalizeSpokenEmail(text string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return "", false
	}

	for _, r := range spokenReplacements {
		t = strings.ReplaceAll(t, r.spoken, r.symbol)
	}

	t = spaceAroundAt.ReplaceAllString(t, "@")
	t = spaceAroundDot.ReplaceAllString(t, ".")
	return t, true
}

// ExtractEmailAndMessage normalizes text and splits it into the first email
// address found and the remaining text. Both are absent when no address is
// present.
func ExtractEmailAndMessage(text string) (email, rest string, ok bool) {
	norm, ok := NormalizeSpokenEmail(text)
	if !ok {
		return "", "", false
	}

	loc := emailPattern.FindStringIndex(norm)
	if loc == nil {
		return "", "", false
	}

	email = norm[loc[0]:loc[1]]
	rest = strings.TrimSpace(norm[:loc[0]] + norm[loc[1]:])
	return email, rest, true
}
