package discord

import (
	"regexp"
	"strings"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"~", `\~`,
	"`", "\\`",
	"|", `\|`,
	">", `\>`,
	"#", `\#`,
	"[", `\[`,
	"]", `\]`,
)

// listMarker matches a dash that would start a bulleted list
var listMarker = regexp.MustCompile(`(?m)^([ \t]*)-`)

// EscapeMarkdown escapes the characters Discord treats as formatting so user
// supplied text is rendered literally.
func EscapeMarkdown(s string) string {
	return listMarker.ReplaceAllString(markdownEscaper.Replace(s), `$1\-`)
}

// Mention returns the mention markup for a user ID
func Mention(userID string) string {
	return "<@" + userID + ">"
}
