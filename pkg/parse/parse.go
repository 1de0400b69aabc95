// Package parse splits text commands into their name, targets and reason.
//
// A command looks like:
//
//	!unwarn <@123456789012345678> 2024-01-15
//	!unwarn @someone
//
// Leading mention tokens are targets, everything after them is the reason.
// When the command message replies to another message, the author of that
// message is added as a target as well.
package parse

import (
	"strings"
	"unicode"
)

// minSnowflakeLen is the shortest bare numeric ID accepted as a target, so
// that a short number such as a year stays part of the reason.
const minSnowflakeLen = 15

// Command is the parsed form of a text command
type Command struct {
	Name    string
	Targets []string
	Reason  string
}

// Parse parses text as a command introduced by prefix. replyAuthorID is the
// author of the replied-to message, if any. The boolean is false when text is
// not a command.
func Parse(prefix, text, replyAuthorID string) (Command, bool) {
	text = strings.TrimSpace(text)
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return Command{}, false
	}

	rest := text[len(prefix):]
	name, rest := nextToken(rest)
	if name == "" {
		return Command{}, false
	}

	cmd := Command{Name: strings.ToLower(name)}
	for {
		tok, after := nextToken(rest)
		if tok == "" || !IsTarget(tok) {
			break
		}
		cmd.Targets = append(cmd.Targets, tok)
		rest = after
	}
	cmd.Reason = strings.TrimSpace(rest)

	if replyAuthorID != "" {
		cmd.Targets = append(cmd.Targets, replyAuthorID)
	}
	return cmd, true
}

// IsTarget reports whether tok references a user.
func IsTarget(tok string) bool {
	switch {
	case strings.HasPrefix(tok, "<@") && strings.HasSuffix(tok, ">"):
		return isDigits(strings.TrimPrefix(tok[2:len(tok)-1], "!"))
	case strings.HasPrefix(tok, "@"):
		return len(tok) > 1
	default:
		return len(tok) >= minSnowflakeLen && isDigits(tok)
	}
}

// Strip normalizes a target token to a bare user ID or username.
func Strip(tok string) string {
	tok = strings.TrimSpace(tok)
	if strings.HasPrefix(tok, "<@") && strings.HasSuffix(tok, ">") {
		return strings.TrimPrefix(tok[2:len(tok)-1], "!")
	}
	return strings.TrimPrefix(tok, "@")
}

// IsID reports whether s looks like a numeric user ID.
func IsID(s string) bool {
	return isDigits(s)
}

func nextToken(s string) (string, string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if s == "" {
		return "", ""
	}
	end := strings.IndexFunc(s, unicode.IsSpace)
	if end < 0 {
		return s, ""
	}
	return s[:end], s[end:]
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
