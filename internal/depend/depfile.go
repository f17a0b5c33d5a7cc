package depend

import (
	"bytes"
	"strings"
)

// ParseRule parses the make rule a compiler prints in dependency mode,
//
//	<object>: <input> <input> \
//	  <input> ...
//
// and returns the inputs. A backslash-newline is whitespace and a
// backslash-space is part of a name. Lines starting with "# " are line
// markers some compilers print first; they are ignored, as are empty
// phony rules ("<header>:").
func ParseRule(b []byte) []string {
	var rule []byte
	for line := range bytes.Lines(b) {
		if !bytes.HasPrefix(line, []byte("# ")) {
			rule = append(rule, line...)
		}
	}

	i := ruleColon(rule)
	if i < 0 {
		return nil
	}

	var inputs []string
	for s := rule[i+1:]; len(s) > 0; {
		var token string
		token, s = nextToken(s)
		if token == "" || strings.HasSuffix(token, ":") {
			continue
		}

		inputs = append(inputs, token)
	}

	return inputs
}

// ruleColon finds the colon ending the rule target. A colon followed by a
// path character is part of a drive letter, as in C:\obj\a.o.
func ruleColon(b []byte) int {
	for i, c := range b {
		if c != ':' {
			continue
		}

		if i+1 == len(b) || isSpace(b[i+1]) {
			return i
		}
	}

	return -1
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func nextToken(s []byte) (string, []byte) {
	// skip whitespace, treating backslash-newline as whitespace
skip:
	for len(s) > 0 {
		switch {
		case isSpace(s[0]):
			s = s[1:]
		case bytes.HasPrefix(s, []byte("\\\n")):
			s = s[2:]
		case bytes.HasPrefix(s, []byte("\\\r\n")):
			s = s[3:]
		default:
			break skip
		}
	}

	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case ' ':
				sb.WriteByte(' ')
				i++
				continue
			case '\n', '\r':
				return sb.String(), s[i+1:]
			}
		}

		if isSpace(c) {
			return sb.String(), s[i+1:]
		}

		sb.WriteByte(c)
	}

	return sb.String(), nil
}

// Normalize prefixes a bare file name with "./" so that "a.h" and "./a.h"
// name the same dependency. Names with a directory part are unchanged.
func Normalize(name string) string {
	if strings.ContainsAny(name, `/\`) {
		return name
	}

	return "./" + name
}

// normalizeAll normalizes and de-duplicates deps, keeping first
// occurrences, and makes sure file itself is in the result
func normalizeAll(file string, deps []string) []string {
	file = Normalize(file)

	out := make([]string, 0, len(deps)+1)
	seen := make(map[string]bool, len(deps)+1)
	for _, d := range deps {
		d = Normalize(d)
		if seen[d] {
			continue
		}

		seen[d] = true
		out = append(out, d)
	}

	if !seen[file] {
		out = append([]string{file}, out...)
	}

	return out
}
