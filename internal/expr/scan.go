package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// callSite describes one function call located in an expression string.
// start and end delimit the full `name(...)` span, end exclusive.
type callSite struct {
	name  string
	args  []string
	start int
	end   int
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentByte(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

// findCall scans left to right for the first call to a name accepted by
// match. Quoted string content is skipped, and argument splitting honors
// nested parentheses and brackets, so arguments may themselves contain
// calls. Regex alone cannot do this, hence the manual scan.
func findCall(s string, match func(string) bool) (callSite, bool) {
	i := 0
	for i < len(s) {
		b := s[i]
		if b == '"' || b == '\'' {
			i = skipString(s, i)
			continue
		}
		if !isIdentStart(b) || (i > 0 && (isIdentByte(s[i-1]) || s[i-1] == '$' || s[i-1] == '.')) {
			i++
			continue
		}
		j := i
		for j < len(s) && isIdentByte(s[j]) {
			j++
		}
		name := s[i:j]
		if j < len(s) && s[j] == '(' && match(name) {
			args, end, ok := scanArgs(s, j)
			if !ok {
				return callSite{}, false
			}
			return callSite{name: name, args: args, start: i, end: end}, true
		}
		i = j
	}
	return callSite{}, false
}

// scanArgs reads a balanced argument list starting at the opening paren,
// returning the trimmed top-level comma-separated arguments and the index
// just past the closing paren.
func scanArgs(s string, open int) (args []string, end int, ok bool) {
	depth := 0
	argStart := open + 1
	for i := open; i < len(s); i++ {
		switch b := s[i]; b {
		case '"', '\'':
			i = skipString(s, i) - 1
		case '(', '[':
			depth++
		case ')', ']':
			depth--
			if depth == 0 {
				if last := strings.TrimSpace(s[argStart:i]); last != "" || len(args) > 0 {
					args = append(args, last)
				}
				return args, i + 1, true
			}
		case ',':
			if depth == 1 {
				args = append(args, strings.TrimSpace(s[argStart:i]))
				argStart = i + 1
			}
		}
	}
	return nil, 0, false
}

// skipString advances past a quoted literal starting at index i, honoring
// backslash escapes. Returns the index just past the closing quote.
func skipString(s string, i int) int {
	quote := s[i]
	i++
	for i < len(s) {
		if s[i] == '\\' {
			i += 2
			continue
		}
		if s[i] == quote {
			return i + 1
		}
		i++
	}
	return i
}

// substituteVars replaces every $identifier token outside string literals
// with the formatted context value. Missing bindings substitute 0 and invoke
// onMissing once per occurrence.
func substituteVars(s string, lookup func(string) (any, bool), onMissing func(string)) string {
	var sb strings.Builder
	i := 0
	for i < len(s) {
		b := s[i]
		if b == '"' || b == '\'' {
			end := skipString(s, i)
			sb.WriteString(s[i:end])
			i = end
			continue
		}
		if b != '$' {
			sb.WriteByte(b)
			i++
			continue
		}
		j := i + 1
		for j < len(s) && isIdentByte(s[j]) {
			j++
		}
		if j == i+1 {
			// Bare dollar with no identifier; keep it, the allowlist will
			// reject it later.
			sb.WriteByte(b)
			i++
			continue
		}
		name := s[i+1 : j]
		if v, ok := lookup(name); ok {
			if text, err := formatValue(v); err == nil {
				sb.WriteString(text)
			} else {
				onMissing(name)
				sb.WriteString("0")
			}
		} else {
			onMissing(name)
			sb.WriteString("0")
		}
		i = j
	}
	return sb.String()
}

// formatValue renders a value back into expression text. Only scalars and
// flat-ish collections of scalars can round-trip through text; anything
// else errors and the caller decides how to degrade.
func formatValue(v any) (string, error) {
	switch tv := v.(type) {
	case float64:
		return strconv.FormatFloat(tv, 'g', -1, 64), nil
	case int:
		return strconv.Itoa(tv), nil
	case bool:
		if tv {
			return "true", nil
		}
		return "false", nil
	case string:
		return strconv.Quote(tv), nil
	case []any:
		parts := make([]string, len(tv))
		for i, item := range tv {
			s, err := formatValue(item)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case []float64:
		parts := make([]string, len(tv))
		for i, f := range tv {
			parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case [2]float64:
		return formatValue(tv[:])
	case [3]float64:
		return formatValue(tv[:])
	}
	return "", fmt.Errorf("value of type %T cannot be inlined into an expression", v)
}

// rewriteConditionals turns every if(cond, a, b) call into ternary form,
// one call per pass so nested conditionals surface on later passes. Passes
// are bounded to avoid an infinite rewrite loop on malformed input; leftover
// if() text after the cap simply fails the final evaluation stage.
func rewriteConditionals(s string, maxPasses int) string {
	for pass := 0; pass < maxPasses; pass++ {
		site, ok := findCall(s, func(name string) bool { return name == "if" })
		if !ok {
			return s
		}
		if len(site.args) != 3 {
			// Malformed arity; leave the text alone and let the restricted
			// evaluator reject it.
			return s
		}
		// The condition goes through truthy() because the mini-language
		// treats any nonzero number as true, while the ternary operator of
		// the final evaluator requires a boolean.
		s = s[:site.start] +
			"(truthy(" + site.args[0] + ") ? (" + site.args[1] + ") : (" + site.args[2] + "))" +
			s[site.end:]
	}
	return s
}
