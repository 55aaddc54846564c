package infrastructure

import (
	"strings"
	"unicode/utf8"
)

// Characters with special meaning in a POSIX shell
const shellSpecialChars = " \t'\"$`\\!*?[](){}|;<>&~#%\n\r"

// ShellEscape quotes s for display in a logged command line.
// exec.Command never goes through a shell; this is for logs only.
func ShellEscape(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, isShellSpecialChar) < 0 {
		return s
	}
	// ' becomes '"'"' inside single quotes
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// ShellEscapeCommand renders binary and args as one copy-pasteable line
func ShellEscapeCommand(binary string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, ShellEscape(binary))
	for _, arg := range args {
		parts = append(parts, ShellEscape(arg))
	}
	return strings.Join(parts, " ")
}

func isShellSpecialChar(c rune) bool {
	return strings.ContainsRune(shellSpecialChars, c)
}

// truncateOutput shortens captured process output for log fields
func truncateOutput(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "...(truncated)"
}
