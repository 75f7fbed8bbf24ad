package diag

import (
	"fmt"
	"strings"
)

// FormatShort renders diagnostics one per line as
// "<severity> <CODE> <input>:<line> <message>". Line 0 is printed as "<input>:EOF".
// The order of diags is kept; call Bag.Sort first for a stable order.
func FormatShort(diags []Diagnostic, input string) string {
	if len(diags) == 0 {
		return ""
	}
	var b strings.Builder
	for i, d := range diags {
		pos := "EOF"
		if d.Line != 0 {
			pos = fmt.Sprintf("%d", d.Line)
		}
		fmt.Fprintf(&b, "%s %s %s:%s %s", d.Severity.Label(), d.Code.ID(), input, pos, sanitizeMessage(d.Message))
		if i < len(diags)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
