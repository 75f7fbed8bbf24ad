package diag

// Diagnostic is one data-quality finding about the input log.
// Line is the 1-based input line; 0 means "end of input".
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Line     uint32
}

func New(sev Severity, code Code, line uint32, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Line:     line,
		Message:  msg,
	}
}
