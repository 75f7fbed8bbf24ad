package source

import "golang.org/x/text/unicode/norm"

// trimLineEnding drops the CR of a CRLF ending; a lone CR inside the line stays.
func trimLineEnding(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\r' {
		return line[:n-1]
	}
	return line
}

func removeBOM(line []byte) ([]byte, bool) {
	if len(line) >= 3 && line[0] == 0xEF && line[1] == 0xBB && line[2] == 0xBF {
		return line[3:], true
	}
	return line, false
}

// normalizeFile приводит путь к NFC. Слэши и регистр не трогаем: идентичность
// локации: ровно то, что напечатал компилятор.
func normalizeFile(p string) string {
	if norm.NFC.IsNormalString(p) {
		return p
	}
	return norm.NFC.String(p)
}
