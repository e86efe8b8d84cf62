package fetcher

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
)

// DecodeBestEffort recovers a string from bytes of unknown encoding. DART
// documents arrive as UTF-8 or legacy Korean encodings (EUC-KR/CP949)
// depending on the filing's age. The contract is "never fail": the worst
// outcome is a lossy UTF-8 interpretation, never an error.
func DecodeBestEffort(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	if utf8.Valid(raw) {
		return string(raw)
	}

	// x/text's EUC-KR decoder implements Code Page 949, which covers the
	// legacy CP949 superset used by older filings.
	if decoded, err := korean.EUCKR.NewDecoder().Bytes(raw); err == nil {
		if s := string(decoded); strings.TrimSpace(s) != "" {
			return s
		}
	}

	return strings.ToValidUTF8(string(raw), "�")
}
