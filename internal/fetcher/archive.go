package fetcher

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// MaxTextBytes caps the total text extracted from one document bundle.
const MaxTextBytes = 2 << 20

// IsZip reports whether the payload starts with the zip magic bytes. The
// document endpoint declares an .xml extension regardless of whether it
// returns an archive, so the payload itself is sniffed.
func IsZip(data []byte) bool {
	return bytes.HasPrefix(data, []byte("PK"))
}

// TextFromZip extracts the combined plain text of all xml/html entries in an
// in-memory zip archive. Entries that fail to read are skipped; the result is
// capped at MaxTextBytes.
func TextFromZip(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", eris.Wrap(err, "fetcher: open zip")
	}

	var b strings.Builder
	for _, f := range zr.File {
		if !isTextEntry(f.Name) {
			continue
		}

		raw, err := readZipEntry(f)
		if err != nil {
			continue
		}

		text := StripTags(DecodeBestEffort(raw))
		if text == "" {
			continue
		}

		b.WriteString(text)
		b.WriteByte('\n')

		if b.Len() >= MaxTextBytes {
			break
		}
	}

	return CapText(b.String()), nil
}

// CapText bounds document text at MaxTextBytes.
func CapText(text string) string {
	if len(text) <= MaxTextBytes {
		return text
	}
	// Avoid splitting a multi-byte rune at the cut point.
	return strings.ToValidUTF8(text[:MaxTextBytes], "")
}

func isTextEntry(name string) bool {
	ln := strings.ToLower(name)
	return strings.HasSuffix(ln, ".xml") ||
		strings.HasSuffix(ln, ".html") ||
		strings.HasSuffix(ln, ".htm")
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: open zip entry")
	}
	defer rc.Close() //nolint:errcheck

	return io.ReadAll(io.LimitReader(rc, MaxTextBytes))
}
