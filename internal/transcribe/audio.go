package transcribe

import (
	"encoding/base64"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMimeType is assumed when the client does not say what it recorded.
const DefaultMimeType = "audio/webm"

// ExtensionForMime maps a recorder MIME type to a file extension.
// Matching is by substring so parameters like ";codecs=opus" are ignored.
func ExtensionForMime(mimeType string) string {
	switch {
	case mimeType == "":
		return "webm"
	case strings.Contains(mimeType, "webm"):
		return "webm"
	case strings.Contains(mimeType, "wav"):
		return "wav"
	case strings.Contains(mimeType, "mpeg"):
		return "mp3"
	case strings.Contains(mimeType, "mp4"):
		return "m4a"
	default:
		return "webm"
	}
}

// FileNameForMime returns the upload name used when the client sends none.
func FileNameForMime(mimeType string) string {
	return "recording." + ExtensionForMime(mimeType)
}

// DecodeBase64 decodes browser-supplied base64 without rejecting it.
// Whitespace and characters outside the alphabet are dropped, the URL-safe
// alphabet is accepted, decoding stops at the first '=', and a leading
// "data:<type>;base64," prefix is removed. Malformed input yields whatever
// bytes survive, possibly none.
func DecodeBase64(s string) []byte {
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}

	clean := make([]byte, 0, len(s))
scan:
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '+', c == '/':
			clean = append(clean, c)
		case c == '-':
			clean = append(clean, '+')
		case c == '_':
			clean = append(clean, '/')
		case c == '=':
			break scan
		}
	}

	// A single leftover character carries fewer than 8 bits.
	if len(clean)%4 == 1 {
		clean = clean[:len(clean)-1]
	}

	out := make([]byte, base64.RawStdEncoding.DecodedLen(len(clean)))
	n, err := base64.RawStdEncoding.Decode(out, clean)
	if err != nil {
		return nil
	}
	return out[:n]
}

// SniffMime detects the container of decoded audio bytes. The result is
// advisory; the provider does its own validation.
func SniffMime(audio []byte) (detected string, media bool) {
	m := mimetype.Detect(audio)
	detected = m.String()
	for ; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "audio/") || strings.HasPrefix(m.String(), "video/") {
			return detected, true
		}
	}
	return detected, false
}
