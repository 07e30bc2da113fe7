// Package title normalizes and compares media titles sourced from unreliable
// third-party metadata.
package title

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// videoExtRegex matches a trailing video file extension.
var videoExtRegex = regexp.MustCompile(`(?i)\.(mp4|mkv|avi|mov|m4v|webm|mpg|mpeg|ogv|wmv|flv)$`)

// annotationRegex matches bracketed or parenthesized annotations, which on
// archive items usually carry uploader notes rather than title text.
var annotationRegex = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)|\{[^}]*\}`)

// releaseTokenRegex matches resolution, codec, and source tokens commonly
// embedded in archive item titles and file names.
var releaseTokenRegex = regexp.MustCompile(`(?i)\b(2160p|1080p|720p|576p|480p|360p|4k|uhd|x264|x265|h\.?264|h\.?265|hevc|avc|av1|vp9|xvid|divx|bluray|blu-ray|brrip|bdrip|dvdrip|webrip|web-dl|webdl|hdtv|hdrip|remux|proper|repack|aac|ac3|dts|mp3)\b`)

var separatorRegex = regexp.MustCompile(`[._\-]+`)

// Sanitize strips file extensions, bracketed annotations, and release tokens
// from a raw title so it can be used as a provider search query.
func Sanitize(s string) string {
	s = videoExtRegex.ReplaceAllString(s, "")
	s = annotationRegex.ReplaceAllString(s, " ")
	s = releaseTokenRegex.ReplaceAllString(s, " ")
	s = separatorRegex.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Clean normalizes a title for scoring and comparison.
// Lowercases, removes accents, replaces "&" with "and", strips punctuation,
// and drops a single leading article.
func Clean(s string) string {
	s = strings.ToLower(Sanitize(s))
	s = removeAccents(s)
	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "'", "")

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	s = stripLeadingArticle(b.String())

	return strings.Join(strings.Fields(s), " ")
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

func stripLeadingArticle(s string) string {
	s = strings.TrimSpace(s)
	for _, art := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(s, art) {
			return strings.TrimPrefix(s, art)
		}
	}
	return s
}
