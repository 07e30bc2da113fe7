// Package selection picks the single best playable file among an item's
// loosely-structured variants.
package selection

import (
	"path/filepath"
	"strings"

	"github.com/vmunix/reelarr/internal/archive"
)

// Score weights rank candidates within a container tier. Container
// preference itself is not score-based: SelectBest compares the tier before
// the score, so no resolution or size can lift a secondary container over a
// surviving primary one.
const (
	ScorePrimaryContainer = 1_000_000
	ScoreModernCodec      = 500_000
	ScoreCanonicalMime    = 200_000

	PenaltyLowBitrate  = 200_000
	PenaltyHighBitrate = 400_000

	// Computed bitrates outside this band indicate corrupt size or duration
	// metadata, not an unusually bad or good encode.
	MinPlausibleBitrate = 150_000
	MaxPlausibleBitrate = 50_000_000
)

// primaryMime is the canonical mime type of the primary container.
const primaryMime = "video/mp4"

// secondaryExtensions are fallback-acceptable containers, usable only when
// the caller allows them.
var secondaryExtensions = map[string]bool{
	".mkv": true, ".mov": true, ".m4v": true, ".webm": true,
	".avi": true, ".mpg": true, ".mpeg": true, ".ogv": true,
}

// nonPlayableTokens mark files that are never the feature itself.
var nonPlayableTokens = []string{"sample", "trailer", "thumb", "preview"}

// nonPlayableExtensions are sidecar files the archive lists alongside video.
var nonPlayableExtensions = map[string]bool{
	".srt": true, ".vtt": true, ".sub": true, ".idx": true,
	".gif": true, ".jpg": true, ".jpeg": true, ".png": true,
	".txt": true, ".nfo": true, ".xml": true, ".sqlite": true,
	".torrent": true, ".sfv": true, ".md5": true,
}

// modernCodecTokens in a declared format string indicate a widely-compatible
// video codec.
var modernCodecTokens = []string{"h.264", "h264", "h.265", "h265", "avc", "x264", "hevc", "av1", "vp9"}

// SelectBest returns the best playable candidate, or nil when nothing
// playable survives filtering. Candidates are ranked by container tier
// first, score second; ties keep the earliest input position, so identical
// input always yields the identical choice.
func SelectBest(files []archive.File, allowSecondaryContainer bool) *archive.File {
	bestIdx := -1
	bestPrimary := false
	var bestScore int64

	for i := range files {
		f := &files[i]
		if !playable(f) {
			continue
		}

		primary := isPrimaryContainer(f)
		if !primary {
			if !allowSecondaryContainer || !isSecondaryContainer(f) {
				continue
			}
		}

		score := scoreFile(f, primary)
		if bestIdx == -1 || (primary && !bestPrimary) ||
			(primary == bestPrimary && score > bestScore) {
			bestIdx = i
			bestPrimary = primary
			bestScore = score
		}
	}

	if bestIdx == -1 {
		return nil
	}
	return &files[bestIdx]
}

func scoreFile(f *archive.File, primary bool) int64 {
	var score int64

	if primary {
		score += ScorePrimaryContainer
	}
	if hasModernCodec(f.Format) {
		score += ScoreModernCodec
	}
	if strings.EqualFold(f.MimeType, primaryMime) {
		score += ScoreCanonicalMime
	}

	score += int64(f.Height) * 1000
	score += int64(f.Width) * 10
	score += f.Bitrate * 2
	score += f.SizeBytes / 1024

	// Sanity-check the bitrate implied by size and duration.
	if f.SizeBytes > 0 && f.DurationSeconds > 0 {
		computed := float64(f.SizeBytes) * 8 / f.DurationSeconds
		switch {
		case computed < MinPlausibleBitrate:
			score -= PenaltyLowBitrate
		case computed > MaxPlausibleBitrate:
			score -= PenaltyHighBitrate
		}
	}

	return score
}

func playable(f *archive.File) bool {
	lower := strings.ToLower(f.Name)
	for _, token := range nonPlayableTokens {
		if strings.Contains(lower, token) {
			return false
		}
	}
	return !nonPlayableExtensions[filepath.Ext(lower)]
}

func isPrimaryContainer(f *archive.File) bool {
	if strings.EqualFold(f.MimeType, primaryMime) {
		return true
	}
	return strings.EqualFold(filepath.Ext(f.Name), ".mp4")
}

func isSecondaryContainer(f *archive.File) bool {
	return secondaryExtensions[strings.ToLower(filepath.Ext(f.Name))]
}

func hasModernCodec(format string) bool {
	lower := strings.ToLower(format)
	for _, token := range modernCodecTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}
