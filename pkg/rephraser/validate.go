package rephraser

import (
	"log/slog"
	"strings"
	"unicode/utf8"
)

// RuneRange is an inclusive range of Unicode code points treated as emoji.
type RuneRange struct {
	Lo, Hi rune
}

// Contains reports whether r falls within the range.
func (rr RuneRange) Contains(r rune) bool {
	return r >= rr.Lo && r <= rr.Hi
}

// DefaultEmojiRanges returns the code-point ranges recognized as emoji:
// supplementary pictographs, miscellaneous symbols, and dingbats.
func DefaultEmojiRanges() []RuneRange {
	return []RuneRange{
		{Lo: 0x1F000, Hi: 0x1F9FF},
		{Lo: 0x2600, Hi: 0x26FF},
		{Lo: 0x2700, Hi: 0x27BF},
	}
}

// DefaultDenyList returns the glyphs stripped from responses: symbols
// connoting death, anger, disgust, or profanity.
func DefaultDenyList() []string {
	return []string{"💀", "☠️", "🤬", "💩", "🤮", "🤢", "😡"}
}

// DefaultFallbackGlyph is appended to the original text when the model's
// response is judged unusable.
const DefaultFallbackGlyph = "👍"

// ValidatorOpts configures a Validator. Zero values select defaults.
type ValidatorOpts struct {
	EmojiRanges []RuneRange  // Recognized emoji code-point ranges (default: DefaultEmojiRanges).
	DenyList    []string     // Glyphs removed from responses (default: DefaultDenyList).
	Fallback    string       // Glyph appended on fallback (default: DefaultFallbackGlyph).
	Logger      *slog.Logger // Destination for validation warnings (default: discard).
}

// Validator decides whether a raw model response is acceptable to show the
// user, given the original input. It never fails: degenerate responses are
// downgraded to a fallback string, never surfaced as errors.
//
// Validate is a pure function of (original, candidate); a Validator is safe
// for concurrent use.
type Validator struct {
	ranges   []RuneRange
	deny     []string
	fallback string
	log      *slog.Logger
}

// NewValidator creates a Validator with the given options.
func NewValidator(opts ValidatorOpts) *Validator {
	if opts.EmojiRanges == nil {
		opts.EmojiRanges = DefaultEmojiRanges()
	}
	if opts.DenyList == nil {
		opts.DenyList = DefaultDenyList()
	}
	if opts.Fallback == "" {
		opts.Fallback = DefaultFallbackGlyph
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	return &Validator{
		ranges:   opts.EmojiRanges,
		deny:     opts.DenyList,
		fallback: opts.Fallback,
		log:      opts.Logger,
	}
}

// Validate inspects candidate against the original input and returns the
// string to show the user:
//
//   - empty or whitespace-only candidate → original unchanged
//   - candidate shorter than half the original → original + fallback glyph
//   - candidate without any emoji → original + fallback glyph
//   - deny-listed glyphs are deleted from the candidate
//   - an excessive emoji count is logged but not enforced
func (v *Validator) Validate(original, candidate string) string {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		v.log.Warn("received empty rephrasing response")
		return original
	}

	if float64(utf8.RuneCountInString(candidate)) < float64(utf8.RuneCountInString(original))/2 {
		v.log.Warn("rephrasing response too short", "response", candidate)
		return original + " " + v.fallback
	}

	// Count maximal runs of emoji code points; a multi-rune glyph like 🍕🍕
	// written back to back still reads as one run, matching how users see
	// clusters rather than code points.
	emojiCount := v.countEmojiRuns(candidate)
	if emojiCount == 0 {
		v.log.Warn("rephrasing response contains no emojis")
		return original + " " + v.fallback
	}

	for _, glyph := range v.deny {
		if strings.Contains(candidate, glyph) {
			v.log.Warn("rephrasing response contains deny-listed glyph", "glyph", glyph)
			candidate = strings.ReplaceAll(candidate, glyph, "")
		}
	}

	wordCount := len(strings.Fields(original))
	if float64(emojiCount) > float64(wordCount)/2+2 {
		// Soft limit: flagged only, the response is still returned.
		v.log.Warn("rephrasing response contains too many emojis",
			"emoji_count", emojiCount,
			"word_count", wordCount,
		)
	}

	return candidate
}

// ContainsEmoji reports whether s holds at least one recognized emoji code point.
func (v *Validator) ContainsEmoji(s string) bool {
	return v.countEmojiRuns(s) > 0
}

func (v *Validator) inRange(r rune) bool {
	for _, rr := range v.ranges {
		if rr.Contains(r) {
			return true
		}
	}
	return false
}

// countEmojiRuns counts maximal runs of consecutive emoji code points in s.
func (v *Validator) countEmojiRuns(s string) int {
	count := 0
	inRun := false

	for _, r := range s {
		if v.inRange(r) {
			if !inRun {
				count++
				inRun = true
			}
			continue
		}
		inRun = false
	}

	return count
}
