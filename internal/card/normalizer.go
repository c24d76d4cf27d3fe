// Package card turns loosely-structured provider output into the fixed
// knowledge-card contract, and generates deterministic mock cards when no
// provider is reachable.
package card

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kidscience/card-service/internal/model"
)

// Field length caps, in runes. The prompt asks for ~40-rune introductions and
// ~30-rune summaries; those are soft targets, so the hard caps sit above them.
const (
	maxTitleRunes      = 15
	maxPointTitleRunes = 12
	maxIntroRunes      = 60
	maxSummaryRunes    = 40
	hardCapRunes       = 500
)

// pointEmojis are cycled by position onto point titles missing an emoji.
var pointEmojis = []string{"📚", "🔍", "🎯"}

// pointFillers pad point content below the policy floor, selected by point
// index. Generic evergreen sentences — never fabricated topic facts.
var pointFillers = []string{
	"这个现象背后有着有趣的科学原理。科学家们通过长期观察和研究，发现了其中的奥秘。",
	"在我们的日常生活中，可以观察到很多类似的例子。这些现象都遵循着相同的科学规律。",
	"这个知识不仅有趣，还很实用。了解了这个原理，我们就能更好地理解周围的世界。",
}

// Policy is the point-content length band, in runes. It is normalizer
// configuration rather than a constant so deployments can trade depth for
// token cost.
type Policy struct {
	PointMin int
	PointMax int
}

// DefaultPolicy is the canonical 80–120 rune band.
var DefaultPolicy = Policy{PointMin: 80, PointMax: 120}

// Normalizer coerces raw provider text into a valid KnowledgeCard.
// Normalize never fails outward: parsing strategies are tried in order
// (strict JSON → heuristic line extraction → fixed apology card) and the
// field rules are applied uniformly to whichever one produced the fields.
type Normalizer struct {
	policy Policy
}

// NewNormalizer creates a Normalizer with the given length policy.
// Zero values fall back to DefaultPolicy so an unset config stays canonical.
func NewNormalizer(policy Policy) *Normalizer {
	if policy.PointMin <= 0 {
		policy.PointMin = DefaultPolicy.PointMin
	}
	if policy.PointMax <= 0 {
		policy.PointMax = DefaultPolicy.PointMax
	}
	return &Normalizer{policy: policy}
}

// rawCard mirrors the JSON shape the prompt demands from providers.
type rawCard struct {
	Title        string     `json:"title"`
	Introduction string     `json:"introduction"`
	Points       []rawPoint `json:"points"`
	Summary      string     `json:"summary"`
}

type rawPoint struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Normalize produces a valid card from any input text. The source tag records
// which provider's output is being normalized and is never changed afterwards.
func (n *Normalizer) Normalize(raw string, source model.Source) model.KnowledgeCard {
	c, _ := n.TryNormalize(raw, source)
	return c
}

// TryNormalize is Normalize with an extraction verdict: ok is false when both
// parsing strategies failed and the apology card had to stand in. The
// orchestrator uses the verdict to try the next provider instead of settling
// for filler content while a fallback is still available.
func (n *Normalizer) TryNormalize(raw string, source model.Source) (model.KnowledgeCard, bool) {
	if parsed, ok := parseStrict(raw); ok {
		return n.applyRules(parsed, source), true
	}

	if parsed, ok := parseHeuristic(raw); ok {
		return n.applyRules(parsed, source), true
	}

	return n.applyRules(apologyCard(), source), false
}

// parseStrict attempts a JSON parse of the largest brace-delimited substring,
// after stripping markdown code fences. Providers regularly wrap the JSON in
// ```json fences or lead with prose despite the prompt's instructions.
func parseStrict(raw string) (rawCard, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = fenceRe.ReplaceAllString(cleaned, "")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return rawCard{}, false
	}

	var parsed rawCard
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &parsed); err != nil {
		return rawCard{}, false
	}

	// All four top-level fields must be present for the strict path.
	if parsed.Title == "" || parsed.Introduction == "" || parsed.Summary == "" || len(parsed.Points) == 0 {
		return rawCard{}, false
	}

	return parsed, true
}

// parseHeuristic is the best-effort recovery when the provider ignored the
// JSON instruction: first non-blank line becomes title material, the following
// line groups become point material, with default connective text attached.
func parseHeuristic(raw string) (rawCard, bool) {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) == 0 {
		return rawCard{}, false
	}

	group := func(from, to int) string {
		if from >= len(lines) {
			return ""
		}
		if to > len(lines) {
			to = len(lines)
		}
		return strings.Join(lines[from:to], " ")
	}

	tail := ""
	if len(lines) >= 2 {
		tail = strings.Join(lines[len(lines)-2:], " ")
	}

	return rawCard{
		Title:        "🌟 " + lines[0],
		Introduction: "小朋友，让我来为你解答这个问题！虽然内容可能不够完整，但我们一起来学习吧！",
		Points: []rawPoint{
			{Title: "📚 基础认知", Content: group(1, 3)},
			{Title: "🔍 深入探索", Content: group(3, 5)},
			{Title: "🎯 实际应用", Content: tail},
		},
		Summary: "💡 学习新知识让我们变得更聪明，保持好奇心很重要！",
	}, true
}

// apologyCard is the terminal fallback when the input is entirely unusable:
// fixed evergreen learning-encouragement content, no network, no randomness.
// Distinct from the mock generator's keyword templates.
func apologyCard() rawCard {
	return rawCard{
		Title:        "🌟 知识探索小课堂",
		Introduction: "小朋友，虽然AI老师遇到了技术问题，但学习的热情不能停！",
		Points: []rawPoint{
			{
				Title:   "📚 学习方法",
				Content: "遇到不懂的问题时，可以问老师、家长或查阅书籍。每个问题都是学习的好机会，通过多种方式寻找答案，我们会学到更多知识。记住，没有愚蠢的问题！",
			},
			{
				Title:   "🔍 探索精神",
				Content: "保持好奇心是学习最重要的品质。世界上有无数有趣的现象等待我们去发现。就像科学家一样，我们要勇敢地提出问题，仔细观察周围的事物，用心思考其中的原理。",
			},
			{
				Title:   "🎯 持续成长",
				Content: "每天学一点新知识，就像小树苗每天长高一点点。知识会让我们的大脑变得更聪明，帮助我们更好地理解这个美妙的世界。学习是一场永不结束的冒险！",
			},
		},
		Summary: "💡 学习的脚步永远不会停止！保持好奇心，继续探索吧！",
	}
}

// applyRules enforces the card contract uniformly, regardless of which
// extraction path produced the raw fields. Already-conforming input passes
// through observably unchanged.
func (n *Normalizer) applyRules(raw rawCard, source model.Source) model.KnowledgeCard {
	title := sanitize(raw.Title)
	if title == "" {
		title = "有趣的知识"
	}
	if !hasEmoji(title) {
		title = "🌟 " + title
	}
	title = clampEllipsis(title, maxTitleRunes)

	intro := sanitize(raw.Introduction)
	if intro == "" {
		intro = "让我们一起学习新知识吧！"
	}
	if !containsAny(intro, "小朋友", "让我们", "一起") {
		intro = "小朋友，" + intro
	}
	intro = clampEllipsis(intro, maxIntroRunes)

	points := make([]model.Point, 0, 3)
	for i := 0; i < 3; i++ {
		var p rawPoint
		if i < len(raw.Points) {
			p = raw.Points[i]
		}
		points = append(points, n.normalizePoint(p, i))
	}

	summary := sanitize(raw.Summary)
	if summary == "" {
		summary = "学习让我们变得更聪明！"
	}
	if !hasEmoji(summary) {
		summary = "💡 " + summary
	}
	summary = clampEllipsis(summary, maxSummaryRunes)

	return model.KnowledgeCard{
		Title:        title,
		Introduction: intro,
		Points:       points,
		Summary:      summary,
		Source:       source,
	}
}

func (n *Normalizer) normalizePoint(p rawPoint, index int) model.Point {
	title := sanitize(p.Title)
	if title == "" {
		title = fmt.Sprintf("知识点%d", index+1)
	}
	if !hasEmoji(title) {
		title = pointEmojis[index%len(pointEmojis)] + " " + title
	}
	title = clampEllipsis(title, maxPointTitleRunes)

	content := sanitize(p.Content)
	if content == "" {
		content = "这是一个有趣的知识点。"
	}
	// Pad up to the policy floor with index-selected filler, then clamp to
	// the ceiling. Content already inside the band is left untouched.
	for utf8.RuneCountInString(content) < n.policy.PointMin {
		content += pointFillers[index%len(pointFillers)]
	}
	content = clampEllipsis(content, n.policy.PointMax)

	return model.Point{Title: title, Content: content}
}

var (
	fenceRe    = regexp.MustCompile("(?i)```(json)?")
	headingRe  = regexp.MustCompile(`#{1,6}\s*`)
	whitespace = regexp.MustCompile(`\s+`)
)

// sanitize is the shared cleanup every textual field passes through before
// length banding: markdown emphasis and heading markers stripped, whitespace
// collapsed, hard cap applied.
func sanitize(text string) string {
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "*", "")
	text = headingRe.ReplaceAllString(text, "")
	text = whitespace.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	return truncateRunes(text, hardCapRunes)
}

// clampEllipsis truncates text over the cap, marking the cut with an ellipsis.
// Text at or under the cap is returned unchanged.
func clampEllipsis(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	return truncateRunes(text, max-3) + "..."
}

func truncateRunes(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

// EmojiRune reports whether r is an emoji glyph: the broad
// symbols-and-pictographs blocks, regional indicators, and the legacy
// miscellaneous-symbols and dingbats blocks. Exported so every consumer of
// the card contract detects (or strips) the same glyph set.
func EmojiRune(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF:
		return true
	case r >= 0x1F1E0 && r <= 0x1F1FF:
		return true
	case r >= 0x2600 && r <= 0x26FF:
		return true
	case r >= 0x2700 && r <= 0x27BF:
		return true
	}
	return false
}

func hasEmoji(text string) bool {
	for _, r := range text {
		if EmojiRune(r) {
			return true
		}
	}
	return false
}

func containsAny(text string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(text, sub) {
			return true
		}
	}
	return false
}
