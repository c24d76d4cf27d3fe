package llm

import (
	"fmt"
	"strings"

	"github.com/kidscience/card-service/internal/card"
	"github.com/kidscience/card-service/internal/model"
)

// cardPrompt is the fixed instruction template shared by every text provider.
// It pins the output format (strict JSON), tone (child-appropriate,
// scientifically accurate) and structure (field lengths, required emoji,
// 3-point layout) so that provider output lands close to the card contract
// and the normalizer only has to clamp, not invent.
const cardPrompt = `你是一位既温柔又博学的AI科学老师，专门为5-10岁的小朋友解答问题。请根据孩子的问题，生成一张既有趣又有深度的科学知识卡片。

核心要求：
1. 🔬 科学准确性：确保所有信息都是科学正确的，不能为了简化而歪曲事实
2. 🧠 内容深度：每个知识点要包含【基本概念 + 科学原理 + 生活例证】三个层次
3. 🗣️ 儿童语言：用5-10岁孩子能理解的词汇，避免专业术语，多用比喻和类比
4. 🎨 生动表达：使用emoji、比喻、拟人等手法，让抽象概念变得具体可感
5. 🌟 逻辑清晰：先说"是什么"，再说"为什么"，最后说"怎么样"
6. 🛡️ 内容安全：避免恐怖、暴力内容，用积极正面的方式解释自然现象

内容结构要求：
- 引导语：40字左右，激发好奇心
- 每个知识点：80-120字，包含完整的科学解释
- 总结：30字左右，鼓励继续探索

写作技巧：
✅ 用比喻：把复杂概念比作孩子熟悉的事物
✅ 举例子：用生活中的具体例子说明抽象原理
✅ 讲故事：用拟人化的方式描述自然现象
✅ 问问题：引导孩子思考，增加互动性

请严格按照以下JSON格式返回，不要添加任何其他文字：
{
  "title": "🌟 有趣且准确的标题（必须包含emoji，控制在15字以内）",
  "introduction": "小朋友，这是一个很棒的问题！让我们一起来探索其中的科学奥秘吧！（用亲切的语气介绍，控制在40字以内）",
  "points": [
    {
      "title": "📚 基础认知（包含emoji，控制在12字以内）",
      "content": "先解释基本概念，然后说明科学原理，最后举一个生活中的具体例子。要确保科学准确，用孩子能理解的语言。（80-120字）"
    },
    {
      "title": "🔍 深入探索（包含emoji，控制在12字以内）",
      "content": "进一步解释背后的科学机制，用比喻或类比的方式让孩子理解复杂的原理，并联系到他们的日常经验。（80-120字）"
    },
    {
      "title": "🎯 实际应用（包含emoji，控制在12字以内）",
      "content": "说明这个知识在现实生活中的应用或意义，让孩子明白学习这个知识的价值，激发进一步探索的兴趣。（80-120字）"
    }
  ],
  "summary": "💡 科学让我们更好地理解世界，保持好奇心，你会发现更多有趣的秘密！（控制在30字以内）"
}

孩子的问题是：{question}

请生成既有深度又适合儿童的科学知识卡片：`

// BuildCardPrompt substitutes the question into the instruction template.
// Deterministic: same question, same prompt.
func BuildCardPrompt(question string) string {
	return strings.ReplaceAll(cardPrompt, "{question}", question)
}

// BuildImagePrompt describes a fixed multi-panel doodle infographic derived
// from the card fields. The layout/style/content sections are constant; only
// the card text varies.
func BuildImagePrompt(c model.KnowledgeCard) string {
	var points strings.Builder
	for i, p := range c.Points {
		fmt.Fprintf(&points, "%d. %s: %s\n", i+1, p.Title, p.Content)
	}

	// Topic keyword for the headline: the title minus decorative emoji,
	// using the same glyph set the normalizer prefixes with. Variation
	// selectors and zero-width joiners ride along with the glyphs they modify.
	topic := strings.TrimSpace(strings.Map(func(r rune) rune {
		if card.EmojiRune(r) || r == 0xFE0F || r == 0x200D {
			return -1
		}
		return r
	}, c.Title))

	return fmt.Sprintf(`Create an educational doodle-style infographic card about %q with the following exact specifications:

LAYOUT STRUCTURE:
- Design as a single educational poster with multiple bordered sections
- Top section: Large title panel with rounded rectangle border
- Middle section: 2-3 information panels arranged horizontally or in grid
- Each panel should have thick black borders with rounded corners
- Use bright solid background colors (yellow, orange, light blue, light green)
- Leave white space between panels for clarity

VISUAL STYLE:
- Hand-drawn doodle style with thick black outlines (3-4px)
- Colorful pencil/marker coloring with slight texture
- Simple cartoon illustrations and icons
- Consistent rounded, friendly shapes
- High contrast colors for readability

CONTENT TO INCLUDE:
Title Panel: %q in large, bold, hand-lettered style
Introduction Panel: %q with supporting doodle icons
Key Points Panels: Visualize these concepts with simple diagrams:
%s
Summary Panel: %q with concluding visual elements

TEXT REQUIREMENTS:
- All text in English with clear, readable hand-lettered font
- Use both Chinese and English for key terms if helpful
- Include labels, arrows, and explanatory text
- Text should be large enough for young students (12-16pt equivalent)

TECHNICAL SPECS:
- 1024x1024 square format or 16:9 landscape
- Educational poster style similar to classroom materials
- Avoid clutter - maximum 4-5 main visual elements
- Ensure high contrast and readability
- Child-friendly, positive, and engaging design
`, topic, c.Title, c.Introduction, points.String(), c.Summary)
}
