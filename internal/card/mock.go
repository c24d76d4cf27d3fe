package card

import (
	"fmt"
	"strings"

	"github.com/kidscience/card-service/internal/model"
)

// mockTemplates pairs topic keywords with fully pre-written,
// quality-conforming cards. Keyword match is a case-insensitive substring
// check against the question; the slice keeps match order deterministic.
var mockTemplates = []struct {
	keyword  string
	template model.KnowledgeCard
}{
	{"恐龙", model.KnowledgeCard{
		Title:        "🦕 恐龙的神秘世界",
		Introduction: "小朋友，恐龙是地球上曾经生活过的神奇生物！让我们一起探索它们的秘密吧！",
		Points: []model.Point{
			{
				Title:   "🌍 恐龙的时代",
				Content: "恐龙生活在很久很久以前，大约2.3亿年前到6500万年前。那时候地球的样子和现在很不一样呢！",
			},
			{
				Title:   "🦴 恐龙的种类",
				Content: "恐龙有很多种类，有吃植物的温和恐龙，也有吃肉的凶猛恐龙。最大的恐龙比现在的大象还要大很多倍！",
			},
			{
				Title:   "🔍 恐龙的消失",
				Content: "科学家认为，可能是因为一颗巨大的陨石撞击地球，改变了环境，恐龙就慢慢消失了。",
			},
		},
		Summary: "虽然恐龙消失了，但通过化石，我们仍然可以了解这些神奇的生物！",
		Source:  model.SourceMock,
	}},
	{"太阳系", model.KnowledgeCard{
		Title:        "🪐 太阳系的奇妙之旅",
		Introduction: "小朋友，太阳系是我们地球的家！让我们一起去看看太阳系里都有什么吧！",
		Points: []model.Point{
			{
				Title:   "☀️ 太阳 - 我们的恒星",
				Content: "太阳是太阳系的中心，它非常非常大，能发出光和热。没有太阳，地球上就不会有生命！",
			},
			{
				Title:   "🌍 八大行星",
				Content: "太阳系有八颗行星：水星、金星、地球、火星、木星、土星、天王星、海王星。地球是我们的家！",
			},
			{
				Title:   "🌙 月亮和其他",
				Content: "除了行星，太阳系还有很多月亮、小行星和彗星。月亮是地球的好朋友，每天晚上陪伴着我们！",
			},
		},
		Summary: "太阳系就像一个大家庭，每个成员都有自己的特点和作用！",
		Source:  model.SourceMock,
	}},
	{"彩虹", model.KnowledgeCard{
		Title:        "🌈 彩虹的美丽秘密",
		Introduction: "小朋友，你见过雨后的彩虹吗？让我们一起了解彩虹是怎么形成的吧！",
		Points: []model.Point{
			{
				Title:   "💧 阳光和水滴",
				Content: "彩虹需要两个好朋友：阳光和小水滴。当阳光照射到空气中的小水滴时，就可能出现彩虹！",
			},
			{
				Title:   "🎨 七种颜色",
				Content: "彩虹有七种美丽的颜色：红、橙、黄、绿、蓝、靛、紫。这些颜色按顺序排列，非常漂亮！",
			},
			{
				Title:   "🔬 光的分解",
				Content: "其实白色的阳光里包含了所有颜色！当光线通过水滴时，就像通过三棱镜一样，把颜色分开了。",
			},
		},
		Summary: "彩虹是大自然送给我们的美丽礼物，提醒我们世界充满了奇妙的科学！",
		Source:  model.SourceMock,
	}},
}

// GenerateMock returns a deterministic template card for the question.
// Pure function: keyword hit returns the matching template, otherwise a
// generic template referencing the verbatim question. Always source=mock-data.
func GenerateMock(question string) model.KnowledgeCard {
	lower := strings.ToLower(question)
	for _, entry := range mockTemplates {
		if strings.Contains(lower, entry.keyword) {
			return entry.template
		}
	}

	return model.KnowledgeCard{
		Title:        fmt.Sprintf("🌟 关于\"%s\"的知识", question),
		Introduction: "小朋友，这是一个很棒的问题！让我来为你解答吧！",
		Points: []model.Point{
			{
				Title:   "📚 基础认识",
				Content: "首先，我们来了解一下这个问题的基本概念。每个新知识都有它有趣的地方！",
			},
			{
				Title:   "🔍 深入探索",
				Content: "接下来，让我们更深入地了解这个话题。科学家们通过研究发现了很多有趣的事实！",
			},
			{
				Title:   "🎯 生活应用",
				Content: "这些知识在我们的日常生活中也有很多应用，让我们的生活变得更美好！",
			},
		},
		Summary: "学习新知识让我们变得更聪明，保持好奇心是最重要的！",
		Source:  model.SourceMock,
	}
}
