package card

import (
	"strings"
	"testing"

	"github.com/kidscience/card-service/internal/model"
)

func TestGenerateMock_KeywordMatch(t *testing.T) {
	got := GenerateMock("恐龙是怎么灭绝的？")

	if got.Title != "🦕 恐龙的神秘世界" {
		t.Errorf("expected the dinosaur template title, got %q", got.Title)
	}
	if len(got.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(got.Points))
	}
	if got.Source != model.SourceMock {
		t.Errorf("expected source mock-data, got %s", got.Source)
	}
}

func TestGenerateMock_AllTemplates(t *testing.T) {
	cases := map[string]string{
		"太阳系有几颗行星？": "🪐 太阳系的奇妙之旅",
		"彩虹是怎么来的？":  "🌈 彩虹的美丽秘密",
	}
	for question, wantTitle := range cases {
		got := GenerateMock(question)
		if got.Title != wantTitle {
			t.Errorf("GenerateMock(%q) title = %q, want %q", question, got.Title, wantTitle)
		}
	}
}

func TestGenerateMock_GenericTemplate(t *testing.T) {
	question := "为什么猫会打呼噜？"
	got := GenerateMock(question)

	if !strings.Contains(got.Title, question) {
		t.Errorf("generic template should reference the verbatim question, got %q", got.Title)
	}
	if len(got.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(got.Points))
	}
	if got.Source != model.SourceMock {
		t.Errorf("expected source mock-data, got %s", got.Source)
	}
}

func TestGenerateMock_Deterministic(t *testing.T) {
	a := GenerateMock("恐龙")
	b := GenerateMock("恐龙")
	if a.Title != b.Title || a.Summary != b.Summary {
		t.Error("mock generation must be deterministic")
	}
}
