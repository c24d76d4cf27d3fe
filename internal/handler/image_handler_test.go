package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kidscience/card-service/internal/llm"
	"github.com/kidscience/card-service/internal/model"
	"github.com/kidscience/card-service/internal/service"
)

type fakeImageClient struct {
	result *llm.ImageResult
	err    error
	calls  int
}

func (f *fakeImageClient) GenerateImage(ctx context.Context, c model.KnowledgeCard) (*llm.ImageResult, error) {
	f.calls++
	return f.result, f.err
}
func (f *fakeImageClient) ProviderName() string { return "gemini" }

func newImageRouter(client llm.ImageClient) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewImageService(client, nil, zap.NewNop())
	h := NewImageHandler(svc, zap.NewNop())

	r := gin.New()
	r.POST("/api/generate-image", h.GenerateImage)
	return r
}

func imageRequestBody(t *testing.T) string {
	t.Helper()
	card := model.KnowledgeCard{
		Title:        "🦕 恐龙小百科",
		Introduction: "小朋友，你知道恐龙吗？",
		Points: []model.Point{
			{Title: "📚 什么是恐龙", Content: "恐龙是很久以前生活在地球上的动物。"},
			{Title: "🔍 恐龙的种类", Content: "有的恐龙吃草，有的恐龙吃肉。"},
			{Title: "🎯 恐龙去哪了", Content: "科学家认为小行星撞击让恐龙消失了。"},
		},
		Summary: "💡 恐龙的故事真有趣！",
		Source:  model.SourceGLM,
	}
	body, err := json.Marshal(map[string]interface{}{"card": card})
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	return string(body)
}

type imageResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details"`
	Image   struct {
		MIMEType   string `json:"mimeType"`
		Base64Data string `json:"base64Data"`
	} `json:"image"`
	Metadata struct {
		Source string `json:"source"`
	} `json:"metadata"`
}

func decodeImage(t *testing.T, body []byte) imageResponse {
	t.Helper()
	var resp imageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp
}

func TestGenerateImage_Success(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G'}
	client := &fakeImageClient{result: &llm.ImageResult{MIMEType: "image/png", Data: raw}}
	r := newImageRouter(client)

	w := postJSON(r, "/api/generate-image", imageRequestBody(t))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	resp := decodeImage(t, w.Body.Bytes())
	if !resp.Success {
		t.Error("success = false, want true")
	}
	if resp.Image.MIMEType != "image/png" {
		t.Errorf("mimeType = %q", resp.Image.MIMEType)
	}
	if want := base64.StdEncoding.EncodeToString(raw); resp.Image.Base64Data != want {
		t.Errorf("base64Data = %q, want %q", resp.Image.Base64Data, want)
	}
	if resp.Metadata.Source != "gemini-api" {
		t.Errorf("metadata source = %q, want gemini-api", resp.Metadata.Source)
	}
}

func TestGenerateImage_MissingCardField(t *testing.T) {
	client := &fakeImageClient{result: &llm.ImageResult{MIMEType: "image/png", Data: []byte{1}}}
	r := newImageRouter(client)

	w := postJSON(r, "/api/generate-image", `{}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	resp := decodeImage(t, w.Body.Bytes())
	if resp.Error != "请求体缺少 card 字段" {
		t.Errorf("error = %q", resp.Error)
	}
	if client.calls != 0 {
		t.Errorf("provider called %d times, want 0", client.calls)
	}
}

func TestGenerateImage_NotConfigured(t *testing.T) {
	r := newImageRouter(nil)

	w := postJSON(r, "/api/generate-image", imageRequestBody(t))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	resp := decodeImage(t, w.Body.Bytes())
	if resp.Error != "API配置错误" {
		t.Errorf("error = %q, want API配置错误", resp.Error)
	}
}

func TestGenerateImage_ProviderTimeout(t *testing.T) {
	client := &fakeImageClient{err: llm.ErrTimeout}
	r := newImageRouter(client)

	w := postJSON(r, "/api/generate-image", imageRequestBody(t))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	resp := decodeImage(t, w.Body.Bytes())
	if resp.Error != "请求超时，请稍后再试" {
		t.Errorf("error = %q", resp.Error)
	}
	if resp.Details == "" {
		t.Error("details missing, want raw diagnostic")
	}
}
