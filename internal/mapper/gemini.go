package mapper

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"rais/internal/model"
)

// Collaborator 外部列映射协作方
// 不可用、超时或返回不合法结果时调用方退回规则映射
type Collaborator interface {
	AttemptMapping(ctx context.Context, req model.MappingRequest) (*model.MappingResult, error)
	Close() error
}

// GeminiCollaborator 基于 Gemini 的映射协作方
type GeminiCollaborator struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
}

// NewGeminiCollaborator 创建协作方客户端
func NewGeminiCollaborator(ctx context.Context, apiKey, modelName string, timeout time.Duration) (*GeminiCollaborator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key 为空")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("创建 genai 客户端失败: %w", err)
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	m := client.GenerativeModel(modelName)
	m.ResponseMIMEType = "application/json"

	return &GeminiCollaborator{
		client:  client,
		model:   m,
		timeout: timeout,
	}, nil
}

// Close 关闭底层连接
func (c *GeminiCollaborator) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// AttemptMapping 请求模型给出列映射方案
// 超时受 timeout 约束，任何失败都交由调用方降级处理
func (c *GeminiCollaborator) AttemptMapping(ctx context.Context, req model.MappingRequest) (*model.MappingResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.model.GenerateContent(ctx, genai.Text(buildPrompt(req)))
	if err != nil {
		return nil, fmt.Errorf("gemini 调用失败: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini 返回空应答")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	return parseMappingResult(text.String())
}

// parseMappingResult 解析模型应答，先整体反序列化，失败时做一次 JSON 修复重试
func parseMappingResult(raw string) (*model.MappingResult, error) {
	var result model.MappingResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		repaired, repairErr := jsonrepair.RepairJSON(raw)
		if repairErr != nil {
			return nil, fmt.Errorf("应答不是合法 JSON: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &result); err != nil {
			return nil, fmt.Errorf("修复后仍无法解析: %w", err)
		}
	}

	if len(result.Mapping) == 0 {
		return nil, fmt.Errorf("应答缺少 mapping 字段")
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		return nil, fmt.Errorf("confidence 超出 [0,1]: %v", result.Confidence)
	}
	return &result, nil
}

// buildPrompt 组装映射请求提示词，样本行只取前 5 行
func buildPrompt(req model.MappingRequest) string {
	var b strings.Builder

	b.WriteString("你是制造业质检报表的数据工程师。根据列名和样本数据，把源列映射到规范字段。\n\n")

	fmt.Fprintf(&b, "文件名: %s\n报表类型: %s\n列名: %s\n\n", req.Filename, req.Kind, strings.Join(req.Headers, ", "))

	b.WriteString("规范字段:\n")
	for _, f := range req.Schema {
		mark := ""
		if f.Required {
			mark = " (必填)"
		}
		fmt.Fprintf(&b, "- %s [%s]%s: %s\n", f.Name, f.Type, mark, f.Description)
	}

	if len(req.SampleRows) > 0 {
		b.WriteString("\n样本行:\n")
		limit := len(req.SampleRows)
		if limit > 5 {
			limit = 5
		}
		for i := 0; i < limit; i++ {
			cells := make([]string, 0, len(req.Headers))
			for _, h := range req.Headers {
				cells = append(cells, fmt.Sprintf("%s=%s", h, req.SampleRows[i][h].AsText()))
			}
			fmt.Fprintf(&b, "%d: %s\n", i+1, strings.Join(cells, " | "))
		}
	}

	b.WriteString(`
只输出 JSON，结构如下:
{
  "mapping": {"源列名": "规范字段名"},
  "batchGeneration": {"strategy": "date_based|composite|row_index|uuid", "fields": ["..."]},
  "typeConversions": {"规范字段名": "text|number|date"},
  "defaultValues": {"规范字段名": "默认值"},
  "confidence": 0.0,
  "explanation": "一句话说明",
  "warnings": [],
  "errors": []
}
映射不确定的列不要放进 mapping。`)

	return b.String()
}
