package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Client turns free-form text ("每月5号交房租") into a structured reminder
// draft. Purely advisory: the draft still goes through normal create
// validation, so a bad parse surfaces as a config error, never a bad row.
type Client struct {
	client *openai.Client
	model  string
}

func New(apiKey, baseURL, model string) *Client {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (c *Client) SetModel(model string) {
	c.model = model
}

// ReminderDraft is the model's structured reading of the user's text.
type ReminderDraft struct {
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Category         string          `json:"category"`
	RecurrenceType   string          `json:"recurrence_type"`
	RecurrenceConfig json.RawMessage `json:"recurrence_config"`
	FirstRemindTime  string          `json:"first_remind_time"` // YYYY-MM-DD HH:MM
	AdvanceMinutes   int             `json:"advance_minutes"`
	RawResponse      string          `json:"-"`
}

const systemPromptTemplate = `你是家庭提醒助手，负责把用户的自然语言输入解析为结构化的提醒。

当前时间: %s

输出 JSON，字段如下：
- title: 提醒标题（必填，简短）
- description: 补充说明（可为空字符串）
- category: 分类，取值之一: rent(居住) / health(健康) / pet(宠物) / finance(财务) / document(证件) / memorial(纪念) / other(其他)
- recurrence_type: 重复类型，取值之一: none / daily / weekly / monthly / yearly / smart
- recurrence_config: 与类型匹配的配置对象：
  * daily: {"time": "HH:mm"}
  * weekly: {"weekdays": [0-6 数组, 0=周日], "time": "HH:mm"}
  * monthly: {"dayOfMonth": 1-31} 或 {"lastDayOfMonth": true}，可选 "workdayAdjust": "backward"/"forward"
  * yearly: {"month": 1-12, "day": 1-31}
  * smart: {"baseMonths": 估计间隔月数, "flexibilityDays": 容差天数, "learningEnabled": true}
  * none: {}
- first_remind_time: 首次提醒时间，格式 YYYY-MM-DD HH:MM
- advance_minutes: 提前提醒分钟数，未提及时为 0

规则：
1. 相对时间（「明天」「下周一」「三个月后」）根据当前时间换算为具体日期。
2. 周期性开销类（房租、还款）优先 monthly；生日、纪念日用 yearly；
   不规律但会重复的事项（囤猫粮、换滤芯）用 smart 并估计 baseMonths。
3. 无法判断的信息留空或用默认值，不要编造。`

func getSystemPrompt(now time.Time) string {
	return fmt.Sprintf(systemPromptTemplate, now.Format("2006-01-02 15:04 Monday"))
}

var draftSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"title": {"type": "string"},
		"description": {"type": "string"},
		"category": {"type": "string", "enum": ["rent", "health", "pet", "finance", "document", "memorial", "other"]},
		"recurrence_type": {"type": "string", "enum": ["none", "daily", "weekly", "monthly", "yearly", "smart"]},
		"recurrence_config": {"type": "object"},
		"first_remind_time": {"type": "string"},
		"advance_minutes": {"type": "integer"}
	},
	"required": ["title", "category", "recurrence_type", "recurrence_config", "first_remind_time"]
}`)

type schemaWrapper struct{ raw json.RawMessage }

func (s schemaWrapper) MarshalJSON() ([]byte, error) { return s.raw, nil }

// ParseReminder asks the model to turn text into a reminder draft.
func (c *Client) ParseReminder(ctx context.Context, text string, now time.Time) (*ReminderDraft, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: getSystemPrompt(now),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "reminder_draft",
				Schema: schemaWrapper{raw: draftSchema},
				Strict: true,
			},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call AI API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from AI")
	}

	content := resp.Choices[0].Message.Content
	draft := &ReminderDraft{RawResponse: content}
	if err := json.Unmarshal([]byte(content), draft); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	return draft, nil
}
