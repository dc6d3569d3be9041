// Package classifier 是外部问题分类服务的客户端。
// 网络错误、超时和响应格式错误统一返回 Degraded 结果，调用方无需区分。
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/civicsight/internal/models"
	"github.com/civicsight/pkg/utils"
)

// Kind 决定调用哪个分类接口
type Kind string

const (
	KindImage Kind = "image"
	KindAudio Kind = "audio"
)

const maxResponseBytes = 1 << 20

// Classification 规范化后的分类结果
type Classification struct {
	IssueType     string   `json:"issueType"`
	SeverityScore float64  `json:"severityScore"`
	Tags          []string `json:"tags"`
	// Description 音频请求的转写文本，服务未返回时为空
	Description string `json:"description,omitempty"`
}

// DefaultClassification 分类不可用时使用的默认结果
func DefaultClassification() Classification {
	return Classification{
		IssueType:     models.DefaultIssueType,
		SeverityScore: 0,
		Tags:          []string{},
	}
}

// Result 成功的分类结果，或带失败原因的降级结果
type Result struct {
	Classification Classification
	// Raw 成功时的原始响应，用于审计
	Raw    json.RawMessage
	Reason string
	ok     bool
}

// Success 包装服务返回的分类结果
func Success(c Classification, raw json.RawMessage) Result {
	return Result{Classification: c, Raw: raw, ok: true}
}

// Degraded 返回默认分类，并记录失败原因
func Degraded(reason string) Result {
	return Result{Classification: DefaultClassification(), Reason: reason}
}

// OK 服务是否返回了可用的分类
func (r Result) OK() bool { return r.ok }

// Classifier 分类器接口
type Classifier interface {
	Classify(ctx context.Context, kind Kind, mediaURL, description string) Result
}

// Client 通过 HTTP 调用分类服务
type Client struct {
	BaseURL      string
	ImageTimeout time.Duration
	AudioTimeout time.Duration
	client       *http.Client
}

// NewClient 创建分类服务客户端。超时通过每次调用的 context 控制，http.Client 本身不设超时。
func NewClient(baseURL string, imageTimeout, audioTimeout time.Duration) *Client {
	return &Client{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		ImageTimeout: imageTimeout,
		AudioTimeout: audioTimeout,
		client:       &http.Client{},
	}
}

func (c *Client) timeoutFor(kind Kind) time.Duration {
	if kind == KindAudio {
		return c.AudioTimeout
	}
	return c.ImageTimeout
}

// Classify 对 kind 对应的接口只请求一次，不返回错误：任何失败都得到 Degraded 结果。
func (c *Client) Classify(ctx context.Context, kind Kind, mediaURL, description string) Result {
	if timeout := c.timeoutFor(kind); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	raw, err := c.post(ctx, kind, mediaURL, description)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Degraded(fmt.Sprintf("timeout after %s", c.timeoutFor(kind)))
		}
		return Degraded(err.Error())
	}

	classification, err := decode(raw)
	if err != nil {
		return Degraded(err.Error())
	}
	return Success(classification, raw)
}

func (c *Client) post(ctx context.Context, kind Kind, mediaURL, description string) ([]byte, error) {
	data, err := json.Marshal(map[string]string{
		"mediaUrl":    mediaURL,
		"description": description,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/api/ai/classify/%s", c.BaseURL, kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("classifier returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

type responsePayload struct {
	Error         json.RawMessage `json:"error"`
	IssueType     string          `json:"issueType"`
	SeverityScore *float64        `json:"severityScore"`
	Tags          []string        `json:"tags"`
	Description   string          `json:"description"`
}

// decode 解析 2xx 响应体，空响应或包含 error 字段的响应视为失败
func decode(body []byte) (Classification, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Classification{}, errors.New("empty response from classifier")
	}

	var payload responsePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Classification{}, fmt.Errorf("decoding response: %w", err)
	}
	if len(payload.Error) > 0 && string(payload.Error) != "null" {
		return Classification{}, fmt.Errorf("classifier error: %s", string(payload.Error))
	}

	c := Classification{
		IssueType:   strings.TrimSpace(payload.IssueType),
		Tags:        utils.NormalizeTags(payload.Tags),
		Description: strings.TrimSpace(payload.Description),
	}
	if c.IssueType == "" {
		c.IssueType = models.DefaultIssueType
	}
	if payload.SeverityScore != nil {
		c.SeverityScore = *payload.SeverityScore
	}
	if c.SeverityScore < 0 || math.IsNaN(c.SeverityScore) || math.IsInf(c.SeverityScore, 0) {
		c.SeverityScore = 0
	}
	return c, nil
}
