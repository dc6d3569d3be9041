package handlers

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"

	"github.com/civicsight/internal/models"
	"github.com/civicsight/internal/services"
	"github.com/civicsight/pkg/email"
	"github.com/civicsight/pkg/utils"
)

// FeedSize 是社区 RSS 中的报告条数
const FeedSize = 50

var md = goldmark.New()

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	Description string  `xml:"description"`
	Category    string  `xml:"category,omitempty"`
	Author      string  `xml:"author,omitempty"`
	GUID        rssGUID `xml:"guid"`
	PubDate     string  `xml:"pubDate"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// FeedHandler 输出最新社区报告的 RSS 2.0 订阅源
type FeedHandler struct {
	service services.ReportService
	siteURL string
}

// NewFeedHandler 创建一个新的 FeedHandler 实例。siteURL 为空时使用请求的 Host。
func NewFeedHandler(service services.ReportService, siteURL string) *FeedHandler {
	return &FeedHandler{service: service, siteURL: strings.TrimRight(siteURL, "/")}
}

// ReportsFeed godoc
// @Summary 社区报告 RSS
// @Description 最新 50 条报告的 RSS 2.0 订阅源，无需认证
// @Tags Feed
// @Produce xml
// @Success 200 {string} string "RSS 2.0 文档"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /feed/reports.rss [get]
func (h *FeedHandler) ReportsFeed(c *gin.Context) {
	reports, err := h.service.GetRecentReports(c.Request.Context(), FeedSize)
	if err != nil {
		respondServiceError(c, err, "生成订阅源失败")
		return
	}

	base := h.siteURL
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + c.Request.Host
	}

	feed := rssFeed{
		Version: "2.0",
		Channel: rssChannel{
			Title:       "CivicSight community reports",
			Link:        base,
			Description: "The latest civic issues reported by citizens",
			Items:       make([]rssItem, 0, len(reports)),
		},
	}
	if len(reports) > 0 {
		feed.Channel.LastBuildDate = reports[0].CreatedAt.UTC().Format(time.RFC1123Z)
	}
	for _, r := range reports {
		feed.Channel.Items = append(feed.Channel.Items, buildFeedItem(base, r))
	}

	out, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		log.Printf("[Feed] marshal failed: %v", err)
		utils.RespondInternalServerError(c, "生成订阅源失败")
		return
	}
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", append([]byte(xml.Header), out...))
}

func buildFeedItem(base string, r models.ReportWithAuthor) rssItem {
	title := email.HumanizeLabel(r.IssueType)
	if r.Location.City != "" {
		title += " in " + r.Location.City
	}
	item := rssItem{
		Title:       title,
		Link:        base + "/api/v1/reports/" + r.ID,
		Description: renderReportHTML(r),
		Category:    r.IssueType,
		GUID:        rssGUID{Value: r.ID},
		PubDate:     r.CreatedAt.UTC().Format(time.RFC1123Z),
	}
	if r.Author != nil {
		item.Author = fmt.Sprintf("%s (%s)", r.Author.Email, r.Author.Name)
	}
	return item
}

// renderReportHTML 将描述按 Markdown 渲染，并附上状态与严重程度
func renderReportHTML(r models.ReportWithAuthor) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(r.Description), &buf); err != nil {
		buf.Reset()
		buf.WriteString("<p>" + html.EscapeString(r.Description) + "</p>")
	}
	fmt.Fprintf(&buf, "<p>Status: %s · Severity: %s · Upvotes: %d</p>",
		html.EscapeString(email.HumanizeLabel(string(r.Status))),
		html.EscapeString(email.HumanizeLabel(string(r.Severity))),
		r.UpvoteCount)
	if r.ImageURL != nil {
		fmt.Fprintf(&buf, `<p><img src="%s" alt="report photo"></p>`, html.EscapeString(*r.ImageURL))
	}
	return buf.String()
}
