package services

import (
	"context"
	"strings"

	"github.com/civicsight/internal/models"
	"github.com/civicsight/pkg/email"
)

// EmailNotifier 通过 SMTP 通知报告作者状态变更
type EmailNotifier struct {
	mailer *email.Mailer
	// reportLinkBase 不为空时邮件中附带报告链接
	reportLinkBase string
}

// NewEmailNotifier 创建邮件通知器
func NewEmailNotifier(mailer *email.Mailer, reportLinkBase string) *EmailNotifier {
	return &EmailNotifier{mailer: mailer, reportLinkBase: strings.TrimRight(reportLinkBase, "/")}
}

func (n *EmailNotifier) NotifyStatusChange(ctx context.Context, author models.User, report models.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	update := email.StatusUpdate{
		RecipientEmail: author.Email,
		RecipientName:  author.Name,
		ReportID:       report.ID,
		IssueType:      report.IssueType,
		Status:         string(report.Status),
	}
	if n.reportLinkBase != "" {
		update.ReportLink = n.reportLinkBase + "/" + report.ID
	}
	return n.mailer.SendStatusUpdateEmail(update)
}
