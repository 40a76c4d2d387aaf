package monitor

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"github.com/silema/silema/internal/notifier"
)

const (
	appName            = "死了吗"
	defaultContactName = "紧急联系人"
	checkInTimeLayout  = "2006/1/2 15:04:05"
)

// Duration is a whole-minute span split into calendar components.
type Duration struct {
	Days    int
	Hours   int
	Minutes int
}

// Breakdown splits a minute count into days, hours and minutes.
func Breakdown(minutes int) Duration {
	if minutes < 0 {
		minutes = 0
	}
	return Duration{
		Days:    minutes / (24 * 60),
		Hours:   (minutes % (24 * 60)) / 60,
		Minutes: minutes % 60,
	}
}

// String drops leading zero components: 90 → "1小时30分钟", 45 → "45分钟".
func (d Duration) String() string {
	switch {
	case d.Days > 0:
		return fmt.Sprintf("%d天%d小时%d分钟", d.Days, d.Hours, d.Minutes)
	case d.Hours > 0:
		return fmt.Sprintf("%d小时%d分钟", d.Hours, d.Minutes)
	default:
		return fmt.Sprintf("%d分钟", d.Minutes)
	}
}

// FormatMinutes renders a minute count the way alert messages show it.
func FormatMinutes(minutes int) string {
	return Breakdown(minutes).String()
}

// AlertContent is the data an alert message is rendered from.
type AlertContent struct {
	DisplayName      string
	UserEmail        string
	LastCheckIn      time.Time
	MinutesOverdue   float64
	ThresholdMinutes int
	ContactName      string
}

// Render produces the subject and the plain/HTML bodies for one contact.
func Render(c AlertContent, loc *time.Location) notifier.Message {
	if loc == nil {
		loc = time.UTC
	}
	contact := c.ContactName
	if contact == "" {
		contact = defaultContactName
	}
	elapsed := FormatMinutes(int(math.Floor(c.MinutesOverdue)))
	threshold := FormatMinutes(c.ThresholdMinutes)
	last := c.LastCheckIn.In(loc).Format(checkInTimeLayout)

	var text strings.Builder
	fmt.Fprintf(&text, "%s，您好！\n\n", contact)
	fmt.Fprintf(&text, "这是一封来自\"%s\"应用的紧急通知。\n\n", appName)
	text.WriteString("用户信息：\n")
	fmt.Fprintf(&text, "- 姓名：%s\n", c.DisplayName)
	fmt.Fprintf(&text, "- 邮箱：%s\n", c.UserEmail)
	fmt.Fprintf(&text, "- 最后签到时间：%s\n", last)
	fmt.Fprintf(&text, "- 已超过设定时间：%s\n\n", elapsed)
	fmt.Fprintf(&text, "%s设定的签到间隔是%s，目前已经超过该时间未签到，可能发生意外情况，请尽快联系或确认其安全状况。\n\n", c.DisplayName, threshold)
	text.WriteString("---\n")
	fmt.Fprintf(&text, "此邮件由\"%s\"应用自动发送，请勿回复。", appName)

	return notifier.Message{
		Subject: fmt.Sprintf("【紧急通知】%s 已超过%s未签到", c.DisplayName, elapsed),
		Text:    text.String(),
		HTML:    renderHTML(contact, c, last, elapsed, threshold),
	}
}

func renderHTML(contact string, c AlertContent, last, elapsed, threshold string) string {
	name := html.EscapeString(c.DisplayName)
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f9f9f9;">`)
	b.WriteString(`<div style="background-color: #fff; padding: 30px; border-radius: 10px;">`)
	b.WriteString(`<h2 style="color: #ff4444; margin-top: 0;">⚠️ 紧急通知</h2>`)
	fmt.Fprintf(&b, `<p>%s，您好！</p>`, html.EscapeString(contact))
	fmt.Fprintf(&b, `<p>这是一封来自"%s"应用的紧急通知。</p>`, appName)
	b.WriteString(`<div style="background-color: #fff3cd; border-left: 4px solid #ffc107; padding: 15px; margin: 20px 0;">`)
	b.WriteString(`<h3 style="margin-top: 0; color: #856404;">用户信息</h3><ul style="list-style: none; padding: 0;">`)
	fmt.Fprintf(&b, `<li><strong>姓名：</strong>%s</li>`, name)
	fmt.Fprintf(&b, `<li><strong>邮箱：</strong>%s</li>`, html.EscapeString(c.UserEmail))
	fmt.Fprintf(&b, `<li><strong>最后签到时间：</strong>%s</li>`, last)
	fmt.Fprintf(&b, `<li><strong>设定的签到间隔：</strong>%s</li>`, threshold)
	fmt.Fprintf(&b, `<li><strong>已超过：</strong><span style="color: #ff4444; font-size: 18px; font-weight: bold;">%s</span></li>`, elapsed)
	b.WriteString(`</ul></div>`)
	fmt.Fprintf(&b, `<p style="color: #ff4444; font-size: 16px;"><strong>%s设定的签到间隔是%s，目前已经超过该时间未签到，可能发生意外情况，请尽快联系或确认其安全状况。</strong></p>`, name, threshold)
	b.WriteString(`<hr style="border: none; border-top: 1px solid #ddd; margin: 30px 0;">`)
	fmt.Fprintf(&b, `<p style="color: #999; font-size: 12px;">此邮件由"%s"应用自动发送，请勿回复。</p>`, appName)
	b.WriteString(`</div></div>`)
	return b.String()
}
