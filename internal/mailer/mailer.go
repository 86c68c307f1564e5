// Package mailer 通过 SMTP 发送账号通知邮件。
package mailer

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
	"time"

	"resumesentry/internal/config"
)

const (
	dialTimeout = 8 * time.Second
	connTimeout = 15 * time.Second
)

// Mailer 封装 SMTP 发信逻辑，使用 STARTTLS 加 PLAIN 认证。
type Mailer struct {
	host     string
	port     int
	username string
	password string
	fromName string

	welcomeTmpl *template.Template
	resetTmpl   *template.Template
}

// New 根据配置创建 Mailer。
func New(cfg config.MailConfig) (*Mailer, error) {
	welcomeTmpl, err := template.New("welcome").Parse(welcomeTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse welcome template: %w", err)
	}
	resetTmpl, err := template.New("reset").Parse(resetTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse reset template: %w", err)
	}

	return &Mailer{
		host:        cfg.SMTPHost,
		port:        cfg.SMTPPort,
		username:    cfg.Username,
		password:    cfg.Password,
		fromName:    cfg.FromName,
		welcomeTmpl: welcomeTmpl,
		resetTmpl:   resetTmpl,
	}, nil
}

// SendWelcome 向新建账号发送含登录凭据的欢迎邮件。
func (m *Mailer) SendWelcome(to, name, userID, password string) error {
	var buf bytes.Buffer
	err := m.welcomeTmpl.Execute(&buf, map[string]string{
		"Name":     name,
		"UserID":   userID,
		"Password": password,
	})
	if err != nil {
		return fmt.Errorf("render welcome email: %w", err)
	}
	return m.send(to, "Welcome to Resumes Entry", buf.String())
}

// SendPasswordReset 发送密码重置链接邮件。
func (m *Mailer) SendPasswordReset(to, name, resetLink string) error {
	var buf bytes.Buffer
	err := m.resetTmpl.Execute(&buf, map[string]string{
		"Name": name,
		"Link": resetLink,
	})
	if err != nil {
		return fmt.Errorf("render reset email: %w", err)
	}
	return m.send(to, "Password Reset Request", buf.String())
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	fromHeader := fmt.Sprintf("%s <%s>", m.fromName, m.username)
	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		htmlBody,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return fmt.Errorf("dial smtp %s: %w", addr, err)
	}
	// 整条连接设置超时，避免握手或发信途中挂死。
	_ = conn.SetDeadline(time.Now().Add(connTimeout))

	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("new smtp client: %w", err)
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := c.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := c.Mail(m.username); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt %s: %w", to, err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close body: %w", err)
	}
	return nil
}

const welcomeTemplate = `<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Welcome, {{.Name}}!</h2>
  <p>Your freelancer account has been created. Use the credentials below to log in:</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><td><b>User ID</b></td><td>{{.UserID}}</td></tr>
    <tr><td><b>Password</b></td><td>{{.Password}}</td></tr>
  </table>
  <p>Please change your password after your first login.</p>
</body>
</html>`

const resetTemplate = `<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Hello, {{.Name}}</h2>
  <p>We received a request to reset your password. Click the link below to set a new one:</p>
  <p><a href="{{.Link}}">{{.Link}}</a></p>
  <p>This link expires in one hour. If you did not request a reset, you can safely ignore this email.</p>
</body>
</html>`
