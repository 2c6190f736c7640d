package service

import (
	"crypto/tls"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/bookvine/internal/config"
	"github.com/bookvine/internal/constants"
)

// EmailService 通过 SMTP 发送订单通知邮件
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// OrderStatusEmailInput 订单状态邮件输入
type OrderStatusEmailInput struct {
	OrderNo    string
	Status     string
	TotalCents int64
}

// SendOrderStatusEmail 发送订单状态通知
func (s *EmailService) SendOrderStatusEmail(toEmail string, input OrderStatusEmailInput) error {
	label := orderStatusLabel(input.Status)
	subject := fmt.Sprintf("订单状态更新：%s", label)
	body := fmt.Sprintf("您的订单 %s 当前状态为：%s。\n订单金额：%.2f 元。\n\n感谢您在 Bookvine 购书。",
		input.OrderNo, label, float64(input.TotalCents)/100)
	return s.send(toEmail, subject, body)
}

func (s *EmailService) send(toEmail, subject, body string) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	client, err := s.dial()
	if err != nil {
		return err
	}
	defer client.Close()

	if s.cfg.Username != "" || s.cfg.Password != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}
	return s.deliver(client, toEmail, subject, body)
}

// dial 按配置建立 SMTP 连接：SSL 直连、STARTTLS 升级或明文。
func (s *EmailService) dial() (*smtp.Client, error) {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	tlsConfig := &tls.Config{ServerName: s.cfg.Host}

	if s.cfg.UseSSL {
		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return nil, err
		}
		client, err := smtp.NewClient(conn, s.cfg.Host)
		if err != nil {
			conn.Close()
			return nil, err
		}
		return client, nil
	}

	client, err := smtp.Dial(addr)
	if err != nil {
		return nil, err
	}
	if s.cfg.UseTLS {
		if err := client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return nil, err
		}
	}
	return client, nil
}

func (s *EmailService) deliver(client *smtp.Client, toEmail, subject, body string) error {
	if err := client.Mail(s.cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(toEmail); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		s.fromHeader(), toEmail, mime.QEncoding.Encode("UTF-8", subject), body); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func (s *EmailService) fromHeader() string {
	name := strings.TrimSpace(s.cfg.FromName)
	if name == "" {
		return s.cfg.From
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: s.cfg.From}).String()
}

func orderStatusLabel(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case constants.OrderStatusPending:
		return "待处理"
	case constants.OrderStatusProcessing:
		return "处理中"
	case constants.OrderStatusShipped:
		return "已发货"
	case constants.OrderStatusDelivered:
		return "已送达"
	case constants.OrderStatusCancelled:
		return "已取消"
	case constants.OrderStatusMixed:
		return "部分处理"
	default:
		return status
	}
}
