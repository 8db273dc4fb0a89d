package mailgun

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mailgun/mailgun-go/v4"

	"github.com/user/speedsale-scraper/internal/entity"
	"github.com/user/speedsale-scraper/pkg/config"
)

//go:embed templates/*.html
var embedded embed.FS

const (
	priceAlertTemplate = "price-alert.html"
	welcomeTemplate    = "welcome.html"
	sendTimeout        = 30 * time.Second
)

// deliverer sends one rendered message.
type deliverer interface {
	Deliver(ctx context.Context, from, to, subject, text, html string) (string, error)
}

type mailgunDeliverer struct {
	mg *mailgun.MailgunImpl
}

func (d *mailgunDeliverer) Deliver(ctx context.Context, from, to, subject, text, html string) (string, error) {
	msg := d.mg.NewMessage(from, subject, text, to)
	msg.SetHtml(html)
	_, id, err := d.mg.Send(ctx, msg)
	return id, err
}

// Sender delivers price alert and welcome emails through Mailgun.
type Sender struct {
	mail      deliverer
	from      string
	appURL    string
	templates *template.Template
}

// New builds a Mailgun sender. Templates come from cfg.TemplatesDir when set,
// otherwise from the embedded defaults.
func New(cfg config.MailgunConfig, appURL string) (*Sender, error) {
	mg := mailgun.NewMailgun(cfg.Domain, cfg.APIKey)
	if cfg.EU {
		mg.SetAPIBase(mailgun.APIBaseEU)
	}

	var fsys fs.FS
	if cfg.TemplatesDir != "" {
		fsys = os.DirFS(cfg.TemplatesDir)
	} else {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, err
		}
		fsys = sub
	}
	return newSender(&mailgunDeliverer{mg: mg}, cfg.From, appURL, fsys)
}

func newSender(d deliverer, from, appURL string, fsys fs.FS) (*Sender, error) {
	tmpl, err := template.New("email").Funcs(template.FuncMap{
		"price": func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"pct":   func(v float64) string { return fmt.Sprintf("%.1f", v) },
	}).ParseFS(fsys, priceAlertTemplate, welcomeTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &Sender{
		mail:      d,
		from:      from,
		appURL:    strings.TrimRight(appURL, "/"),
		templates: tmpl,
	}, nil
}

type alertView struct {
	Alert          *entity.PriceAlert
	Name           string
	Size           string
	Color          string
	ProductURL     string
	UnsubscribeURL string
}

type welcomeView struct {
	Welcome *entity.WelcomeEmail
	Name    string
}

// AlertSubject is the subject line of a price alert.
func AlertSubject(alert *entity.PriceAlert) string {
	return fmt.Sprintf("Price Alert: %s %s - %.1f%% off!", alert.Shoe.Brand, alert.Shoe.Model, alert.DiscountPercentage)
}

// SendPriceAlert renders and sends a price alert. Failures are logged and
// reported as false.
func (s *Sender) SendPriceAlert(ctx context.Context, alert *entity.PriceAlert) bool {
	view := alertView{
		Alert:          alert,
		Name:           firstNameOr(alert.User, "there"),
		Size:           orDefault(alert.Size, "Various"),
		Color:          orDefault(alert.Color, "Various"),
		ProductURL:     orDefault(alert.ProductURL, "#"),
		UnsubscribeURL: s.appURL + "/profile",
	}
	return s.send(ctx, priceAlertTemplate, alert.User.Email, AlertSubject(alert), view,
		"shoe_id", alert.Shoe.ID,
	)
}

// SendWelcomeEmail renders and sends the welcome email.
func (s *Sender) SendWelcomeEmail(ctx context.Context, welcome *entity.WelcomeEmail) bool {
	name := firstNameOr(welcome.User, "there")
	subject := fmt.Sprintf("Welcome to SpeedSale, %s!", name)
	return s.send(ctx, welcomeTemplate, welcome.User.Email, subject, welcomeView{Welcome: welcome, Name: name})
}

func (s *Sender) send(ctx context.Context, name, to, subject string, data any, attrs ...any) bool {
	log := slog.With(append([]any{"template", name, "to", to}, attrs...)...)

	html, text, err := s.render(name, data)
	if err != nil {
		log.Error("Failed to render email", "error", err)
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	id, err := s.mail.Deliver(ctx, s.from, to, subject, text, html)
	if err != nil {
		log.Error("Failed to send email", "error", err)
		return false
	}
	log.Info("Email sent", "message_id", id)
	return true
}

func (s *Sender) render(name string, data any) (string, string, error) {
	var b strings.Builder
	if err := s.templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", "", err
	}
	html := b.String()
	text, err := textVersion(html)
	if err != nil {
		return "", "", err
	}
	return html, text, nil
}

// textVersion flattens the rendered HTML into whitespace-normalised text.
func textVersion(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find("head, style, script").Remove()
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}

func firstNameOr(u entity.User, fallback string) string {
	if u.FirstName != nil && *u.FirstName != "" {
		return *u.FirstName
	}
	return fallback
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
