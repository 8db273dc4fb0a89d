package mailgun

import (
	"context"
	"log/slog"

	"github.com/user/speedsale-scraper/internal/entity"
	"github.com/user/speedsale-scraper/internal/repository"
)

// LogSender logs notifications instead of sending them. It is used when no
// Mailgun credentials are configured.
type LogSender struct{}

func (LogSender) SendPriceAlert(_ context.Context, alert *entity.PriceAlert) bool {
	slog.Info("Price alert",
		"dry_run", true,
		"to", alert.User.Email,
		"subject", AlertSubject(alert),
		"product_url", alert.ProductURL,
	)
	return true
}

func (LogSender) SendWelcomeEmail(_ context.Context, welcome *entity.WelcomeEmail) bool {
	slog.Info("Welcome email", "dry_run", true, "to", welcome.User.Email)
	return true
}

// SampleAlert is the fixed alert used to check email delivery end to end.
func SampleAlert(to string) *entity.PriceAlert {
	fname, sname := "Test", "User"
	return &entity.PriceAlert{
		User: entity.User{ID: "test-user", Email: to, FirstName: &fname, LastName: &sname},
		Shoe: entity.AlertShoe{
			ID:       "test-shoe",
			Brand:    "Nike",
			Model:    "Air Zoom Pegasus 40",
			ImageURL: "https://via.placeholder.com/120x120?text=Test+Shoe",
			Category: "Running",
			Gender:   "Unisex",
		},
		CurrentPrice:          89.99,
		OriginalPrice:         129.99,
		DiscountPercentage:    30.8,
		UserDiscountThreshold: 20,
		ProductURL:            "https://www.sportsshoes.com/product/nike/air-zoom-pegasus-40/",
		Size:                  "UK 9",
		Color:                 "Black/White",
	}
}

// SendTestEmail sends SampleAlert to the given address.
func SendTestEmail(ctx context.Context, sender repository.NotificationSender, to string) bool {
	return sender.SendPriceAlert(ctx, SampleAlert(to))
}
