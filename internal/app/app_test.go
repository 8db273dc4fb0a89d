package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/speedsale-scraper/internal/adapter/mailgun"
	"github.com/user/speedsale-scraper/internal/entity"
	"github.com/user/speedsale-scraper/pkg/config"
)

func TestStrategiesCoverBothKinds(t *testing.T) {
	strategies := Strategies(config.ScraperConfig{Headless: true})

	kinds := make([]entity.StrategyKind, 0, len(strategies))
	for _, s := range strategies {
		kinds = append(kinds, s.Kind())
	}
	assert.ElementsMatch(t, []entity.StrategyKind{entity.StrategyStatic, entity.StrategyDynamic}, kinds)
}

func TestNewSenderFallsBackToLog(t *testing.T) {
	sender, err := NewSender(&config.Config{})
	require.NoError(t, err)
	assert.IsType(t, mailgun.LogSender{}, sender)
}

func TestNewSenderUsesMailgun(t *testing.T) {
	cfg := &config.Config{
		Mailgun: config.MailgunConfig{APIKey: "key-test", Domain: "mg.example.com", From: "a@example.com"},
		Alerts:  config.AlertsConfig{AppURL: "https://speedsale.example"},
	}
	sender, err := NewSender(cfg)
	require.NoError(t, err)
	assert.IsType(t, &mailgun.Sender{}, sender)
}
