package mail

import (
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestRenderPurchaseConfirmation(t *testing.T) {
	type item struct {
		Title string
		Price string
	}
	body, err := renderTemplate("purchase-confirmation", map[string]interface{}{
		"order_id": 7,
		"items":    []item{{Title: "JavaScript Mastery", Price: "49.99"}},
		"total":    "49.99",
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(body, "JavaScript Mastery") || !strings.Contains(body, "49.99") {
		t.Errorf("rendered body missing order details: %s", body)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	if _, err := renderTemplate("no-such-template", nil); err == nil {
		t.Fatal("unknown template should fail")
	}
}

func TestDisabledMailerOnlyLogs(t *testing.T) {
	m := NewSMTPMailer("localhost", 25, "", "", "noreply@levelup.com", true, nil, zap.NewNop())

	err := m.Send("user@levelup.com", "Bienvenue sur LevelUp", "welcome", map[string]interface{}{
		"name": "Test User",
	})
	if err != nil {
		t.Fatalf("disabled mailer must not fail: %v", err)
	}
}
