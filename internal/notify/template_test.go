package notify

import (
	"context"
	"strings"
	"testing"

	"github.com/flipdev/customer-cleanup/internal/domain"
)

func testBindings(days int) map[string]any {
	return warningBindings(domain.Customer{
		ID:        7,
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Miller",
	}, Options{StoreName: "Acme Shop", StoreURL: "https://acme.example"}, days)
}

func TestRenderDefaultTemplate(t *testing.T) {
	engine := NewTemplateEngine()

	out, err := engine.Render(DefaultTemplateID, testBindings(30))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if !strings.Contains(out.Subject, "Acme Shop") || !strings.Contains(out.Subject, "30 days") {
		t.Errorf("subject = %q", out.Subject)
	}
	if !strings.Contains(out.HTML, "Jane Miller") {
		t.Errorf("html body missing customer name: %q", out.HTML)
	}
	if !strings.Contains(out.HTML, "<strong>30</strong>") {
		t.Errorf("html body missing day count: %q", out.HTML)
	}
	if !strings.Contains(out.Text, "https://acme.example") {
		t.Errorf("text body missing store url: %q", out.Text)
	}
}

func TestRenderUnknownIDFallsBackToDefault(t *testing.T) {
	engine := NewTemplateEngine()

	fromUnknown, err := engine.Render("no_such_template", testBindings(14))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	fromDefault, err := engine.Render(DefaultTemplateID, testBindings(14))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if fromUnknown != fromDefault {
		t.Error("unknown id should render the default template")
	}
}

func TestRenderRegisteredTemplate(t *testing.T) {
	engine := NewTemplateEngine()
	engine.Register("short", WarningTemplate{
		Subject: `{{ days }} days left`,
		HTML:    `<p>{{ customer.first_name }}</p>`,
		Text:    `{{ customer.first_name }}`,
	})

	out, err := engine.Render("short", testBindings(7))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out.Subject != "7 days left" || out.Text != "Jane" {
		t.Errorf("out = %+v", out)
	}
}

func TestRenderDefaultFilterOnEmptyName(t *testing.T) {
	engine := NewTemplateEngine()

	bindings := warningBindings(domain.Customer{ID: 7, Email: "x@example.com"},
		Options{StoreName: "Acme Shop"}, 30)
	out, err := engine.Render(DefaultTemplateID, bindings)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out.HTML, "Dear Customer") {
		t.Errorf("empty name should fall back to Customer: %q", out.HTML)
	}
}

func TestLogMailerRendersAndSucceeds(t *testing.T) {
	mailer := NewLogMailer(NewTemplateEngine(), Options{StoreName: "Acme Shop"})

	err := mailer.SendWarning(context.Background(), domain.Customer{
		ID:        7,
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Miller",
	}, 30)
	if err != nil {
		t.Fatalf("SendWarning: %v", err)
	}
}
