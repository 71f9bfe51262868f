package email

import (
	"strings"
	"testing"
)

func TestRenderWelcomeTemplate(t *testing.T) {
	out, err := renderEmailTemplate("welcome.html", welcomeEmailData{
		baseEmailData: baseEmailData{Title: "Welcome", Heading: "Welcome aboard"},
		Name:          "Asha",
		Role:          "customer",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Welcome aboard", "Asha", "customer"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered welcome email missing %q", want)
		}
	}
}

func TestRenderReminderTemplatePluralizes(t *testing.T) {
	out, err := renderEmailTemplate("reminder.html", reminderEmailData{
		baseEmailData: baseEmailData{Title: "Pending", Heading: "Requests are waiting"},
		Name:          "Ravi",
		PendingCount:  3,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "3 pending service requests") {
		t.Errorf("plural form missing: %s", out)
	}

	out, err = renderEmailTemplate("reminder.html", reminderEmailData{
		baseEmailData: baseEmailData{Title: "Pending", Heading: "Requests are waiting"},
		Name:          "Ravi",
		PendingCount:  1,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "1 pending service request waiting") {
		t.Errorf("singular form wrong: %s", out)
	}
}

func TestRenderRequestUpdateOmitsEmptyFields(t *testing.T) {
	out, err := renderEmailTemplate("request_update.html", requestUpdateEmailData{
		baseEmailData: baseEmailData{Title: "Update", Heading: "Heads up", Body: "Something changed."},
		Name:          "Meera",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, "Service:") || strings.Contains(out, "Scheduled:") {
		t.Errorf("empty optional fields rendered: %s", out)
	}
}
