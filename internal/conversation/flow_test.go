package conversation

import "testing"

func TestBookingFlowShape(t *testing.T) {
	flow := NewBookingFlow()

	if flow.Name != "booking" {
		t.Errorf("expected booking flow, got %s", flow.Name)
	}
	if len(flow.Steps) != 5 {
		t.Fatalf("expected 5 steps, got %d", len(flow.Steps))
	}

	wantIDs := []string{"service_selection", "date_selection", "time_selection", "customer_info", "confirmation"}
	for i, id := range wantIDs {
		if flow.Steps[i].ID != id {
			t.Errorf("step %d: expected %s, got %s", i, id, flow.Steps[i].ID)
		}
	}

	if flow.Steps[4].Validation != nil {
		t.Error("expected confirmation step to carry no validation")
	}
}

func TestBookingFlowInstancesAreIndependent(t *testing.T) {
	a := NewBookingFlow()
	b := NewBookingFlow()

	a.Cursor = 3
	a.Variables["selectedService"] = "haircut"

	if b.Cursor != 0 {
		t.Errorf("expected independent cursor, got %d", b.Cursor)
	}
	if len(b.Variables) != 0 {
		t.Errorf("expected independent variable bag, got %v", b.Variables)
	}
}

func TestDatePattern(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"03/15/2026", true},
		{"3/5/2026", true},
		{"12/31/1999", true},
		{"2026-03-15", false},
		{"next tuesday", false},
		{"13/15/26", false},
	}

	for _, tt := range tests {
		if got := datePattern.MatchString(tt.value); got != tt.want {
			t.Errorf("datePattern(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestTimePattern(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"2:00 PM", true},
		{"11:30am", true},
		{"10:15 AM", true},
		{"14:00", false},
		{"2 PM", false},
	}

	for _, tt := range tests {
		if got := timePattern.MatchString(tt.value); got != tt.want {
			t.Errorf("timePattern(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
