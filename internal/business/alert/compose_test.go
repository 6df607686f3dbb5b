package alert

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseAddressList(t *testing.T) {
	got := ParseAddressList(" a@x.com, b@x.com ,,  ,c@x.com")
	want := []string{"a@x.com", "b@x.com", "c@x.com"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseAddressList = %v, want %v", got, want)
	}
	if got := ParseAddressList(""); len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
}

func TestRecipientsUnion(t *testing.T) {
	book := NewRecipientBook("qa@x.com, shared@x.com", "mod@x.com", "pack@x.com,shared@x.com, qa@x.com")

	got := book.Recipients([]Field{FieldQACheck, FieldPacking})
	want := []string{"qa@x.com", "shared@x.com", "pack@x.com"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Recipients = %v, want %v", got, want)
	}
	for _, addr := range got {
		if addr == "mod@x.com" {
			t.Fatalf("modification list should not be included")
		}
	}
}

func TestRecipientsCaseSensitive(t *testing.T) {
	book := NewRecipientBook("Ops@x.com", "ops@x.com", "")
	got := book.Recipients([]Field{FieldQACheck, FieldModification})
	if len(got) != 2 {
		t.Fatalf("expected exact string dedup, got %v", got)
	}
}

func TestSubjectPriority(t *testing.T) {
	cases := []struct {
		changed []Field
		want    string
	}{
		{[]Field{FieldQACheck, FieldModification}, "🔍 QA Double Check marked Done for Order #42"},
		{[]Field{FieldModification, FieldPacking}, "✏️ Modification Status marked Done for Order #42"},
		{[]Field{FieldPacking}, "📦 Packing Status marked Done for Order #42"},
		{nil, "📋 Order #42 Update"},
	}
	for _, tc := range cases {
		if got := Subject("42", tc.changed); got != tc.want {
			t.Errorf("Subject(%v) = %q, want %q", tc.changed, got, tc.want)
		}
	}
}

func TestBody(t *testing.T) {
	snap := &OrderSnapshot{
		ID:                    "A1",
		Fields:                FieldValues{"Done", "Pending", ""},
		OrderStatus:           "open",
		PaymentStatus:         "paid",
		RequestedDeliveryDate: "2024-05-01",
		CustomerName:          "Jane",
		Lines: []OrderLine{
			{Quantity: "2", ItemName: "Widget", UnitPrice: "3.5", LineTotal: "7"},
			{Quantity: "1", ItemName: "Gadget", UnitPrice: "10", LineTotal: "10"},
		},
	}

	want := strings.Join([]string{
		"Customer: Jane",
		"Status: open",
		"Payment: paid",
		"Requested Delivery: 2024-05-01",
		"QA Double Check: Done",
		"Modification Status: Pending",
		"Packing Status: N/A",
		"",
		"2x Widget @ $3.5 each = $7",
		"1x Gadget @ $10 each = $10",
	}, "\n")
	if got := Body(snap); got != want {
		t.Fatalf("Body mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestBodyPlaceholders(t *testing.T) {
	got := Body(&OrderSnapshot{ID: "A1"})
	if !strings.HasPrefix(got, "Customer: N/A\nStatus: N/A\n") {
		t.Fatalf("missing attributes should render N/A: %q", got)
	}
	if !strings.HasSuffix(got, "\n\nNo line items.") {
		t.Fatalf("expected line item placeholder: %q", got)
	}
}
