package alert

import (
	"reflect"
	"testing"
)

func TestChangedFields(t *testing.T) {
	cases := []struct {
		name string
		prev FieldValues
		cur  FieldValues
		want []Field
	}{
		{"nothing done", FieldValues{}, FieldValues{"Pending", "", "In Progress"}, []Field{}},
		{"first done", FieldValues{}, FieldValues{"Done", "Pending", "Pending"}, []Field{FieldQACheck}},
		{"already notified", FieldValues{"Done", "", ""}, FieldValues{"Done", "", ""}, []Field{}},
		{"priority order", FieldValues{}, FieldValues{"Done", "Done", "Done"}, []Field{FieldQACheck, FieldModification, FieldPacking}},
		{"only new one", FieldValues{"Done", "Pending", ""}, FieldValues{"Done", "Done", "Pending"}, []Field{FieldModification}},
		{"case sensitive", FieldValues{}, FieldValues{"done", "DONE", ""}, []Field{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ChangedFields(tc.prev, tc.cur)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ChangedFields = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTransitionKey(t *testing.T) {
	cur := FieldValues{"Done", "Done", "Pending"}

	tagged := TransitionKey(KeyFormatTagged, "A1", []Field{FieldQACheck, FieldModification}, cur)
	if tagged != "A1-ref_field_1=Done-ref_field_2=Done" {
		t.Fatalf("tagged key = %q", tagged)
	}

	legacy := TransitionKey(KeyFormatLegacy, "A1", []Field{FieldQACheck, FieldModification}, cur)
	if legacy != "A1-Done-Done" {
		t.Fatalf("legacy key = %q", legacy)
	}
}

func TestTransitionKeyLegacyCollides(t *testing.T) {
	cur := FieldValues{"Done", "Done", "Done"}

	// 不同字段得到同一个 legacy Key，tagged 格式可以区分
	if TransitionKey(KeyFormatLegacy, "A1", []Field{FieldQACheck}, cur) !=
		TransitionKey(KeyFormatLegacy, "A1", []Field{FieldPacking}, cur) {
		t.Fatalf("expected legacy keys to collide")
	}
	if TransitionKey(KeyFormatTagged, "A1", []Field{FieldQACheck}, cur) ==
		TransitionKey(KeyFormatTagged, "A1", []Field{FieldPacking}, cur) {
		t.Fatalf("expected tagged keys to differ")
	}
}

func TestParseKeyFormat(t *testing.T) {
	for in, want := range map[string]KeyFormat{"": KeyFormatTagged, "tagged": KeyFormatTagged, " Legacy ": KeyFormatLegacy} {
		got, err := ParseKeyFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseKeyFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseKeyFormat("sha1"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestParseField(t *testing.T) {
	f, err := ParseField("ref_field_2")
	if err != nil || f != FieldModification {
		t.Fatalf("ParseField = %v, %v", f, err)
	}
	if f.Label() != "Modification Status" {
		t.Fatalf("Label = %q", f.Label())
	}
	if _, err := ParseField("ref_field_4"); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}
