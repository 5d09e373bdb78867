package domain

import (
	"reflect"
	"testing"
)

func TestStatusConstants(t *testing.T) {
	if StatusUploaded != "uploaded" {
		t.Fatalf("StatusUploaded = %q", StatusUploaded)
	}
	if StatusProcessing != "processing" {
		t.Fatalf("StatusProcessing = %q", StatusProcessing)
	}
	if StatusSafe != "safe" {
		t.Fatalf("StatusSafe = %q", StatusSafe)
	}
	if StatusFlagged != "flagged" {
		t.Fatalf("StatusFlagged = %q", StatusFlagged)
	}
	if StatusFailed != "failed" {
		t.Fatalf("StatusFailed = %q", StatusFailed)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusUploaded, StatusProcessing, true},
		{StatusProcessing, StatusSafe, true},
		{StatusProcessing, StatusFlagged, true},
		{StatusProcessing, StatusFailed, true},
		{StatusUploaded, StatusSafe, false},
		{StatusUploaded, StatusFailed, false},
		{StatusSafe, StatusProcessing, false},
		{StatusFlagged, StatusProcessing, false},
		{StatusFailed, StatusProcessing, false},
		{StatusProcessing, StatusUploaded, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, s := range []Status{StatusSafe, StatusFlagged, StatusFailed} {
		if !s.Terminal() {
			t.Errorf("%s.Terminal() = false, want true", s)
		}
	}
	for _, s := range []Status{StatusUploaded, StatusProcessing} {
		if s.Terminal() {
			t.Errorf("%s.Terminal() = true, want false", s)
		}
	}
}

func TestVideoJSONTags(t *testing.T) {
	expectJSONTag(t, Video{}, "ID", "id")
	expectJSONTag(t, Video{}, "TenantID", "tenantId")
	expectJSONTag(t, Video{}, "OwnerID", "ownerId")
	expectJSONTag(t, Video{}, "Status", "status")
	expectJSONTag(t, Video{}, "Progress", "progress")
	expectJSONTag(t, Video{}, "Sensitivity", "sensitivity,omitempty")
	expectJSONTag(t, Video{}, "ProbeResult", "probeResult,omitempty")
	expectJSONTag(t, Video{}, "Errors", "errors,omitempty")
	expectJSONTag(t, Video{}, "CreatedAt", "createdAt")
}

func TestSensitivityJSONTags(t *testing.T) {
	expectJSONTag(t, Sensitivity{}, "Score", "score")
	expectJSONTag(t, Sensitivity{}, "Verdict", "verdict")
	expectJSONTag(t, Sensitivity{}, "Rules", "rules")
	expectJSONTag(t, Sensitivity{}, "Summary", "summary")
}

func TestProbeResultJSONTags(t *testing.T) {
	expectJSONTag(t, ProbeResult{}, "Codec", "codec")
	expectJSONTag(t, ProbeResult{}, "ValidatedWithFallback", "validatedWithFallback")
}

func expectJSONTag(t *testing.T, v interface{}, fieldName, want string) {
	t.Helper()
	typ := reflect.TypeOf(v)
	field, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("missing field %s", fieldName)
	}
	if got := field.Tag.Get("json"); got != want {
		t.Fatalf("%s json tag = %q, want %q", fieldName, got, want)
	}
}
