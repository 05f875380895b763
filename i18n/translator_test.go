package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("required", nil); msg == "required" || msg == "" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("required", nil); msg != ":attributeは必須です。" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_UnknownCodeFallsBackToCode(t *testing.T) {
	if msg := T("no_such_rule", nil); msg != "no_such_rule" {
		t.Fatalf("got %q", msg)
	}
}

func TestReplace_LongestKeyFirst(t *testing.T) {
	got := Replace(":value / :values", map[string]string{"value": "a", "values": "a, b"})
	if got != "a / a, b" {
		t.Fatalf("got %q", got)
	}
}

type prefixed struct{}

func (prefixed) Message(code string, _ map[string]string) string { return "X-" + code }

func TestSetTranslator_CustomAndReset(t *testing.T) {
	SetTranslator(prefixed{})
	if msg := T("min", nil); msg != "X-min" {
		t.Fatalf("got %q", msg)
	}
	SetTranslator(nil)
	if msg := Attribute(T("min", map[string]string{"min": "3"}), "age"); msg != "The age field must be at least 3." {
		t.Fatalf("got %q", msg)
	}
}
