package filterexpr

import (
	"strings"
	"testing"
	"time"
)

var wordSchema = Schema{
	Fields: map[string]ValueKind{
		"term":     KindString,
		"interval": KindInt,
		"ease":     KindNumber,
		"due":      KindBool,
		"next":     KindTimestamp,
	},
}

func wordVars(term string, interval int64, ease float64, due bool, next time.Time) map[string]any {
	return map[string]any{
		"term":     term,
		"interval": interval,
		"ease":     ease,
		"due":      due,
		"next":     next,
	}
}

func TestCompileAndMatch(t *testing.T) {
	next := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	vars := wordVars("gato", 8, 2.35, false, next)

	cases := []struct {
		expr string
		want bool
	}{
		{expr: "", want: true},
		{expr: `term == "gato"`, want: true},
		{expr: `term.startsWith("ca")`, want: false},
		{expr: `interval >= 7 && ease < 2.5`, want: true},
		{expr: `interval > 2.5`, want: true},
		{expr: `due || interval > 30`, want: false},
		{expr: `next >= timestamp("2025-01-01T00:00:00Z")`, want: true},
		{expr: `term in ["casa", "gato"]`, want: true},
	}
	for _, c := range cases {
		f, err := Compile(c.expr, wordSchema)
		if err != nil {
			t.Fatalf("Compile(%q): %v", c.expr, err)
		}
		got, err := f.Match(vars)
		if err != nil {
			t.Fatalf("Match(%q): %v", c.expr, err)
		}
		if got != c.want {
			t.Fatalf("Match(%q) = %v, want %v", c.expr, got, c.want)
		}
	}
}

func TestCompileRejectsBadExpressions(t *testing.T) {
	cases := map[string]string{
		`unknown == 1`:     "undeclared",
		`term ==`:          "invalid filter",
		`interval + 1`:     "boolean",
		`term == 1 && due`: "invalid filter",
	}
	for expr, fragment := range cases {
		_, err := Compile(expr, wordSchema)
		if err == nil {
			t.Fatalf("expected %q to fail", expr)
		}
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("Compile(%q) error %q does not mention %q", expr, err, fragment)
		}
	}
}

func TestNilFilterMatchesEverything(t *testing.T) {
	var f *Filter
	ok, err := f.Match(nil)
	if err != nil || !ok {
		t.Fatalf("nil filter: ok=%v err=%v", ok, err)
	}
}

func TestParseOrderBy(t *testing.T) {
	schema := OrderSchema{Fields: map[string]struct{}{"term": {}, "next_review": {}, "interval": {}}}

	keys, err := ParseOrderBy("next_review, term desc", schema)
	if err != nil {
		t.Fatalf("ParseOrderBy: %v", err)
	}
	if len(keys) != 2 || keys[0] != (OrderKey{Key: "next_review"}) || keys[1] != (OrderKey{Key: "term", Desc: true}) {
		t.Fatalf("unexpected keys %+v", keys)
	}

	if keys, err := ParseOrderBy("  ", schema); err != nil || keys != nil {
		t.Fatalf("blank order_by: keys=%v err=%v", keys, err)
	}

	for _, bad := range []string{"ease", "term sideways", "term, term", "term, interval, next_review", "term asc extra"} {
		if _, err := ParseOrderBy(bad, schema); err == nil {
			t.Fatalf("expected %q to fail", bad)
		}
	}
}
