package prompt

import "testing"

func TestExpressions(t *testing.T) {
	if len(Expressions) != 16 {
		t.Fatalf("expected 16 expressions, got %d", len(Expressions))
	}

	seen := make(map[string]bool, len(Expressions))
	for _, e := range Expressions {
		if e == "" {
			t.Error("empty expression in catalog")
		}
		if seen[e] {
			t.Errorf("duplicate expression %q", e)
		}
		seen[e] = true
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		expression string
		want       string
	}{
		{"smile", "make the character smile"},
		{"looking down in shape", "make the character looking down in shape"},
		{"with a neutral expression", "make the character with a neutral expression"},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			if got := Build(tt.expression); got != tt.want {
				t.Errorf("Build(%q) = %q, want %q", tt.expression, got, tt.want)
			}
		})
	}
}
