package canvasrenderer

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func runeWidth(s string) float64 { return float64(utf8.RuneCountInString(s)) }

// 当片段宽度与限制恰好相等时，不应再切出空片段。
func TestSplitTokenByWidthExactFit(t *testing.T) {
	parts := splitTokenByWidth("aaaaaa", 3, runeWidth)
	if len(parts) != 2 || parts[0] != "aaa" || parts[1] != "aaa" {
		t.Fatalf("parts=%q, want [aaa aaa]", parts)
	}
	for _, p := range parts {
		if p == "" {
			t.Fatalf("unexpected empty chunk in %q", parts)
		}
	}
}

func TestSplitTokenByWidthKeepsMultibyte(t *testing.T) {
	parts := splitTokenByWidth("列宽调整手柄", 4, runeWidth)
	if got := strings.Join(parts, ""); got != "列宽调整手柄" {
		t.Fatalf("joined=%q", got)
	}
	if len(parts) != 2 || parts[0] != "列宽调整" {
		t.Fatalf("parts=%q", parts)
	}
}

func TestSplitTokenByWidthUnbounded(t *testing.T) {
	if parts := splitTokenByWidth("abc", 0, runeWidth); len(parts) != 1 {
		t.Fatalf("parts=%q, want single chunk", parts)
	}
}
