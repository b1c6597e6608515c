package heading

import "testing"

func TestIsHeadingLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"第一章 风起", true},
		{"第12章", true},
		{"第三节 细则", true},
		{"第一部分", true},
		{"第五回 芦雪庵争联即景诗", true},
		{"第一", true},
		{"序章", true},
		{"楔子", true},
		{"后记 写在最后", true},
		{"", false},
		{"这一行只是普通的正文内容。", false},
		{"第二天早上他醒来了", false},
		{"第##章 引论", false},
		{"序章的故事从这里开始讲起", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := IsHeadingLine(tt.line); got != tt.want {
				t.Errorf("IsHeadingLine(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}
