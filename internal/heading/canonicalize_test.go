package heading

import "testing"

func TestCanonicalize_PureNumeralsPassThrough(t *testing.T) {
	c := NewCanonicalizer()
	tests := []struct {
		level int
		title string
	}{
		{1, "第1章 导言"},
		{1, "第二章 方法"},
		{2, "第IV节 讨论"},
		{1, "前言"},
		{1, "Chapter 5"},
	}
	for _, tt := range tests {
		if got := c.Canonicalize(tt.level, tt.title); got != tt.title {
			t.Errorf("Canonicalize(%d, %q) = %q, want unchanged", tt.level, tt.title, got)
		}
	}
}

func TestCanonicalize_GarbledNumeralSubstituted(t *testing.T) {
	c := NewCanonicalizer()

	if got := c.Canonicalize(1, "第##章 引论"); got != "第一章 引论" {
		t.Errorf("first garbled heading = %q, want %q", got, "第一章 引论")
	}
	if got := c.Canonicalize(1, "第??章 方法"); got != "第二章 方法" {
		t.Errorf("second garbled heading = %q, want %q", got, "第二章 方法")
	}
}

func TestCanonicalize_CountersScopedToAncestors(t *testing.T) {
	c := NewCanonicalizer()

	// Two garbled sections under the first chapter, then a new chapter;
	// its sections must restart numbering.
	c.Canonicalize(1, "第一章 概述")
	if got := c.Canonicalize(2, "第¤节 起源"); got != "第一节 起源" {
		t.Errorf("section 1 = %q, want %q", got, "第一节 起源")
	}
	if got := c.Canonicalize(2, "第¤节 发展"); got != "第二节 发展" {
		t.Errorf("section 2 = %q, want %q", got, "第二节 发展")
	}
	c.Canonicalize(1, "第二章 方法")
	if got := c.Canonicalize(2, "第¤节 数据"); got != "第一节 数据" {
		t.Errorf("section under new chapter = %q, want %q (counter must reset)", got, "第一节 数据")
	}
}

func TestCanonicalize_InjectsDefaultMarker(t *testing.T) {
	tests := []struct {
		name  string
		level int
		title string
		want  string
	}{
		{
			name:  "level 1 gets chapter marker",
			level: 1,
			title: "第3 导言",
			want:  "第3章 导言",
		},
		{
			name:  "level 3 gets section marker",
			level: 3,
			title: "第2 细节",
			want:  "第2节 细节",
		},
		{
			name:  "bare numeral",
			level: 1,
			title: "第十二",
			want:  "第十二章",
		},
		{
			name:  "marker reused from rest of title",
			level: 1,
			title: "第2 本篇总结",
			want:  "第2篇 本篇总结",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCanonicalizer()
			if got := c.Canonicalize(tt.level, tt.title); got != tt.want {
				t.Errorf("Canonicalize(%d, %q) = %q, want %q", tt.level, tt.title, got, tt.want)
			}
		})
	}
}

func TestCanonicalize_GarbledNumeralWithoutMarker(t *testing.T) {
	c := NewCanonicalizer()

	if got := c.Canonicalize(1, "第◇◇ 引言"); got != "第一章 引言" {
		t.Errorf("first markerless garbled heading = %q, want %q", got, "第一章 引言")
	}
	if got := c.Canonicalize(1, "第## 方法"); got != "第二章 方法" {
		t.Errorf("second markerless garbled heading = %q, want %q", got, "第二章 方法")
	}
}

func TestCanonicalize_ProseTitlesUntouched(t *testing.T) {
	c := NewCanonicalizer()
	tests := []string{
		"第二天早上他醒来了",
		"第一次远行",
	}
	for _, in := range tests {
		if got := c.Canonicalize(1, in); got != in {
			t.Errorf("Canonicalize(1, %q) = %q, want unchanged", in, got)
		}
	}
}

func TestCanonicalize_UnparseableDiPrefix(t *testing.T) {
	c := NewCanonicalizer()
	in := "第之后的事"
	if got := c.Canonicalize(1, in); got != in {
		t.Errorf("Canonicalize(1, %q) = %q, want unchanged", in, got)
	}
}
