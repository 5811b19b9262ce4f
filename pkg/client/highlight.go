package client

import "regexp"

// TextSegment 是助手消息按高亮标记切分后的一段。
type TextSegment struct {
	Text        string
	Highlighted bool
}

var highlightPattern = regexp.MustCompile(`@\[([^\]]+)\]`)

// ParseHighlights 解析助手文本中的 @[term] 高亮标记，
// 返回普通文本与可点击术语交替的片段序列。
func ParseHighlights(content string) []TextSegment {
	var segments []TextSegment
	last := 0
	for _, m := range highlightPattern.FindAllStringSubmatchIndex(content, -1) {
		if m[0] > last {
			segments = append(segments, TextSegment{Text: content[last:m[0]]})
		}
		segments = append(segments, TextSegment{Text: content[m[2]:m[3]], Highlighted: true})
		last = m[1]
	}
	if last < len(content) {
		segments = append(segments, TextSegment{Text: content[last:]})
	}
	return segments
}
