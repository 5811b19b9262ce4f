// Package jsonextract 从模型的自由文本输出中提取单个 JSON 对象。
// 模型即便被要求返回纯 JSON，也经常用 ```json 代码块把结果围起来，
// 这里在严格解析之前先剥掉围栏和两侧空白。
package jsonextract

import (
	"encoding/json"
	"strings"
)

const fenceMarker = "```json"

// Unmarshal 清理 text 后用严格 JSON 解析器解析到 v。
// 解析失败返回错误，由调用方决定是向上传播还是代入类型化的默认值：
// 分析、概念、公式等载荷的调用方一律代入默认值，保证提示词不合规
// 不会阻断用户可见的流程。
func Unmarshal(text string, v any) error {
	return json.Unmarshal([]byte(Clean(text)), v)
}

// Clean 去掉一处 ```json 围栏标记（以及配对的收尾 ```）和两侧空白。
func Clean(text string) string {
	if strings.Contains(text, fenceMarker) {
		text = strings.Replace(text, fenceMarker+"\n", "", 1)
		text = strings.Replace(text, fenceMarker, "", 1)
		if i := strings.LastIndex(text, "```"); i >= 0 {
			head := strings.TrimSuffix(text[:i], "\n")
			text = head + text[i+3:]
		}
	}
	return strings.TrimSpace(text)
}
