package sse

import "bytes"

// LineBuffer 将任意切分的字节块重组为完整的文本行。
// 网络分块不保证与行边界对齐，甚至可能把一个多字节字符拆在两个块里；
// 在字节层面缓冲并只在 '\n' 处切分即可（UTF-8 的多字节序列中不会出现 '\n'），
// 因此任何分块方式都产出相同的行序列。
type LineBuffer struct {
	buf []byte
}

// Feed 追加一个数据块并返回其中所有完整的行（不含换行符）。
// 最后一个未终止的片段保留在缓冲区中，等待后续数据。
func (b *LineBuffer) Feed(chunk []byte) []string {
	b.buf = append(b.buf, chunk...)

	var lines []string
	for {
		i := bytes.IndexByte(b.buf, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, string(b.buf[:i]))
		b.buf = b.buf[i+1:]
	}
	return lines
}

// Rest 返回当前缓冲的未终止片段。流结束时它会被丢弃：
// 没有终止符的行无法可靠解析，调用方可据此记录日志。
func (b *LineBuffer) Rest() string {
	return string(b.buf)
}
