package graph

import "strings"

// Chunk 把 ids 按 size 切分为多批；size <= 0 时不切分。
func Chunk(ids []string, size int) [][]string {
	if len(ids) == 0 {
		return nil
	}
	if size <= 0 || len(ids) <= size {
		return [][]string{ids}
	}
	out := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		out = append(out, ids[start:end])
	}
	return out
}

// ValidIRI 判断字符串能否安全地以 <...> 形式写入查询文本。
func ValidIRI(s string) bool {
	if s == "" || !strings.Contains(s, ":") {
		return false
	}
	for _, r := range s {
		if r <= 0x20 {
			return false
		}
		switch r {
		case '<', '>', '"', '{', '}', '|', '^', '`', '\\':
			return false
		}
	}
	return true
}

// Values 生成 VALUES 子句的实体列表："<iri1> <iri2>"，非法 IRI 被跳过。
func Values(ids []string) string {
	var b strings.Builder
	for _, id := range ids {
		if !ValidIRI(id) {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('<')
		b.WriteString(id)
		b.WriteByte('>')
	}
	return b.String()
}

// FilterValid 返回 ids 中的合法 IRI。
func FilterValid(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if ValidIRI(id) {
			out = append(out, id)
		}
	}
	return out
}
