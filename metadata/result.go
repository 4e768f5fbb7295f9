package metadata

// Result 是单次外部查询的结果：Err 为 nil 时 Value 有效。
// 默认值替换只在汇总处（Service）进行，查询本身不吞错误。
type Result[T any] struct {
	Value T
	Err   error
}

// OK 查询成功。
func (r Result[T]) OK() bool { return r.Err == nil }

// Or 查询失败时返回 def。
func (r Result[T]) Or(def T) T {
	if r.Err != nil {
		return def
	}
	return r.Value
}
