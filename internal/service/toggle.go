package service

// ToggleResult 是切换操作的结果：要么新建了关系，要么删除了已有关系
type ToggleResult int

const (
	ToggleCreated ToggleResult = iota + 1
	ToggleRemoved
)

func (r ToggleResult) String() string {
	switch r {
	case ToggleCreated:
		return "created"
	case ToggleRemoved:
		return "removed"
	default:
		return "unknown"
	}
}
