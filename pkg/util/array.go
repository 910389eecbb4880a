package util

// InSlice determines whether an element is in a slice (generic version)
// InSlice 判断元素是否在切片中（泛型版本）
func InSlice[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

// ArrayUnique removes duplicate elements from a slice, keeping first-seen order
// ArrayUnique 移除切片中的重复元素，保持首次出现的顺序
func ArrayUnique(arr []string) []string {
	result := make([]string, 0)
	m := make(map[string]bool)
	for _, v := range arr {
		if !m[v] {
			m[v] = true
			result = append(result, v)
		}
	}
	return result
}
