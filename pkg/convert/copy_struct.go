package convert

import (
	"github.com/bytedance/sonic"
	"github.com/jinzhu/copier"
)

// StructAssign copies same-named fields from src into dst and returns dst
// StructAssign 将 src 与 dst 的相同字段名的值复制到 dst 中并返回 dst
func StructAssign(src any, dst any) any {
	copier.Copy(dst, src)
	return dst
}

// StructToMap converts a struct into a map via JSON round-trip
// StructToMap 通过 JSON 序列化将结构体转换为 map
func StructToMap(param any, data map[string]interface{}) error {
	str, err := sonic.Marshal(param)
	if err != nil {
		return err
	}
	return sonic.Unmarshal(str, &data)
}
