package store

import "encoding/json"

// DecodeList は格納されたJSON配列を復号する。
// 値が不在・空・壊れている場合は空リストに退化し、エラーは伝播させない
// （壊れた格納値は常にデフォルト値として扱う、という元設計の方針を保持）。
func DecodeList[T any](raw string, present bool) []T {
	if !present || raw == "" {
		return []T{}
	}
	var list []T
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return []T{}
	}
	if list == nil {
		return []T{}
	}
	return list
}

// DecodeRecord は格納されたJSONオブジェクトを復号する。
// 値が不在・空・壊れている場合はok=falseを返す。
func DecodeRecord[T any](raw string, present bool) (T, bool) {
	var rec T
	if !present || raw == "" {
		return rec, false
	}
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		var zero T
		return zero, false
	}
	return rec, true
}

// EncodeJSON は値をJSON文字列にエンコードする。
// ドメイン型のマーシャルは失敗しない前提で、失敗時は空文字列を返す。
func EncodeJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
