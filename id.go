package imap

import (
	"strings"
)

// IDData 表示客户端或服务器的身份信息（RFC 2971）。
//
// 空字段不会被编码。未知的键按顺序保存在 Other 中。
type IDData struct {
	Name        string // 客户端名称
	Version     string // 客户端版本
	OS          string // 操作系统名称
	OSVersion   string // 操作系统版本
	Vendor      string // 客户端供应商
	SupportURL  string // 支持链接
	Address     string // 客户端地址
	Date        string // 日期
	Command     string // 执行的命令
	Arguments   string // 命令参数
	Environment string // 环境信息

	Other []IDParam // 其他键，例如 Yahoo 服务器发送的 "host"
}

// IDParam 是一个 ID 键值对。Value 为空时编码为 NIL。
type IDParam struct {
	Key, Value string
}

func (data *IDData) fields() []struct {
	key string
	ptr *string
} {
	return []struct {
		key string
		ptr *string
	}{
		{"name", &data.Name},
		{"version", &data.Version},
		{"os", &data.OS},
		{"os-version", &data.OSVersion},
		{"vendor", &data.Vendor},
		{"support-url", &data.SupportURL},
		{"address", &data.Address},
		{"date", &data.Date},
		{"command", &data.Command},
		{"arguments", &data.Arguments},
		{"environment", &data.Environment},
	}
}

// Params 按固定顺序返回所有非空的已知键，然后是 Other。
func (data *IDData) Params() []IDParam {
	var params []IDParam
	for _, f := range data.fields() {
		if *f.ptr != "" {
			params = append(params, IDParam{Key: f.key, Value: *f.ptr})
		}
	}
	return append(params, data.Other...)
}

// Set 设置一个键的值。已知键不区分大小写，其他键追加到 Other。
func (data *IDData) Set(key, value string) {
	for _, f := range data.fields() {
		if strings.EqualFold(f.key, key) {
			*f.ptr = value
			return
		}
	}
	data.Other = append(data.Other, IDParam{Key: key, Value: value})
}

// IDResponse 是 "* ID" 响应。Params 为 nil 表示 "* ID NIL"。
type IDResponse struct {
	Params *IDData
}

func (*IDResponse) response() {}
