package gateway

import (
	"strconv"
	"strings"
)

// ABI 参数编码：所有参数左补零到 32 字节。

// EncodeUint256 把 uint64 编码为 64 位十六进制字符串（不带 0x）。
func EncodeUint256(v uint64) string {
	hex := strconv.FormatUint(v, 16)
	return strings.Repeat("0", 64-len(hex)) + hex
}

// EncodeAddress 把地址左补零到 32 字节（不带 0x）。
func EncodeAddress(addr string) string {
	addr = strings.TrimPrefix(strings.ToLower(addr), "0x")
	if len(addr) >= 64 {
		return addr[len(addr)-64:]
	}
	return strings.Repeat("0", 64-len(addr)) + addr
}

// HexToUint64 解析 eth_call 返回的十六进制数量，取低 64 位。
// 非法输入返回 0。
func HexToUint64(s string) uint64 {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if s == "" {
		return 0
	}
	if len(s) > 16 {
		s = s[len(s)-16:]
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0
	}
	return v
}
