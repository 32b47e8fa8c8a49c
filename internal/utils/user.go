package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/url"
)

// DefaultAvatar 根据姓名生成首字母头像
func DefaultAvatar(name string) string {
	return "https://api.dicebear.com/7.x/initials/svg?seed=" + url.QueryEscape(name) + "&backgroundColor=4f46e5"
}

// GenerateVerifyCode 生成 6 位数字验证码
func GenerateVerifyCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64())
}
