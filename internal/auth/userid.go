package auth

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"unicode"
)

// 登录标识由姓名前三个字母（不足补 X）加六位随机数字组成，例如 RAJ483920。
const userIDFiller = 'X'

const maxUserIDAttempts = 20

// ErrUserIDExhausted 表示多次尝试后仍未取到未占用的标识。
var ErrUserIDExhausted = errors.New("could not generate a unique user id")

// GenerateUserID 根据姓名生成一个候选登录标识，不保证唯一。
func GenerateUserID(name string) string {
	var letters []rune
	for _, r := range name {
		if unicode.IsLetter(r) {
			letters = append(letters, unicode.ToUpper(r))
		}
		if len(letters) == 3 {
			break
		}
	}
	for len(letters) < 3 {
		letters = append(letters, userIDFiller)
	}

	suffix := 100000 + rand.Intn(900000)
	return fmt.Sprintf("%s%d", string(letters), suffix)
}

// UniqueUserID 反复生成候选标识，直到 exists 判定未被占用为止。
func UniqueUserID(ctx context.Context, name string, exists func(ctx context.Context, userID string) (bool, error)) (string, error) {
	for attempt := 0; attempt < maxUserIDAttempts; attempt++ {
		candidate := GenerateUserID(name)
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check user id %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrUserIDExhausted
}

// NormalizeUserID 将用户输入的标识统一为大写去空白形式。
func NormalizeUserID(userID string) string {
	return strings.ToUpper(strings.TrimSpace(userID))
}
