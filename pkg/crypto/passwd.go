package crypto

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = bcrypt.DefaultCost

// HashPassword 生成 bcrypt 哈希（长度 60，适配 varchar(64)）
func HashPassword(pwd string) string {
	bs, err := bcrypt.GenerateFromPassword([]byte(pwd), bcryptCost)
	if err != nil {
		return ""
	}
	return string(bs)
}

// VerifyPassword 校验明文与存储哈希
func VerifyPassword(plain, stored string) bool {
	if !strings.HasPrefix(stored, "$2a$") && !strings.HasPrefix(stored, "$2b$") && !strings.HasPrefix(stored, "$2y$") {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
}
