package token

// 這個變數會在測試時被覆蓋
var ParseJWTFunc = ParseJWT

// ParseJWTWrapper 讓 authenticator test 可替換解析函數
func ParseJWTWrapper(t string) (*Claims, error) {
	return ParseJWTFunc(t)
}
