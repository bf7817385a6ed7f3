package domain

import "time"

// MemberStatus 用來表示使用者狀態
type MemberStatus int

// 状态: 0=offline, 1=online, 2=ban ,3=delete
const (
	MemberStatusOffLine MemberStatus = iota
	MemberStatusOnLine
	MemberStatusBan
	MemberStatusDelete
)

// Profile display attributes of a member
type Profile struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
}

// MemberSession login session written by the auth service, keyed by member id
type MemberSession struct {
	Token        string    `json:"Token"`
	MemberID     string    `json:"MemberID"`
	CreatedAt    time.Time `json:"CreatedAt"`
	LastActivity time.Time `json:"LastActivity"`
	ExpiredAt    time.Time `json:"ExpiredAt"`
}

// IsExpired 檢查 Session 是否已過期
func (s *MemberSession) IsExpired() bool {
	return time.Now().After(s.ExpiredAt)
}

// ProfileCacheKey redis key of a cached profile
func ProfileCacheKey(memberID string) string {
	return "member:profile:" + memberID
}
