package app

import (
	"context"
	"errors"
	"time"

	"marketplace_chat_service/internal/member/domain"
	"marketplace_chat_service/internal/member/repository"
	"marketplace_chat_service/pkg/database"
	errprocess "marketplace_chat_service/pkg/err"
	"marketplace_chat_service/pkg/logger"
	token "marketplace_chat_service/pkg/token"

	"go.uber.org/zap"
)

// MemberUseCase identity resolution and member directory for the chat service
type MemberUseCase interface {
	// Authenticate resolve a credential token to a member id
	Authenticate(ctx context.Context, t string) (string, error)
	FindProfiles(ctx context.Context, memberIDs []string) (map[string]domain.Profile, error)
	Exists(ctx context.Context, memberID string) (bool, error)
}

type memberUseCase struct {
	memberRepo   repository.MemberRepository
	sessionRepo  database.RedisRepository[domain.MemberSession]
	profileCache database.RedisRepository[domain.Profile]
	profileTTL   time.Duration
}

// NewMemberUseCase 建立一個新的 MemberUseCase
func NewMemberUseCase(memberRepo repository.MemberRepository,
	sessionRepo database.RedisRepository[domain.MemberSession],
	profileCache database.RedisRepository[domain.Profile],
	profileTTL time.Duration,
) MemberUseCase {
	return &memberUseCase{
		memberRepo:   memberRepo,
		sessionRepo:  sessionRepo,
		profileCache: profileCache,
		profileTTL:   profileTTL,
	}
}

// Authenticate the token must parse and match the live session stored for its member
func (m *memberUseCase) Authenticate(ctx context.Context, t string) (string, error) {
	if t == "" {
		return "", errprocess.Authentication("missing token", nil)
	}

	claims, err := token.ParseJWTWrapper(t)
	if err != nil {
		logger.Log.Debug("Authenticate: parse token", zap.Error(err))
		return "", errprocess.Authentication("invalid token", err)
	}

	session, err := m.sessionRepo.Get(ctx, claims.MemberID)
	if err != nil {
		if errors.Is(err, database.ErrCacheMiss) {
			return "", errprocess.Authentication("session not found", nil)
		}
		return "", errprocess.Internal("load session", err)
	}
	if session.Token != t {
		return "", errprocess.Authentication("session replaced", nil)
	}
	if session.IsExpired() {
		// drop the stale session so later checks miss fast
		if err := m.sessionRepo.Del(ctx, claims.MemberID); err != nil {
			logger.Log.Warn("Authenticate: delete expired session", zap.String("member", claims.MemberID), zap.Error(err))
		}
		return "", errprocess.Authentication("session expired", nil)
	}
	return claims.MemberID, nil
}

// FindProfiles cache first, then one query for the misses; unknown ids are absent from the result
func (m *memberUseCase) FindProfiles(ctx context.Context, memberIDs []string) (map[string]domain.Profile, error) {
	profiles := make(map[string]domain.Profile, len(memberIDs))
	var misses []string
	seen := make(map[string]struct{}, len(memberIDs))

	for _, id := range memberIDs {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}

		p, err := m.profileCache.Get(ctx, domain.ProfileCacheKey(id))
		if err == nil {
			profiles[id] = p
			continue
		}
		if !errors.Is(err, database.ErrCacheMiss) {
			logger.Log.Warn("profile cache get", zap.String("member_id", id), zap.Error(err))
		}
		misses = append(misses, id)
	}

	if len(misses) == 0 {
		return profiles, nil
	}

	found, err := m.memberRepo.FindProfiles(ctx, misses)
	if err != nil {
		return nil, errprocess.Internal("find profiles", err)
	}
	for _, p := range found {
		profiles[p.MemberID] = p
		if err := m.profileCache.Set(ctx, domain.ProfileCacheKey(p.MemberID), p, m.profileTTL); err != nil {
			logger.Log.Warn("profile cache set", zap.String("member_id", p.MemberID), zap.Error(err))
		}
	}
	return profiles, nil
}

func (m *memberUseCase) Exists(ctx context.Context, memberID string) (bool, error) {
	if memberID == "" {
		return false, nil
	}
	ok, err := m.memberRepo.Exists(ctx, memberID)
	if err != nil {
		return false, errprocess.Internal("member exists", err)
	}
	return ok, nil
}
