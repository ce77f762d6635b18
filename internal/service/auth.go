package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/brandpilot/internal/model"
	"github.com/d60-Lab/brandpilot/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserDisabled       = errors.New("account disabled")
)

// AuthService 注册/登录 + JWT 签发
type AuthService struct {
	users  repository.UserRepository
	secret []byte
	expire time.Duration
}

func NewAuthService(users repository.UserRepository, secret string, expire time.Duration) *AuthService {
	if expire <= 0 {
		expire = 24 * time.Hour
	}
	return &AuthService{users: users, secret: []byte(secret), expire: expire}
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		Plan:     model.PlanFree,
		Active:   true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if !u.Active {
		return "", ErrUserDisabled
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": u.ID,
		"adm": u.IsAdmin,
		"iat": now.Unix(),
		"exp": now.Add(s.expire).Unix(),
	})
	return token.SignedString(s.secret)
}

// ParseToken 校验并解出 (userID, isAdmin)
func (s *AuthService) ParseToken(tokenStr string) (string, bool, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", false, ErrInvalidCredentials
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false, ErrInvalidCredentials
	}
	sub, _ := claims["sub"].(string)
	adm, _ := claims["adm"].(bool)
	if sub == "" {
		return "", false, ErrInvalidCredentials
	}
	return sub, adm, nil
}
