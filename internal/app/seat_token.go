package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

var ErrTokenConfig = errors.New("seat token config is incomplete")

// SeatTokenIssuer is the iss claim of every seat token.
const SeatTokenIssuer = "hexbot"

// SeatTokenService signs the token an agent presents when it joins a game.
type SeatTokenService struct {
	secret string
	ttl    time.Duration
	now    func() time.Time
}

func NewSeatTokenService(secret string, ttl time.Duration) *SeatTokenService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SeatTokenService{secret: secret, ttl: ttl, now: time.Now}
}

// GenerateToken signs an HS256 token binding user to seat of game.
func (s *SeatTokenService) GenerateToken(user, gameID string, seat int) (string, error) {
	if s == nil || s.secret == "" {
		return "", ErrTokenConfig
	}
	if user == "" || gameID == "" {
		return "", fmt.Errorf("%w: user and game are required", ErrTokenConfig)
	}
	if seat < 0 {
		return "", fmt.Errorf("%w: seat %d", ErrTokenConfig, seat)
	}

	now := s.now()
	claims := jwt.MapClaims{
		"iss":  SeatTokenIssuer,
		"sub":  user,
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
		"jti":  uuid.NewString(),
		"gid":  gameID,
		"seat": seat,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}
