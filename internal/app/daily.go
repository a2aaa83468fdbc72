package app

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// DayFormat is the UTC day key for daily challenges.
const DayFormat = "2006-01-02"

// DailyIssuer names this backend in challenge token claims.
const DailyIssuer = "klondike"

// DailyService derives the shared deterministic deal for each challenge
// day and signs claim tokens proving a completed run before a leaderboard
// write is accepted.
type DailyService struct {
	secret string
	issuer string
	now    func() time.Time
}

func NewDailyService(secret, issuer string) *DailyService {
	return &DailyService{secret: secret, issuer: issuer, now: time.Now}
}

// Today returns the current UTC challenge day.
func (s *DailyService) Today() string {
	return s.now().UTC().Format(DayFormat)
}

// Seed derives the deal seed for a challenge day. Everyone dealing with
// the same day's seed plays the same layout.
func (s *DailyService) Seed(day string) (int64, error) {
	if _, err := time.Parse(DayFormat, day); err != nil {
		return 0, fmt.Errorf("bad challenge day %q: %w", day, err)
	}
	h := fnv.New64a()
	h.Write([]byte("klondike-daily-" + day))
	return int64(h.Sum64()), nil
}

// ChallengeToken signs a completed daily run for userID. The token is the
// client's proof when claiming a leaderboard entry.
func (s *DailyService) ChallengeToken(userID, day string, moves int) (string, error) {
	if s == nil || s.secret == "" || s.issuer == "" {
		return "", fmt.Errorf("daily challenge config is incomplete")
	}
	if userID == "" {
		return "", fmt.Errorf("user is required")
	}
	if _, err := time.Parse(DayFormat, day); err != nil {
		return "", fmt.Errorf("bad challenge day %q: %w", day, err)
	}

	claims := jwt.MapClaims{
		"iss":   s.issuer,
		"sub":   userID,
		"day":   day,
		"moves": moves,
		"exp":   s.now().Add(48 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// DailyResult is the verified content of a challenge token.
type DailyResult struct {
	UserID string
	Day    string
	Moves  int
}

// VerifyToken validates a challenge token's signature and expiry and
// returns the run it claims.
func (s *DailyService) VerifyToken(tokenString string) (DailyResult, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return DailyResult{}, fmt.Errorf("parse challenge token: %w", err)
	}
	if !token.Valid {
		return DailyResult{}, fmt.Errorf("challenge token is invalid")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return DailyResult{}, fmt.Errorf("challenge token claims are not map claims")
	}
	if iss, _ := claims["iss"].(string); iss != s.issuer {
		return DailyResult{}, fmt.Errorf("challenge token from unknown issuer")
	}
	sub, _ := claims["sub"].(string)
	day, _ := claims["day"].(string)
	moves, _ := claims["moves"].(float64)
	if sub == "" || day == "" {
		return DailyResult{}, fmt.Errorf("challenge token missing claims")
	}
	return DailyResult{UserID: sub, Day: day, Moves: int(moves)}, nil
}
