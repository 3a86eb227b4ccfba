package services

import (
	"context"
	"errors"
	"time"

	"gopolls/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenLifetime = 24 * time.Hour

// DenylistKey is the redis key holding a revoked token. The entry expires
// with the token itself, so the denylist never outgrows the set of live
// tokens.
func DenylistKey(token string) string {
	return "denylist:" + token
}

type AuthService struct {
	db        *gorm.DB
	jwtSecret string
	redis     *redis.Client
}

func NewAuthService(db *gorm.DB, jwtSecret string, redisClient *redis.Client) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
		redis:     redisClient,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Register creates the account and logs the user straight in.
func (s *AuthService) Register(req *RegisterRequest) (*AuthResponse, error) {
	var existing models.User
	err := s.db.Where("username = ?", req.Username).First(&existing).Error
	if err == nil {
		return nil, NewValidationError("Username is already taken.")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := s.db.Create(&user).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, NewValidationError("Username is already taken.")
		}
		return nil, err
	}

	token, err := s.generateToken(&user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: user}, nil
}

func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	var user models.User
	if err := s.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewAuthorizationError("Invalid username or password.")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewAuthorizationError("Invalid username or password.")
	}

	token, err := s.generateToken(&user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: user}, nil
}

// Logout revokes the token by placing it on the redis denylist until its
// natural expiry. The auth middleware rejects denylisted tokens.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	if s.redis == nil {
		return nil
	}

	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(tokenString, claims)
	if err != nil {
		return NewValidationError("Invalid token.")
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return NewValidationError("Invalid token.")
	}

	ttl := time.Until(exp.Time)
	if ttl <= 0 {
		return nil
	}

	return s.redis.Set(ctx, DenylistKey(tokenString), "1", ttl).Err()
}

type ProfileStats struct {
	TotalPollsCreated  int64 `json:"total_polls_created"`
	ActivePolls        int64 `json:"active_polls"`
	TotalVotesCast     int64 `json:"total_votes_cast"`
	TotalVotesReceived int64 `json:"total_votes_received"`
}

type ProfileResponse struct {
	User        models.User   `json:"user"`
	Stats       ProfileStats  `json:"stats"`
	RecentPolls []models.Poll `json:"recent_polls"`
	RecentVotes []models.Vote `json:"recent_votes"`
}

// Profile returns the user's account along with poll and vote statistics.
func (s *AuthService) Profile(userID uint) (*ProfileResponse, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("User not found.")
		}
		return nil, err
	}

	now := time.Now()
	resp := &ProfileResponse{User: user}

	err := s.db.Model(&models.Poll{}).
		Where("created_by_id = ?", userID).
		Count(&resp.Stats.TotalPollsCreated).Error
	if err != nil {
		return nil, err
	}

	err = s.db.Model(&models.Poll{}).
		Where("created_by_id = ? AND is_active = ? AND end_date > ?", userID, true, now).
		Count(&resp.Stats.ActivePolls).Error
	if err != nil {
		return nil, err
	}

	err = s.db.Model(&models.Vote{}).
		Where("user_id = ?", userID).
		Count(&resp.Stats.TotalVotesCast).Error
	if err != nil {
		return nil, err
	}

	err = s.db.Model(&models.Vote{}).
		Joins("JOIN polls ON polls.id = votes.poll_id").
		Where("polls.created_by_id = ?", userID).
		Count(&resp.Stats.TotalVotesReceived).Error
	if err != nil {
		return nil, err
	}

	err = s.db.Where("created_by_id = ?", userID).
		Order("created_date DESC").
		Limit(5).
		Find(&resp.RecentPolls).Error
	if err != nil {
		return nil, err
	}

	err = s.db.Where("user_id = ?", userID).
		Preload("Choice").
		Order("voted_at DESC").
		Limit(5).
		Find(&resp.RecentVotes).Error
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// VotingHistory returns every vote the user has cast, newest first.
func (s *AuthService) VotingHistory(userID uint) ([]models.Vote, error) {
	var votes []models.Vote
	err := s.db.Where("user_id = ?", userID).
		Preload("Choice").
		Preload("Choice.Poll").
		Order("voted_at DESC").
		Find(&votes).Error
	return votes, err
}

func (s *AuthService) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(tokenLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
