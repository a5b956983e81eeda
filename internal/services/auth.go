package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/hive-backend/internal/catalog"
	"github.com/yungbote/hive-backend/internal/data/repos/device"
	"github.com/yungbote/hive-backend/internal/data/repos/user"
	"github.com/yungbote/hive-backend/internal/domain"
	"github.com/yungbote/hive-backend/internal/pkg/ctxutil"
	pkgerrors "github.com/yungbote/hive-backend/internal/pkg/errors"
	"github.com/yungbote/hive-backend/internal/pkg/logger"
	"github.com/yungbote/hive-backend/internal/rating"
)

type RegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DeviceID    string `json:"deviceId"`
	DeviceType  string `json:"deviceType"`
	PersonaRole string `json:"personaRole"`
}

type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceID   string `json:"deviceId"`
	DeviceType string `json:"deviceType"`
}

type AuthResponse struct {
	UserID      uuid.UUID `json:"userId"`
	Token       string    `json:"token"`
	PersonaRole string    `json:"personaRole"`
}

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	LinkDevice(ctx context.Context, userID uuid.UUID, deviceID, deviceType string) error
	UpdatePersona(ctx context.Context, userID uuid.UUID, personaRole string) error
	// VerifyToken checks signature and expiry and returns the subject user.
	// Used directly by the websocket upgrade path where middleware cannot run.
	VerifyToken(tokenString string) (uuid.UUID, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     user.UserRepo
	deviceRepo   device.DeviceRepo
	jwtSecretKey string
	tokenTTL     time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo user.UserRepo,
	deviceRepo device.DeviceRepo,
	jwtSecretKey string,
	tokenTTL time.Duration,
) AuthService {
	return &authService{
		db:           db,
		log:          baseLog.With("service", "AuthService"),
		userRepo:     userRepo,
		deviceRepo:   deviceRepo,
		jwtSecretKey: jwtSecretKey,
		tokenTTL:     tokenTTL,
	}
}

func (as *authService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Email == "" || req.Password == "" || req.DeviceID == "" || req.DeviceType == "" {
		return nil, fmt.Errorf("%w: name, email, password, deviceId and deviceType are required", pkgerrors.ErrInvalidArgument)
	}
	role := catalog.ParseRole(req.PersonaRole)

	exists, err := as.userRepo.EmailExists(ctx, nil, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: email already registered", pkgerrors.ErrAlreadyExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 10)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{
		ID:          uuid.New(),
		Email:       req.Email,
		Password:    string(hash),
		Name:        req.Name,
		PersonaRole: role,
		Mu:          rating.InitialMu,
		Sigma:       rating.InitialSigma,
		DisplayRating: rating.DisplayRating(
			rating.InitialMu, rating.InitialSigma),
		Tier: rating.TierBronze,
	}

	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := as.userRepo.Create(ctx, tx, u); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		if err := as.deviceRepo.Link(ctx, tx, req.DeviceID, u.ID, req.DeviceType); err != nil {
			return fmt.Errorf("link device: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	token, err := as.generateToken(u.ID)
	if err != nil {
		return nil, err
	}

	as.log.Info("User registered", "user_id", u.ID.String(), "persona_role", role)
	return &AuthResponse{UserID: u.ID, Token: token, PersonaRole: role}, nil
}

func (as *authService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", pkgerrors.ErrInvalidArgument)
	}

	u, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", pkgerrors.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", pkgerrors.ErrUnauthorized)
	}

	// New devices may introduce themselves at login.
	if req.DeviceID != "" && req.DeviceType != "" {
		if err := as.deviceRepo.Link(ctx, nil, req.DeviceID, u.ID, req.DeviceType); err != nil {
			return nil, fmt.Errorf("link device: %w", err)
		}
	}

	token, err := as.generateToken(u.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{UserID: u.ID, Token: token, PersonaRole: u.PersonaRole}, nil
}

func (as *authService) LinkDevice(ctx context.Context, userID uuid.UUID, deviceID, deviceType string) error {
	if deviceID == "" || deviceType == "" {
		return fmt.Errorf("%w: deviceId and deviceType are required", pkgerrors.ErrInvalidArgument)
	}
	return as.deviceRepo.Link(ctx, nil, deviceID, userID, deviceType)
}

func (as *authService) UpdatePersona(ctx context.Context, userID uuid.UUID, personaRole string) error {
	if !catalog.ValidRole(personaRole) {
		return fmt.Errorf("%w: invalid persona role %q", pkgerrors.ErrInvalidArgument, personaRole)
	}
	return as.userRepo.UpdatePersona(ctx, nil, userID, personaRole)
}

func (as *authService) generateToken(userID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID.String(),
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(as.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (as *authService) VerifyToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("%w: invalid token", pkgerrors.ErrUnauthorized)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: invalid claims", pkgerrors.ErrUnauthorized)
	}
	raw, _ := claims["userId"].(string)
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid subject", pkgerrors.ErrUnauthorized)
	}
	return userID, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	userID, err := as.VerifyToken(tokenString)
	if err != nil {
		return ctx, err
	}
	u, err := as.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return ctx, fmt.Errorf("%w: unknown user", pkgerrors.ErrUnauthorized)
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      u.ID,
		PersonaRole: u.PersonaRole,
	}), nil
}
