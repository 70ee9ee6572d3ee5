package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/sprintsync/internal/models"
)

type authServiceImpl struct {
	logger            zerolog.Logger
	db                DB
	jwtIssuer         string
	jwtSigningKey     []byte
	jwtAccessTokenTTL time.Duration
}

func NewAuthService(
	logger zerolog.Logger,
	db DB,
	jwtIssuer string,
	jwtSigningKey []byte,
	jwtAccessTokenTTL time.Duration,
) AuthService {
	return &authServiceImpl{
		logger:            logger,
		db:                db,
		jwtIssuer:         jwtIssuer,
		jwtSigningKey:     jwtSigningKey,
		jwtAccessTokenTTL: jwtAccessTokenTTL,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	user, err := insertUser(ctx, s.db, CreateUserParams{
		Email:    params.Email,
		Password: params.Password,
		FullName: params.FullName,
	})
	if err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			s.logger.Error().
				Str("email", params.Email).
				Msg("user with this email already exists")
			return nil, err
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert user")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("registered user")
	return user, nil
}

func (s *authServiceImpl) Login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	user, err := selectUser(ctx, s.db, "email", normalizeEmail(params.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logger.Error().
				Str("email", params.Email).
				Msg("user not found")
			return nil, ErrInvalidCredentials
		}

		s.logger.Error().
			Err(err).
			Str("email", params.Email).
			Msg("failed to select user by email")
		return nil, err
	}
	s.logger.Debug().
		Str("user_id", user.ID).
		Msg("selected user")

	match, err := argon2id.ComparePasswordAndHash(params.Password, user.PasswordHash)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to compare password")
		return nil, err
	} else if !match {
		s.logger.Error().
			Str("user_id", user.ID).
			Msg("passwords do not match")
		return nil, ErrInvalidCredentials
	}

	result, err := s.issue(user)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate access token")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("logged in")
	return result, nil
}

func (s *authServiceImpl) IssueToken(userID string) (*LoginResult, error) {
	return s.issue(&models.User{ID: userID})
}

func (s *authServiceImpl) issue(user *models.User) (*LoginResult, error) {
	token, expiresAt, err := s.generateAccessToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		User:                 user,
		AccessToken:          token,
		AccessTokenExpiresAt: expiresAt,
	}, nil
}

func (s *authServiceImpl) ParseJWTToken(token string) (*jwt.RegisteredClaims, error) {
	t, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.jwtSigningKey, nil
		},
		jwt.WithIssuer(s.jwtIssuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("token is expired: %w", err)
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := t.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return nil, errors.New("failed to parse token: missing subject")
	}
	return claims, nil
}

func (s *authServiceImpl) generateAccessToken(userID string) (string, time.Time, error) {
	tokenUUID, err := uuid.NewRandom()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate id: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(s.jwtAccessTokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        tokenUUID.String(),
		Issuer:    s.jwtIssuer,
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	})

	signed, err := token.SignedString(s.jwtSigningKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

const userColumns = `id,
       email,
       full_name,
       is_admin,
       password_hash,
       created_at,
       updated_at`

// selectUser looks a user up by a unique column (id or email).
func selectUser(ctx context.Context, db DB, column, value string) (*models.User, error) {
	query := `
SELECT ` + userColumns + `
FROM users
WHERE ` + column + ` = $1
`
	user := new(models.User)
	err := db.QueryRow(ctx, query, value).Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.IsAdmin,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func insertUser(ctx context.Context, db DB, params CreateUserParams) (*models.User, error) {
	fullName := strings.TrimSpace(params.FullName)
	if fullName == "" {
		return nil, fmt.Errorf("%w: full_name cannot be blank", ErrInvalidPatch)
	}

	now := time.Now().UTC()
	user := &models.User{
		Email:     normalizeEmail(params.Email),
		FullName:  fullName,
		IsAdmin:   params.IsAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}

	userUUID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user uuid: %w", err)
	}
	user.ID = userUUID.String()

	user.PasswordHash, err = argon2id.CreateHash(params.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	const insertUserQuery = `
INSERT INTO users (id,
                   email,
                   full_name,
                   is_admin,
                   password_hash,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	_, err = db.Exec(
		ctx,
		insertUserQuery,
		user.ID,
		user.Email,
		user.FullName,
		user.IsAdmin,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
