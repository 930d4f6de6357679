package auth

import (
	"time"

	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

type JWTCustomClaims struct {
	UserID uint            `json:"user_id"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
	// Conjunto de unidades autorizadas (vazio para super_admin)
	LocationIDs []uint `json:"location_ids"`
	jwt.RegisteredClaims
}

func GenerateToken(secret string, user *models.User) (string, error) {
	locationIDs := make([]uint, 0, len(user.Locations))
	for _, l := range user.Locations {
		locationIDs = append(locationIDs, l.ID)
	}

	claims := &JWTCustomClaims{
		UserID:      user.ID,
		Email:       user.Email,
		Role:        user.Role,
		LocationIDs: locationIDs,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)), // 1 dia
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
