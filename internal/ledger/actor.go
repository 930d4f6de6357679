package ledger

import "github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/models"

// Actor: identidade autenticada, papel e conjunto de unidades autorizadas,
// fornecidos pela camada externa de autenticação. O livro-razão só consome
// esses três dados; não conhece sessões nem tokens.
type Actor struct {
	UserID      uint
	Name        string
	Role        models.UserRole
	LocationIDs []uint
}

func (a Actor) CanAccess(locationID uint) bool {
	if a.Role == models.RoleSuperAdmin {
		return true
	}
	for _, id := range a.LocationIDs {
		if id == locationID {
			return true
		}
	}
	return false
}
