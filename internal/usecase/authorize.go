package usecase

import "github.com/arklim/user-permission-service/internal/infra/security"

// Authorize is the single-code policy decision: allow iff the verified
// claim set contains a permission claim equal to the required code, exact
// string match. It is pure and side-effect-free; composite (one-of-many)
// policies are not modeled.
func Authorize(claims *security.AccessClaims, requiredCode string) bool {
	if claims == nil || requiredCode == "" {
		return false
	}
	return claims.HasPermission(requiredCode)
}
