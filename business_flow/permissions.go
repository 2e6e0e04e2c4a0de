package businessflow

import (
	"github.com/amirphl/Takaramono/models"
	"github.com/amirphl/Takaramono/utils"
)

// Decision is the outcome of a permission check. Reason carries the
// sentinel error to surface when the check fails, so handlers can
// distinguish a missing principal (401) from an insufficient one (403).
type Decision struct {
	Allowed bool
	Reason  error
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason error) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// CanRead permits catalog reads for everyone, anonymous included.
func CanRead(_ *models.Account) Decision {
	return allow()
}

// CanCreate requires an active authenticated principal.
func CanCreate(principal *models.Account) Decision {
	if principal == nil {
		return deny(ErrNotAuthenticated)
	}
	if !utils.IsTrue(principal.IsActive) {
		return deny(ErrAccountInactive)
	}
	return allow()
}

// CanModifyOwned permits updates and deletes on an owned resource for
// staff or the owner. Anonymous principals are told to authenticate,
// everyone else is refused.
func CanModifyOwned(principal *models.Account, ownerID uint) Decision {
	if principal == nil {
		return deny(ErrNotAuthenticated)
	}
	if !utils.IsTrue(principal.IsActive) {
		return deny(ErrAccountInactive)
	}
	if principal.Staff() || principal.ID == ownerID {
		return allow()
	}
	return deny(ErrForbidden)
}

// CanModifyCatalog permits category mutations for any active
// authenticated principal. Categories carry no owner.
func CanModifyCatalog(principal *models.Account) Decision {
	return CanCreate(principal)
}

// CanExport permits catalog exports for staff only.
func CanExport(principal *models.Account) Decision {
	if principal == nil {
		return deny(ErrNotAuthenticated)
	}
	if !principal.Staff() {
		return deny(ErrForbidden)
	}
	return allow()
}

// SeesInactiveProducts reports whether the principal may see inactive
// products in listings and retrievals.
func SeesInactiveProducts(principal *models.Account) bool {
	return principal != nil && principal.Staff()
}
