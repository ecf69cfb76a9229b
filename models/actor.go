package models

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID uint
	Role   UserRole
}

// CanManage reports whether the actor may edit or delete content owned by
// authorID. Editors and admins manage everyone's articles.
func (a Actor) CanManage(authorID uint) bool {
	if a.Role == RoleEditor || a.Role == RoleAdmin {
		return true
	}
	return a.UserID != 0 && a.UserID == authorID
}
