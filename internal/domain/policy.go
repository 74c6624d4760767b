package domain

// AdminUser is the distinguished username allowed to mutate every lead.
const AdminUser = "admin"

// CanMutate reports whether actor may edit or delete a lead owned by owner.
func CanMutate(actor, owner string) bool {
	return actor == AdminUser || actor == owner
}
