package dto

type CreateUserRequest struct {
	Username  string  `json:"username"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Password  string  `json:"password"`
	RoleID    int     `json:"role_id"`
}

type UpdateUserRequest struct {
	Username  string  `json:"username"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Password  string  `json:"password,omitempty"` // empty keeps the current one
	RoleID    int     `json:"role_id"`
}

type CreateRoleRequest struct {
	Name          string `json:"name"`
	PermissionIDs []int  `json:"permission_ids"`
}

type UpdateRoleRequest struct {
	Name          string `json:"name"`
	PermissionIDs []int  `json:"permission_ids"`
}
