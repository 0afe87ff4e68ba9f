package request

// CreateCustomerRequest represents a customer creation request
type CreateCustomerRequest struct {
	Name    string  `json:"name" binding:"required,max=255"`
	Phone   string  `json:"phone" binding:"required,max=50"`
	Address *string `json:"address"`
}

// UpdateCustomerRequest represents a customer update request
type UpdateCustomerRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=255"`
	Phone   *string `json:"phone" binding:"omitempty,min=1,max=50"`
	Address *string `json:"address"`
}

// CreateUserRequest represents a staff creation request
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Role     string `json:"role" binding:"omitempty,oneof=ADMIN MANAGER SALES_REP admin manager sales_rep"`
	BranchID string `json:"branch_id" binding:"omitempty,uuid"`
}

// ListRequest carries the common search and paging query parameters
type ListRequest struct {
	Search  string `form:"search"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}
