package dto

type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r AdminLoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type AdminDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type CustomerSummaryDTO struct {
	ID                    string `json:"id"`
	CustomerNumber        int64  `json:"customer_number"`
	Name                  string `json:"name"`
	SubscriptionStartDate string `json:"subscription_start_date"`
	AdminSeen             bool   `json:"admin_seen"`
}

type AdminOrderDTO struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Quantity  int    `json:"quantity"`
	Status    string `json:"status"`
	AdminSeen bool   `json:"admin_seen"`
	CreatedAt string `json:"created_at"`
}

type AdminDashboardResponse struct {
	NewCustomers []CustomerSummaryDTO `json:"new_customers"`
	NewOrders    []AdminOrderDTO      `json:"new_orders"`
}

type CustomerDetailResponse struct {
	Customer  CustomerSummaryDTO `json:"customer"`
	Employees []EmployeeDTO      `json:"employees"`
	Tags      []ScanTagDTO       `json:"tags"`
	Orders    []AdminOrderDTO    `json:"orders"`
}
