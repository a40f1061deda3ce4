package transport

// ErrorResponse is the body of every failed request. Error is the machine
// readable kind, Message the French text for the user.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type RegisterRequest struct {
	FullName        string `json:"full_name"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Role            string `json:"role"`
	Location        string `json:"location"`
	FarmSize        string `json:"farm_size"`
}

type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type PatchProfileRequest struct {
	FullName *string `json:"full_name"`
	Location *string `json:"location"`
	FarmSize *string `json:"farm_size"`
	Bio      *string `json:"bio"`
}

type PushTokenRequest struct {
	Token string `json:"token"`
}

type CreateProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
	Unit        string `json:"unit"`
	Category    string `json:"category"`
}

type PatchProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
	Quantity    *int    `json:"quantity"`
	Unit        *string `json:"unit"`
	Category    *string `json:"category"`
}

type ApprovalRequest struct {
	Approved *bool `json:"approved"`
}

type AddToCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CheckoutRequest struct {
	DeliveryAddress string `json:"delivery_address"`
	DeliveryDetails string `json:"delivery_details"`
	ContactPhone    string `json:"contact_phone"`
	PaymentMethod   string `json:"payment_method"`
}

// StatusRequest names either the target status or the action.
type StatusRequest struct {
	Status string `json:"status"`
	Action string `json:"action"`
}
