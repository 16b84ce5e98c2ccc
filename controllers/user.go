package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fullybooked/middleware"
	"fullybooked/models"
	"fullybooked/notifications"
	"fullybooked/store"
	"fullybooked/utils"
)

// UserController handles user-related requests
type UserController struct {
	users      store.UserStore
	dispatcher *notifications.Dispatcher
	log        zerolog.Logger
}

// NewUserController creates a new UserController
func NewUserController(users store.UserStore, dispatcher *notifications.Dispatcher, logger zerolog.Logger) *UserController {
	return &UserController{users: users, dispatcher: dispatcher, log: logger}
}

type registerRequest struct {
	Username string         `json:"username"`
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Phone    string         `json:"phone"`
	Address  models.Address `json:"address"`
}

// Register handles customer registration: the password is hashed before
// storage and a 1-hour token is issued immediately.
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Username, email and password are required")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	if _, err := uc.users.GetByEmail(ctx, req.Email); err == nil {
		respondError(w, http.StatusBadRequest, "User already exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusInternalServerError, "Database error")
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error hashing password")
		return
	}
	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashed,
		Phone:    req.Phone,
		Address:  req.Address,
		Role:     models.RoleCustomer,
	}
	if err := user.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user details")
		return
	}
	if err := uc.users.Create(ctx, &user); err != nil {
		respondError(w, http.StatusInternalServerError, "Error creating user")
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error generating token")
		return
	}
	user.Sanitize()
	respondJSON(w, http.StatusCreated, map[string]interface{}{"token": token, "user": user})
}

type loginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	PushToken string `json:"push_token"`
}

// Login authenticates with email and password. A device push token supplied
// with the login is stored so the user can receive notifications, and any
// sale notifications missed while offline are caught up in the background.
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	uc.login(w, r, "")
}

// LoginAdmin is Login restricted to admin accounts.
func (uc *UserController) LoginAdmin(w http.ResponseWriter, r *http.Request) {
	uc.login(w, r, models.RoleAdmin)
}

func (uc *UserController) login(w http.ResponseWriter, r *http.Request, requiredRole string) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	user, err := uc.users.GetByEmail(ctx, req.Email)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err := utils.CheckPassword(user.Password, req.Password); err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if requiredRole != "" && user.Role != requiredRole {
		respondError(w, http.StatusForbidden, "Forbidden: insufficient role")
		return
	}

	if req.PushToken != "" && req.PushToken != user.PushToken {
		user.PushToken = req.PushToken
		if err := uc.users.Update(ctx, user); err != nil {
			uc.log.Warn().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to store push token")
		}
	}

	uc.catchUpSales(user.ID)

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error generating token")
		return
	}
	user.Sanitize()
	respondJSON(w, http.StatusOK, map[string]interface{}{"token": token, "user": user})
}

type federatedLoginRequest struct {
	AuthUID   string `json:"auth_uid"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Avatar    string `json:"avatar"`
	PushToken string `json:"push_token"`
}

// FederatedLogin authenticates by external auth provider UID, creating the
// account on first sight.
func (uc *UserController) FederatedLogin(w http.ResponseWriter, r *http.Request) {
	var req federatedLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.AuthUID == "" || req.Email == "" {
		respondError(w, http.StatusBadRequest, "auth_uid and email are required")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	user, err := uc.users.GetByAuthUID(ctx, req.AuthUID)
	if errors.Is(err, store.ErrNotFound) {
		username := req.Username
		if username == "" {
			username = req.Email
		}
		user = &models.User{
			AuthUID:  req.AuthUID,
			Username: username,
			Email:    req.Email,
			Avatar:   req.Avatar,
			Role:     models.RoleCustomer,
		}
		if err := uc.users.Create(ctx, user); err != nil {
			respondError(w, http.StatusInternalServerError, "Error creating user")
			return
		}
	} else if err != nil {
		respondError(w, http.StatusInternalServerError, "Database error")
		return
	}

	if req.PushToken != "" && req.PushToken != user.PushToken {
		user.PushToken = req.PushToken
		if err := uc.users.Update(ctx, user); err != nil {
			uc.log.Warn().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to store push token")
		}
	}

	uc.catchUpSales(user.ID)

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error generating token")
		return
	}
	user.Sanitize()
	respondJSON(w, http.StatusOK, map[string]interface{}{"token": token, "user": *user})
}

// catchUpSales delivers missed sale notifications after a login. Runs in the
// background; the login response never waits on staggered pushes.
func (uc *UserController) catchUpSales(userID primitive.ObjectID) {
	go func() {
		ctx, cancel := dbCtx()
		defer cancel()
		if _, err := uc.dispatcher.CheckPendingSaleNotifications(ctx, userID); err != nil {
			uc.log.Warn().Err(err).Str("user_id", userID.Hex()).Msg("sale catch-up failed")
		}
	}()
}

type adminCreateUserRequest struct {
	registerRequest
	Role string `json:"role"`
}

// AdminCreate lets an admin create a user with an explicit role.
func (uc *UserController) AdminCreate(w http.ResponseWriter, r *http.Request) {
	var req adminCreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Username, email and password are required")
		return
	}
	switch req.Role {
	case models.RoleCustomer, models.RoleAdmin, models.RoleCourier:
	default:
		respondError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	if _, err := uc.users.GetByEmail(ctx, req.Email); err == nil {
		respondError(w, http.StatusBadRequest, "User already exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusInternalServerError, "Database error")
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error hashing password")
		return
	}
	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashed,
		Phone:    req.Phone,
		Address:  req.Address,
		Role:     req.Role,
	}
	if err := uc.users.Create(ctx, &user); err != nil {
		respondError(w, http.StatusInternalServerError, "Error creating user")
		return
	}
	user.Sanitize()
	respondJSON(w, http.StatusCreated, map[string]interface{}{"user": user})
}

// List retrieves all users (admin only).
func (uc *UserController) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dbCtx()
	defer cancel()

	users, err := uc.users.List(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error fetching users")
		return
	}
	for i := range users {
		users[i].Sanitize()
	}
	respondJSON(w, http.StatusOK, users)
}

// Get retrieves a single user by ID (admin only).
func (uc *UserController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		respondStoreError(w, err, "User not found")
		return
	}
	user.Sanitize()
	respondJSON(w, http.StatusOK, user)
}

type updateUserRequest struct {
	Username *string         `json:"username"`
	Email    *string         `json:"email"`
	Password *string         `json:"password"`
	Phone    *string         `json:"phone"`
	Avatar   *string         `json:"avatar"`
	Address  *models.Address `json:"address"`
	Role     *string         `json:"role"`
}

// Update edits a user (admin only). A changed password is re-hashed before
// storage; the hash never round-trips through the client.
func (uc *UserController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		respondStoreError(w, err, "User not found")
		return
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.Role != nil {
		switch *req.Role {
		case models.RoleCustomer, models.RoleAdmin, models.RoleCourier:
			user.Role = *req.Role
		default:
			respondError(w, http.StatusBadRequest, "Invalid role")
			return
		}
	}
	if req.Password != nil && *req.Password != "" {
		hashed, err := utils.HashPassword(*req.Password)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Error hashing password")
			return
		}
		user.Password = hashed
	}

	if err := uc.users.Update(ctx, user); err != nil {
		respondStoreError(w, err, "User not found")
		return
	}
	user.Sanitize()
	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// Delete removes a user (admin only).
func (uc *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	if err := uc.users.Delete(ctx, id); err != nil {
		respondStoreError(w, err, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

type courierApplicationRequest struct {
	VehicleType   string `json:"vehicle_type"`
	ServiceArea   string `json:"service_area"`
	IDDocumentURL string `json:"id_document_url"`
}

// ApplyCourier records a courier application on the user's own account.
func (uc *UserController) ApplyCourier(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	if claims.ID != id.Hex() && claims.Role != models.RoleAdmin {
		respondError(w, http.StatusForbidden, "Forbidden")
		return
	}

	var req courierApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.VehicleType == "" || req.ServiceArea == "" || req.IDDocumentURL == "" {
		respondError(w, http.StatusBadRequest, "Vehicle type, service area and ID document are required")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		respondStoreError(w, err, "User not found")
		return
	}
	user.CourierApplication = &models.CourierApplication{
		Status:        models.CourierApplicationPending,
		AppliedAt:     time.Now().UTC(),
		VehicleType:   req.VehicleType,
		ServiceArea:   req.ServiceArea,
		IDDocumentURL: req.IDDocumentURL,
	}
	if err := uc.users.Update(ctx, user); err != nil {
		respondStoreError(w, err, "User not found")
		return
	}
	user.Sanitize()
	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

type reviewCourierRequest struct {
	Status string `json:"status"`
}

// ReviewCourier approves or rejects a courier application (admin only).
// Approval flips the user's role to courier.
func (uc *UserController) ReviewCourier(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req reviewCourierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status != models.CourierApplicationApproved && req.Status != models.CourierApplicationRejected {
		respondError(w, http.StatusBadRequest, "Status must be approved or rejected")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		respondStoreError(w, err, "User not found")
		return
	}
	if user.CourierApplication == nil {
		respondError(w, http.StatusBadRequest, "User has no courier application")
		return
	}

	now := time.Now().UTC()
	user.CourierApplication.Status = req.Status
	user.CourierApplication.ReviewedAt = &now
	if req.Status == models.CourierApplicationApproved {
		user.Role = models.RoleCourier
	}
	if err := uc.users.Update(ctx, user); err != nil {
		respondStoreError(w, err, "User not found")
		return
	}
	user.Sanitize()
	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}
