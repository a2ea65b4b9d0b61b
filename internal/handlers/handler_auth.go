package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
	portssvc "github.com/SscSPs/lecturer_claims_app/internal/core/ports/services"
	"github.com/SscSPs/lecturer_claims_app/internal/dto"
)

// AuthHandler handles authentication related requests.
type AuthHandler struct {
	userService  portssvc.UserSvcFacade
	tokenService portssvc.TokenSvcFacade
	identity     portssvc.IdentitySvc
	google       portssvc.GoogleOAuthSvcFacade
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(services *portssvc.ServiceContainer) *AuthHandler {
	return &AuthHandler{
		userService:  services.User,
		tokenService: services.Token,
		identity:     services.Identity,
		google:       services.GoogleOAuth,
	}
}

// registerAuthRoutes sets up the public authentication routes behind limit.
func registerAuthRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer, limit gin.HandlerFunc) {
	h := NewAuthHandler(services)

	auth := rg.Group("/auth", limit)
	{
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)
		auth.GET("/google/login", h.GoogleLoginURL)
		auth.POST("/google/callback", h.GoogleCallback)
	}
}

// issueToken signs a JWT for user and responds with it and the landing page.
func (h *AuthHandler) issueToken(c *gin.Context, user *domain.User, status int) {
	token, expiresAt, err := h.tokenService.GenerateAccessToken(c.Request.Context(), user)
	if err != nil {
		getLogger(c).Error("Failed to sign JWT token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate token"})
		return
	}
	h.identity.Invalidate(user.UserID)
	c.JSON(status, dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
		Landing:   h.identity.Landing(user.Principal()),
	})
}

// Login godoc
// @Summary User login
// @Description Authenticates a user and returns a JWT token and landing page.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}
	user, err := h.userService.AuthenticateUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if statusForError(err) == http.StatusUnauthorized {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid email or password"})
			return
		}
		handleServiceError(c, err, "authenticate user")
		return
	}
	h.issueToken(c, user, http.StatusOK)
}

// Register godoc
// @Summary Register a lecturer
// @Description Creates a lecturer account and signs it in.
// @Tags auth
// @Accept json
// @Produce json
// @Param register body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Failure 500 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}
	user, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err, "register user")
		return
	}
	getLogger(c).Info("Lecturer registered", slog.String("user_id", user.UserID))
	h.issueToken(c, user, http.StatusCreated)
}

// GoogleLoginURL godoc
// @Summary Start Google sign-in
// @Description Returns the Google consent URL and the CSRF state the frontend must keep.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.GoogleLoginURLResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/google/login [get]
func (h *AuthHandler) GoogleLoginURL(c *gin.Context) {
	ctx := c.Request.Context()
	state, err := h.google.GenerateStateString(ctx)
	if err != nil {
		handleServiceError(c, err, "start google sign-in")
		return
	}
	c.JSON(http.StatusOK, dto.GoogleLoginURLResponse{URL: h.google.GetGoogleLoginURL(ctx, state), State: state})
}

// GoogleCallback godoc
// @Summary Exchange a Google authorization code
// @Description Exchanges the code, validates the ID token, finds or creates the user and returns an application JWT.
// @Tags auth
// @Accept json
// @Produce json
// @Param code body dto.ExchangeCodeRequest true "Authorization code"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/google/callback [post]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	ctx := c.Request.Context()
	logger := getLogger(c)

	var req dto.ExchangeCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Authorization code is required"})
		return
	}

	ext, err := h.google.ExchangeCode(ctx, req.Code)
	if err != nil {
		handleServiceError(c, err, "exchange google authorization code")
		return
	}
	user, err := h.userService.SignInExternal(ctx, *ext)
	if err != nil {
		handleServiceError(c, err, "sign in with google")
		return
	}
	logger.Info("User signed in via Google", slog.String("user_id", user.UserID))
	h.issueToken(c, user, http.StatusOK)
}
