package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/inventgo/inventapp/config"
	"github.com/inventgo/inventapp/models"
)

const (
	tokenLifetime     = 24 * time.Hour
	rememberKeyPrefix = "remember:"
)

type UserHandler struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Logger *logrus.Logger
}

type Credentials struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
	Device     string `json:"device"`
}

// rememberedCredentials is stored plaintext, mirroring the remembered
// email/password preference. A noted risk, not a recommendation.
type rememberedCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func (h *UserHandler) Signup(c *gin.Context) {
	var input Credentials
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
		return
	}

	if len(input.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 6 characters"})
		return
	}

	// Check if user already exists
	var existingUser models.User
	if err := h.DB.Where("email = ?", input.Email).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
		return
	}

	hashedPassword, err := HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	now := time.Now()
	user := models.User{
		Email:       input.Email,
		Password:    hashedPassword,
		LastLoginAt: &now,
	}

	if err := h.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	tokenString, err := h.signToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}
	h.setAuthCookie(c, tokenString)

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user_id": user.ID,
		"email":   user.Email,
	})
}

func (h *UserHandler) Login(c *gin.Context) {
	var creds Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", creds.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !CheckPasswordHash(creds.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokenString, err := h.signToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}
	h.setAuthCookie(c, tokenString)

	// Fire-and-forget profile touch; its failure is never surfaced.
	userID := user.ID
	go func() {
		now := time.Now()
		if err := h.DB.Model(&models.User{}).Where("id = ?", userID).
			Update("last_login_at", &now).Error; err != nil {
			config.LogError(h.Logger, "controllers", "Login", "last-login upsert", userID, err)
		}
	}()

	device := h.persistRememberedCredentials(c, creds)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user_id": user.ID,
		"device":  device,
	})
}

// persistRememberedCredentials stores or clears the remembered pair keyed by
// a per-device token. Storage failures are logged, not surfaced: remembering
// credentials is a convenience, not part of the login contract.
func (h *UserHandler) persistRememberedCredentials(c *gin.Context, creds Credentials) string {
	if h.Redis == nil {
		return creds.Device
	}

	if !creds.RememberMe {
		if creds.Device != "" {
			if err := h.Redis.Del(c.Request.Context(), rememberKeyPrefix+creds.Device).Err(); err != nil {
				config.LogError(h.Logger, "controllers", "Login", "clear remembered credentials", creds.Device, err)
			}
		}
		return ""
	}

	device := creds.Device
	if device == "" {
		device = uuid.NewString()
	}

	payload, _ := json.Marshal(rememberedCredentials{Email: creds.Email, Password: creds.Password})
	if err := h.Redis.Set(c.Request.Context(), rememberKeyPrefix+device, payload, 0).Err(); err != nil {
		config.LogError(h.Logger, "controllers", "Login", "store remembered credentials", device, err)
		return ""
	}
	return device
}

// Remembered returns the stored email/password pair for a device, if any.
func (h *UserHandler) Remembered(c *gin.Context) {
	device := c.Query("device")
	if device == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "device is required"})
		return
	}

	// Redis may be absent; remember-me is disabled then, not broken.
	if h.Redis == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No remembered credentials"})
		return
	}

	val, err := h.Redis.Get(c.Request.Context(), rememberKeyPrefix+device).Result()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No remembered credentials"})
		return
	}

	var creds rememberedCredentials
	if err := json.Unmarshal([]byte(val), &creds); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not read remembered credentials"})
		return
	}
	c.JSON(http.StatusOK, creds)
}

func (h *UserHandler) Logout(c *gin.Context) {
	cookie := "token=; Path=/; Max-Age=0; Secure; HttpOnly; SameSite=None"
	c.Header("Set-Cookie", cookie)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GetProfile - Fetches the profile of the logged-in user
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized access"})
		return
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":       user.ID,
		"email":         user.Email,
		"created_at":    user.CreatedAt,
		"last_login_at": user.LastLoginAt,
	})
}

// ChangePassword - Allows a user to update their password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized access"})
		return
	}

	var input struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(input.NewPassword) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 6 characters"})
		return
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.OldPassword)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect old password"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
		return
	}

	user.Password = string(hashedPassword)
	if err := h.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// VerifyAuth resolves the session token to a live account. Clients gate their
// first redirect decision on this call completing.
func (h *UserHandler) VerifyAuth(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authorization token required",
			"code":  "MISSING_CREDENTIALS",
		})
		return
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "User account no longer exists",
				"code":  "USER_NOT_FOUND",
			})
		} else {
			config.LogError(h.Logger, "controllers", "VerifyAuth", "user lookup", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Could not verify account",
				"code":  "SERVER_ERROR",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":    user.ID,
		"email":      user.Email,
		"expires_in": time.Until(time.Unix(int64(c.MustGet("exp").(float64)), 0)),
	})
}

func (h *UserHandler) signToken(user models.User) (string, error) {
	expirationTime := time.Now().Add(tokenLifetime)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     expirationTime.Unix(),
	})
	secret := []byte(os.Getenv("JWT_SECRET"))
	return token.SignedString(secret)
}

func (h *UserHandler) setAuthCookie(c *gin.Context, tokenString string) {
	cookie := fmt.Sprintf(
		"token=%s; Path=/; Max-Age=%d; Secure; HttpOnly; SameSite=None",
		tokenString,
		int(tokenLifetime.Seconds()),
	)
	c.Header("Set-Cookie", cookie)
}
