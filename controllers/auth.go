package controllers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"GlowCare/middleware"
	"GlowCare/models"
	"GlowCare/pkg/config"
	"GlowCare/pkg/store"
	tokenstore "GlowCare/pkg/token"
	utils "GlowCare/pkg/utills"
)

// Register handler. Experts register with a display name and optional
// specialty and get a presence row (offline until first login).
func Register(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Email           string `json:"email"`
			Username        string `json:"username"`
			Password        string `json:"password"`
			ConfirmPassword string `json:"confirm_password"`
			Role            string `json:"role"`
			DisplayName     string `json:"display_name"`
			Specialty       string `json:"specialty"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid request"})
			return
		}

		email := utils.NormalizeEmail(body.Email)
		username := strings.TrimSpace(body.Username)
		password := body.Password
		confirm := body.ConfirmPassword

		if email == "" || username == "" || password == "" || confirm == "" {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Email, username, password, and confirm password are required"})
			return
		}
		if password != confirm {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Passwords do not match"})
			return
		}
		// password validation: at least one letter and one number
		if !utils.HasLetter(password) || !utils.HasNumber(password) {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Password must contain at least one letter and one number"})
			return
		}

		role := body.Role
		if role == "" {
			role = models.RoleCustomer
		}
		if role != models.RoleCustomer && role != models.RoleExpert {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "role must be 'customer' or 'expert'"})
			return
		}

		taken, err := s.UserExists(c.Request.Context(), email, username)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
			return
		}
		if taken {
			c.JSON(http.StatusConflict, gin.H{"msg": "Email or username already exists"})
			return
		}

		user := models.User{Email: email, Username: username, Role: role}
		if err := user.SetPassword(password); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to set password"})
			return
		}

		var expert *models.Expert
		if role == models.RoleExpert {
			displayName := strings.TrimSpace(body.DisplayName)
			if displayName == "" {
				displayName = username
			}
			expert = &models.Expert{
				DisplayName: displayName,
				Specialty:   strings.TrimSpace(body.Specialty),
				Status:      models.ExpertOffline,
			}
		}

		if err := s.CreateUser(c.Request.Context(), &user, expert); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to create user"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"msg": "User created", "username": user.Username, "email": user.Email, "role": user.Role})
	}
}

// Login handler. An expert logging in is forced to Status=active: a
// fresh session is by definition available until the expert says
// otherwise.
func Login(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid request"})
			return
		}
		email := utils.NormalizeEmail(body.Email)
		password := body.Password

		if email == "" || password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Email and password are required"})
			return
		}

		user, err := s.UserByEmail(c.Request.Context(), email)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "Invalid credentials"})
			return
		}
		if !user.CheckPassword(password) {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "Invalid credentials"})
			return
		}

		// create JWT with 1 day expiry
		jti := uuid.NewString()
		claims := jwt.MapClaims{
			"sub":  strconv.Itoa(int(user.ID)),
			"role": user.Role,
			"exp":  time.Now().Add(24 * time.Hour).Unix(),
			"jti":  jti,
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		tokenStr, err := token.SignedString([]byte(config.JWTSecret))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to create token"})
			return
		}

		if user.Role == models.RoleExpert {
			if err := s.SetExpertStatus(c.Request.Context(), user.ID, models.ExpertActive); err != nil {
				log.Printf("[auth] force-active on login failed for expert %d: %v", user.ID, err)
			}
			invalidateActiveExperts()
		}

		c.JSON(http.StatusOK, gin.H{
			"access_token":      tokenStr,
			"username":          user.Username,
			"role":              user.Role,
			"heartbeat_seconds": config.HeartbeatSeconds,
		})
	}
}

// Logout handler. Best effort on the presence side: if the offline
// write fails the reaper catches the session later.
func Logout(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		jti, _ := c.Get(middleware.ContextJTIKey)
		if v, ok := jti.(string); ok && v != "" {
			tokenstore.RevokeToken(v)
		}

		if currentRole(c) == models.RoleExpert {
			// detach from the request context: the response should not
			// wait on (or be failed by) the presence write
			go func(uid uint) {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				if err := s.SetExpertStatus(ctx, uid, models.ExpertOffline); err != nil {
					log.Printf("[auth] offline on logout failed for expert %d: %v", uid, err)
				}
				invalidateActiveExperts()
			}(currentUserID(c))
		}

		c.JSON(http.StatusOK, gin.H{"msg": "logged out"})
	}
}
