package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/stockimage/internal/service"
)

type registerRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

// Register 创建新用户
func (a *API) Register(c *gin.Context) {
	var payload registerRequest
	if !bindJSON(c, &payload, "Invalid request") {
		return
	}

	_, err := a.users.Register(service.RegisterInput{
		Email:    payload.Email,
		Phone:    payload.Phone,
		Password: payload.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserExists):
			respondError(c, http.StatusBadRequest, "User already exists")
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, http.StatusBadRequest, "Invalid email address")
		case errors.Is(err, service.ErrPasswordTooShort):
			respondError(c, http.StatusBadRequest, service.ErrPasswordTooShort.Error())
		default:
			log.Printf("[auth] register failed: %v", err)
			respondError(c, http.StatusInternalServerError, "Server error")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

// Login 校验凭据，返回访问令牌并写入会话
func (a *API) Login(c *gin.Context) {
	var payload loginRequest
	if !bindJSON(c, &payload, "Invalid request") {
		return
	}

	result, err := a.users.Login(payload.Email, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, http.StatusBadRequest, "Invalid credentials")
		default:
			log.Printf("[auth] login failed: %v", err)
			respondError(c, http.StatusInternalServerError, "Server error")
		}
		return
	}

	session := sessions.Default(c)
	session.Set(userIDContextKey, result.UserID)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": result.Token, "id": result.UserID})
}

// Logout 清除会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// ForgotPassword 发送密码重置邮件
func (a *API) ForgotPassword(c *gin.Context) {
	var payload forgotPasswordRequest
	if !bindJSON(c, &payload, "Invalid request") {
		return
	}

	if err := a.users.ForgotPassword(c.Request.Context(), payload.Email); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("[auth] forgot password failed: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to send reset email")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reset link sent to email"})
}

// ResetPassword 使用邮件中的令牌设置新密码
func (a *API) ResetPassword(c *gin.Context) {
	var payload resetPasswordRequest
	if !bindJSON(c, &payload, "Invalid request") {
		return
	}

	if err := a.users.ResetPassword(c.Param("token"), payload.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordTooShort):
			respondError(c, http.StatusBadRequest, service.ErrPasswordTooShort.Error())
		case errors.Is(err, service.ErrInvalidToken):
			respondError(c, http.StatusBadRequest, "Invalid or expired token")
		default:
			log.Printf("[auth] reset password failed: %v", err)
			respondError(c, http.StatusInternalServerError, "Server error")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

// AuthRequired 认证中间件：优先使用 Bearer 令牌，其次使用登录会话
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				respondError(c, http.StatusUnauthorized, "Unauthorized: No token provided")
				c.Abort()
				return
			}
			userID, err := a.users.Authenticate(strings.TrimSpace(token))
			if err != nil {
				respondError(c, http.StatusUnauthorized, "Unauthorized: Invalid token")
				c.Abort()
				return
			}
			c.Set(userIDContextKey, userID)
			c.Next()
			return
		}

		session := sessions.Default(c)
		userID, ok := session.Get(userIDContextKey).(uint)
		if !ok || userID == 0 {
			respondError(c, http.StatusUnauthorized, "Unauthorized: No token provided")
			c.Abort()
			return
		}
		c.Set(userIDContextKey, userID)
		c.Next()
	}
}
