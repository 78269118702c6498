package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"temple_pass/internal/middleware"
	"temple_pass/internal/models"
	"temple_pass/internal/traffic"
)

type signupInput struct {
	Name          string             `json:"name" binding:"required"`
	Email         string             `json:"email" binding:"required,email"`
	Password      string             `json:"password" binding:"required,min=8"`
	Phone         string             `json:"phone"`
	VehicleType   models.VehicleType `json:"vehicle_type"`
	VehicleNumber string             `json:"vehicle_number"`
}

// SignupUser registers a commuter account and returns a token for it.
// Administrators are provisioned at startup, never through signup.
func (ctl *Controller) SignupUser(c *gin.Context) {
	var input signupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
		return
	}

	user := models.User{
		Name:          input.Name,
		Email:         input.Email,
		Password:      hashedPassword,
		Phone:         input.Phone,
		Role:          models.RoleCommuter,
		VehicleType:   input.VehicleType,
		VehicleNumber: input.VehicleNumber,
	}
	if err := ctl.svc.RegisterUser(c.Request.Context(), &user); err != nil {
		respondError(c, "SignupUser", err)
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("User registered")
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// LoginUser exchanges credentials for a token.
func (ctl *Controller) LoginUser(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ctl.svc.UserByEmail(c.Request.Context(), body.Email)
	if err != nil {
		if errors.Is(err, traffic.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found or invalid credentials"})
			return
		}
		respondError(c, "LoginUser", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found or invalid credentials"})
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
