package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/vidhi28vaghela05/lms-project-sub000/db"
	errs "github.com/vidhi28vaghela05/lms-project-sub000/errors"
	"github.com/vidhi28vaghela05/lms-project-sub000/models"
	"github.com/vidhi28vaghela05/lms-project-sub000/server/response"
	"github.com/vidhi28vaghela05/lms-project-sub000/services/jwt"
)

// Authorize resolves the principal behind the bearer token. Token issuance
// and the rest of the identity lifecycle live in the external auth service;
// this middleware only consumes its tokens.
func (s *Server) Authorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := getTokenFromHeader(c)
		if accessToken == "" {
			respondAndAbort(c, "", http.StatusUnauthorized, nil, errs.New("unauthorized", http.StatusUnauthorized))
			return
		}

		user, err := s.resolvePrincipal(accessToken)
		if err != nil {
			if errors.Is(err, db.ErrUserNotFound) {
				respondAndAbort(c, "user not found", http.StatusUnauthorized, nil, errs.New(err.Error(), http.StatusUnauthorized))
				return
			}
			respondAndAbort(c, "", http.StatusUnauthorized, nil, errs.New("unauthorized", http.StatusUnauthorized))
			return
		}

		c.Set("user", user)
		c.Set("userID", user.ID)
		c.Next()
	}
}

// resolvePrincipal validates the token and loads the user it names.
func (s *Server) resolvePrincipal(accessToken string) (*models.User, error) {
	claims, err := jwt.ValidateAndGetClaims(accessToken, s.Config.JWTSecret)
	if err != nil {
		return nil, err
	}

	idClaim, ok := claims["id"].(string)
	if !ok {
		return nil, errors.New("token missing id claim")
	}
	userID, err := uuid.Parse(idClaim)
	if err != nil {
		return nil, errors.Wrap(err, "invalid id claim")
	}

	return s.UserRepository.FindUserByID(userID)
}

func getTokenFromHeader(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "bearer ") {
		return authHeader[7:]
	}
	return ""
}

func respondAndAbort(c *gin.Context, message string, status int, data interface{}, e *errs.Error) {
	response.JSON(c, message, status, data, e)
	c.Abort()
}

func currentUser(c *gin.Context) *models.User {
	return c.MustGet("user").(*models.User)
}

func keyFunc(c *gin.Context) string {
	if id, ok := c.Get("userID"); ok {
		if uid, ok := id.(uuid.UUID); ok {
			return uid.String()
		}
	}
	return c.ClientIP()
}

func decode(c *gin.Context, v interface{}) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return errs.New("invalid request body", http.StatusBadRequest)
	}
	if verrs := models.ValidateStruct(v); len(verrs) > 0 {
		msgs := make([]string, 0, len(verrs))
		for _, e := range verrs {
			msgs = append(msgs, e.Error())
		}
		return errs.New(strings.Join(msgs, " "), http.StatusBadRequest)
	}
	return nil
}
