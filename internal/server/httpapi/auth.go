package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type loginResponse struct {
	Success  bool   `json:"success"`
	Token    string `json:"token"`
	Username string `json:"username"`
}

func (s *Server) bindCredentials(c *gin.Context) (credentialsRequest, bool) {
	var req credentialsRequest
	body, ok := s.readBody(c, schemaCredentials)
	if !ok {
		return req, false
	}
	if err := json.Unmarshal(body, &req); err != nil {
		fail(c, s.logger, asValidationError(err))
		return req, false
	}
	return req, true
}

func (s *Server) handleRegister(c *gin.Context) {
	req, ok := s.bindCredentials(c)
	if !ok {
		return
	}
	password := []byte(req.Password)
	defer common.WipeByteArray(password)

	if _, err := s.users.Register(ctxOf(c), req.Username, password); err != nil {
		fail(c, s.logger, err)
		return
	}

	s.logger.Info(ctxOf(c), "user registered", "username", req.Username)
	c.JSON(http.StatusCreated, registerResponse{Success: true, Message: "Registration successful!"})
}

func (s *Server) handleLogin(c *gin.Context) {
	req, ok := s.bindCredentials(c)
	if !ok {
		return
	}
	password := []byte(req.Password)
	defer common.WipeByteArray(password)

	res, err := s.users.Login(ctxOf(c), req.Username, password)
	if err != nil {
		fail(c, s.logger, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{Success: true, Token: res.Token, Username: res.UserName})
}
