package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/mobilien/mobi-agent/app/logic/v1"
	"github.com/mobilien/mobi-agent/app/response"
	"github.com/mobilien/mobi-agent/pkg/utils"
)

type SubscribeRequest struct {
	Email  string `json:"email" binding:"required"`
	Source string `json:"source"`
}

type SubscribeResponse struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id"`
}

func (s *HttpSrv) SubscribeNewsletter(c *gin.Context) {
	var req SubscribeRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	source := req.Source
	if source == "" {
		source = "website"
	}

	id, err := v1.NewNewsletterLogic(c, s.Core).Subscribe(req.Email, source, utils.ClientIP(c), c.Request.UserAgent())
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, SubscribeResponse{Success: true, ID: id})
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Message string `json:"message" binding:"required"`
}

type ContactResponse struct {
	Success bool `json:"success"`
}

func (s *HttpSrv) SubmitContact(c *gin.Context) {
	var req ContactRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	err := v1.NewContactLogic(c, s.Core).SubmitContact(req.Name, req.Email, req.Message, utils.ClientIP(c), c.Request.UserAgent())
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, ContactResponse{Success: true})
}
