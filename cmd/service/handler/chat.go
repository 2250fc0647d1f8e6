package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/mobilien/mobi-agent/app/logic/v1"
	"github.com/mobilien/mobi-agent/app/response"
	"github.com/mobilien/mobi-agent/pkg/types"
	"github.com/mobilien/mobi-agent/pkg/utils"
)

type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"sessionId"`
}

func (s *HttpSrv) Chat(c *gin.Context) {
	var req ChatRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	result, err := v1.NewChatLogic(c, s.Core).SendMessage(v1.ChatRequestArgs{
		Message:   req.Message,
		SessionID: req.SessionID,
	})
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, result)
}

type AudioChatRequest struct {
	AudioData   string `json:"audioData" binding:"required"`
	AudioFormat string `json:"audioFormat" binding:"required"`
	SessionID   string `json:"sessionId"`
}

func (s *HttpSrv) AudioChat(c *gin.Context) {
	var req AudioChatRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	result, err := v1.NewAudioChatLogic(c, s.Core).SendAudio(v1.AudioChatArgs{
		AudioData:   req.AudioData,
		AudioFormat: req.AudioFormat,
		SessionID:   req.SessionID,
	})
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, result)
}

type FileChatRequest struct {
	Message   string           `json:"message"`
	Files     []types.ChatFile `json:"files" binding:"required"`
	SessionID string           `json:"sessionId"`
}

func (s *HttpSrv) FileChat(c *gin.Context) {
	var req FileChatRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	result, err := v1.NewFileChatLogic(c, s.Core).SendFiles(v1.FileChatArgs{
		Message:   req.Message,
		Files:     req.Files,
		SessionID: req.SessionID,
	})
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, result)
}
