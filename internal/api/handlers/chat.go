package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bruno.lopes/dutyplanner/internal/models"
	"github.com/bruno.lopes/dutyplanner/internal/store"
)

const systemPrompt = `You are a scheduling assistant for a physician duty roster.
You are given the solved assignments for one schedule and must explain, in plain
language, why a physician was or was not scheduled for a given task, citing the
constraints (availability, mandatory coverage, main/call linkage, mutual exclusion)
that plausibly drove the decision. Be concise and never invent an assignment that
is not in the data you were given.`

// Explain answers /api/schedules/:id/chat: it loads one solved schedule and
// asks an OpenAI-compatible chat model to explain an assignment question
// against it. The exchange is read-only; nothing the assistant says is
// applied back to the schedule.
func (h *Handler) Explain(c *gin.Context) {
	scheduleID := c.Param("id")

	status, byPhysician, err := store.LoadSchedule(h.db, scheduleID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
		return
	}

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	apiKey, err := store.GetSetting(h.db, "openai_api_key")
	if err != nil || apiKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "API key not configured"})
		return
	}
	model, err := store.GetSetting(h.db, "ai_model")
	if err != nil || model == "" {
		model = "gpt-4o-mini"
	}

	client := openai.NewClient(apiKey)

	var b strings.Builder
	fmt.Fprintf(&b, "Schedule %s status: %s\n", scheduleID, status)
	for physician, assignments := range byPhysician {
		for _, a := range assignments {
			fmt.Fprintf(&b, "- %s: %s from %s to %s (score %d)\n",
				physician, a.TaskName, a.StartDate.Format("2006-01-02"), a.EndDate.Format("2006-01-02"), a.Score)
		}
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: b.String() + "\n\nQuestion: " + req.Message},
	}

	resp, err := client.CreateChatCompletion(c.Request.Context(), openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chat completion failed: " + err.Error()})
		return
	}
	if len(resp.Choices) == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no reply from model"})
		return
	}

	c.JSON(http.StatusOK, models.ChatResponse{Reply: resp.Choices[0].Message.Content})
}

// GetAvailableModels lists the chat models usable for explanation queries.
func (h *Handler) GetAvailableModels(c *gin.Context) {
	apiKey, err := store.GetSetting(h.db, "openai_api_key")
	if err != nil || apiKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "API key not configured"})
		return
	}

	client := openai.NewClient(apiKey)
	modelList, err := client.ListModels(context.Background())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch models: " + err.Error()})
		return
	}

	var chatModels []map[string]string
	for _, m := range modelList.Models {
		if strings.Contains(m.ID, "gpt") || strings.Contains(m.ID, "o1") || strings.Contains(m.ID, "o3") {
			chatModels = append(chatModels, map[string]string{"id": m.ID, "name": m.ID})
		}
	}
	c.JSON(http.StatusOK, chatModels)
}
