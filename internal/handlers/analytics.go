package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskflow-dev/taskflow/internal/actions"
	"github.com/taskflow-dev/taskflow/internal/utils"
)

func TaskStatusDistribution(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx.JSON(http.StatusOK, actions.TaskStatusDistribution(userID))
}

func TaskPriorityDistribution(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx.JSON(http.StatusOK, actions.TaskPriorityDistribution(userID))
}

func WeeklyTaskCompletion(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	weeks, _ := strconv.Atoi(ctx.DefaultQuery("weeks", "4"))

	ctx.JSON(http.StatusOK, actions.WeeklyTaskCompletion(userID, weeks))
}

func ProductivitySummary(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx.JSON(http.StatusOK, actions.GetProductivitySummary(userID))
}

func RecentActivities(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	ctx.JSON(http.StatusOK, actions.GetRecentActivities(userID, limit))
}
