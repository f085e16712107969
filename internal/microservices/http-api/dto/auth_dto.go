package dto

// Data Transfer Objects for authentication requests and responses

import (
	"time"

	"schoollibrary/internal/middleware/auth"
	"schoollibrary/internal/microservices/http-api/models"
	"schoollibrary/internal/microservices/http-api/repository"
)

// SignInRequest: credentials for a new session
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignInResponse: session token; the same token is also set as a cookie
type SignInResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// CreateUserRequest: payload to register a library user
type CreateUserRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Name     string  `json:"name" binding:"required"`
	Password string  `json:"password" binding:"required,min=8"`
	Role     string  `json:"role" binding:"required,role"`
	Phone    *string `json:"phone" binding:"omitempty,e164"`
}

// StatsResponse: library counters
type StatsResponse struct {
	TotalBooks     int64 `json:"totalBooks"`
	AvailableBooks int64 `json:"availableBooks"`
	TotalUsers     int64 `json:"totalUsers"`
	BorrowedBooks  int64 `json:"borrowedBooks"`
	OverdueBooks   int64 `json:"overdueBooks"`
}

func NewStatsResponse(s *repository.LibraryStats) StatsResponse {
	return StatsResponse{
		TotalBooks:     s.TotalBooks,
		AvailableBooks: s.AvailableBooks,
		TotalUsers:     s.TotalUsers,
		BorrowedBooks:  s.BorrowedBooks,
		OverdueBooks:   s.OverdueBooks,
	}
}

// DashboardResponse: landing data for signed-in staff
type DashboardResponse struct {
	User  *auth.Identity `json:"user"`
	Stats StatsResponse  `json:"stats"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
