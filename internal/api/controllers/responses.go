package controllers

import (
	"errors"
	"net/http"

	"github.com/datallboy/gonntp/internal/domain"
	"github.com/datallboy/gonntp/internal/headers"
	"github.com/datallboy/gonntp/internal/nntp"
	"github.com/datallboy/gonntp/internal/policy"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type ArticleResponse struct {
	Number    int64                        `json:"number"`
	MessageID string                       `json:"message_id"`
	Headers   *headers.Map[string, string] `json:"headers"`
	Body      []string                     `json:"body"`
}

func newArticleResponse(a *nntp.Article) ArticleResponse {
	return ArticleResponse{
		Number:    a.Number(),
		MessageID: a.MessageID().String(),
		Headers:   a.Headers(),
		Body:      a.Body(),
	}
}

type JournalResponse struct {
	Items []*domain.PostRecord `json:"items"`
	Total int                  `json:"total"`
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, nntp.ErrArgumentNull),
		errors.Is(err, nntp.ErrArgumentEmpty),
		errors.Is(err, nntp.ErrReservedHeader),
		errors.Is(err, nntp.ErrMissingRequiredHeader):
		return http.StatusBadRequest
	case errors.Is(err, policy.ErrGroupNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, nntp.ErrArticleNotFound),
		errors.Is(err, domain.ErrPostNotFound):
		return http.StatusNotFound
	case errors.Is(err, nntp.ErrProviderBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, nntp.ErrPostingNotPermitted),
		errors.Is(err, nntp.ErrPostingFailed),
		errors.Is(err, nntp.ErrPostUnconfirmed),
		errors.Is(err, nntp.ErrProtocol):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
