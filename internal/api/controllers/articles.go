package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v5"

	"github.com/datallboy/gonntp/internal/app"
	"github.com/datallboy/gonntp/internal/nntp"
	"github.com/datallboy/gonntp/internal/poster"
)

type ArticleController struct {
	App    *app.Context
	Poster *poster.Service
}

// HandlePost builds an article from the JSON request and posts it
func (ctrl *ArticleController) HandlePost(c *echo.Context) error {
	var req poster.Request
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body: " + err.Error()})
	}

	rec, err := ctrl.Poster.Post(c.Request().Context(), req)
	if err != nil {
		return c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusCreated, rec)
}

// HandleFetch retrieves an article from the providers. With
// ?format=wire the article is returned exactly as it would be posted.
func (ctrl *ArticleController) HandleFetch(c *echo.Context) error {
	id, err := messageIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	a, err := ctrl.App.NNTP.Fetch(c.Request().Context(), id)
	if err != nil {
		return c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
	}

	if c.QueryParam("format") == "wire" {
		var lines nntp.LineBuffer
		if err := nntp.WriteArticle(&lines, a); err != nil {
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return c.String(http.StatusOK, strings.Join(lines, "\r\n")+"\r\n")
	}
	return c.JSON(http.StatusOK, newArticleResponse(a))
}

// HandleJournal lists recent posts, newest first
func (ctrl *ArticleController) HandleJournal(c *echo.Context) error {
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
		}
		limit = n
	}

	items, err := ctrl.App.Journal.Recent(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, JournalResponse{Items: items, Total: len(items)})
}

// HandleJournalEntry looks up the journal entry of one message id
func (ctrl *ArticleController) HandleJournalEntry(c *echo.Context) error {
	id, err := messageIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	rec, err := ctrl.App.Journal.GetByMessageID(c.Request().Context(), id.String())
	if err != nil {
		return c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, rec)
}

// messageIDParam reads the :id path parameter. Brackets are optional
// and may arrive percent-encoded.
func messageIDParam(c *echo.Context) (nntp.MessageID, error) {
	raw, err := url.PathUnescape(c.Param("id"))
	if err != nil {
		return nntp.MessageID{}, err
	}
	if strings.TrimSpace(raw) == "" {
		return nntp.MessageID{}, errors.New("missing message id")
	}
	return nntp.NormalizeMessageID(raw), nil
}
