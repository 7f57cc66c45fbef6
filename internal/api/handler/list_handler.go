package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/listshare/todo-share/internal/core/domain"
	"github.com/listshare/todo-share/internal/core/ports"
)

type ListHandler struct {
	sharing ports.SharingService
}

func NewListHandler(sharing ports.SharingService) *ListHandler {
	return &ListHandler{sharing: sharing}
}

type sendToUserRequest struct {
	Username string         `json:"username" validate:"required"`
	ListData domain.Payload `json:"list_data" validate:"required"`
}

type shareResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

type listDataResponse struct {
	Status string         `json:"status"`
	Data   domain.Payload `json:"data"`
}

type myListsResponse struct {
	Status string               `json:"status"`
	Lists  []domain.ListSummary `json:"lists"`
}

// Share stores a list and returns its share id. Logged-in callers own the
// stored copy; anonymous shares have no owner.
//
// @Summary      Share a list by link
// @Tags         lists
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "List payload"
// @Success      200   {object}  shareResponse
// @Failure      400   {object}  statusResponse
// @Failure      500   {object}  statusResponse
// @Router       /api/share [post]
func (h *ListHandler) Share(c echo.Context) error {
	var payload domain.Payload
	if err := (&echo.DefaultBinder{}).BindBody(c, &payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "list payload must be a JSON object")
	}

	id, err := h.sharing.ShareAnonymous(c.Request().Context(), payload, optionalPrincipal(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, shareResponse{Status: "success", ID: id})
}

// SendToUser stores a copy of the list owned by the recipient and queues
// an email to them.
//
// @Summary      Send a list to another user
// @Tags         lists
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      sendToUserRequest  true  "Recipient and list"
// @Success      200   {object}  statusResponse
// @Failure      400   {object}  statusResponse
// @Failure      401   {object}  statusResponse
// @Failure      404   {object}  statusResponse
// @Router       /api/send-to-user [post]
func (h *ListHandler) SendToUser(c echo.Context) error {
	sender, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req sendToUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if _, err := h.sharing.SendToUser(c.Request().Context(), sender, req.Username, req.ListData); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, statusResponse{Status: "success", Message: "sent"})
}

// Get returns a shared list to anyone holding its id.
//
// @Summary      Get a shared list
// @Tags         lists
// @Produce      json
// @Param        id   path      string  true  "List id"
// @Success      200  {object}  listDataResponse
// @Failure      404  {object}  statusResponse
// @Router       /api/get/{id} [get]
func (h *ListHandler) Get(c echo.Context) error {
	payload, err := h.sharing.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listDataResponse{Status: "success", Data: payload})
}

// MyLists returns the caller's most recent lists, newest first.
//
// @Summary      List my lists
// @Tags         lists
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  myListsResponse
// @Failure      401  {object}  statusResponse
// @Router       /api/my-lists [get]
func (h *ListHandler) MyLists(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	lists, err := h.sharing.MyRecentLists(c.Request().Context(), principal)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, myListsResponse{Status: "success", Lists: lists})
}

// Delete removes one of the caller's lists. Unknown or foreign ids succeed
// without effect.
//
// @Summary      Delete one of my lists
// @Tags         lists
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "List id"
// @Success      200  {object}  statusResponse
// @Failure      401  {object}  statusResponse
// @Router       /api/delete-cloud-list/{id} [delete]
func (h *ListHandler) Delete(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.sharing.DeleteMine(c.Request().Context(), principal, c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, statusResponse{Status: "success", Message: "list deleted"})
}

// SearchUsers returns up to five usernames starting with q, excluding the caller.
//
// @Summary      Search users by username prefix
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        q    query     string  false  "Username prefix"
// @Success      200  {array}   string
// @Failure      401  {object}  statusResponse
// @Router       /api/search-users [get]
func (h *ListHandler) SearchUsers(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	names, err := h.sharing.SearchUsers(c.Request().Context(), principal, c.QueryParam("q"))
	if err != nil {
		return err
	}
	if names == nil {
		names = []string{}
	}

	return c.JSON(http.StatusOK, names)
}
