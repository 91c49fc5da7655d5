package handler

import (
	"net/http"

	"unlockmart/internal/model"
	"unlockmart/internal/mw"
	"unlockmart/internal/service"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token   string         `json:"token"`
	Account *model.Account `json:"user"`
}

func RegisterHandler(authSvc *service.AuthService, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeJSON(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid json")
			return
		}

		account, err := authSvc.Register(r.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			writeError(w, r, err)
			return
		}

		respondWithToken(w, r, secret, account, http.StatusCreated)
	}
}

func LoginHandler(authSvc *service.AuthService, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid json")
			return
		}

		account, err := authSvc.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, r, err)
			return
		}

		respondWithToken(w, r, secret, account, http.StatusOK)
	}
}

func respondWithToken(w http.ResponseWriter, r *http.Request, secret string, account *model.Account, status int) {
	token, err := mw.IssueToken(secret, account.ID, account.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	writeJSON(w, status, authResponse{Token: token, Account: account})
}
