package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/fruncoy/traiq-sub000/database"
	"github.com/fruncoy/traiq-sub000/models"
	"github.com/fruncoy/traiq-sub000/utils"

	"github.com/golang-jwt/jwt/v5"
)

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// revokeBearerJTI best-effort revokes the access-token jti carried in the
// Authorization header, using the token's own exp as the revocation TTL.
func revokeBearerJTI(r *http.Request) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return
	}
	tokenStr := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	tkn, err := utils.ValidateToken(tokenStr)
	if err != nil || tkn == nil {
		return
	}
	claims, ok := tkn.Claims.(jwt.MapClaims)
	if !ok {
		return
	}
	jtiRaw, ok := claims["jti"].(string)
	if !ok || jtiRaw == "" {
		return
	}
	var ttl time.Duration
	if expRaw, ok := claims["exp"]; ok {
		switch v := expRaw.(type) {
		case float64:
			ttl = time.Until(time.Unix(int64(v), 0))
		case int64:
			ttl = time.Until(time.Unix(v, 0))
		case int:
			ttl = time.Until(time.Unix(int64(v), 0))
		}
	}
	if ttl < 0 {
		ttl = 0
	}
	_ = utils.RevokeJTI(jtiRaw, ttl)
}

// LogoutHandler revokes a specific refresh token and the current access token jti
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid JSON body"})
		return
	}
	if req.RefreshToken == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "refresh_token is required"})
		return
	}

	revokeBearerJTI(r)

	if database.DB == nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	// If the row is not found, still report success to avoid token enumeration
	_ = database.DB.Model(&models.RefreshToken{}).Where("id = ?", req.RefreshToken).Update("revoked", true).Error
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Logged out"})
}

// LogoutAllHandler revokes all refresh tokens for the authenticated tasker
func LogoutAllHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	revokeBearerJTI(r)

	if database.DB == nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	if err := database.DB.Model(&models.RefreshToken{}).Where("user_id = ?", uid).Update("revoked", true).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "All sessions revoked"})
}
