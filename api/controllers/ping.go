package controllers

import (
	"net/http"

	"github.com/venuecast/venuecast-backend/api/responses"
)

// PublicPing is an unauthenticated reachability probe for venue devices.
func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"message": "pong"})
	}
}
