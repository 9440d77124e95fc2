package controllers

import (
	"net/http"

	"chirp/app/models"
	"chirp/app/services"
)

// ProfileController serves the profile.* procedures
type ProfileController struct {
	profileService *services.ProfileService
}

func NewProfileController(profileService *services.ProfileService) *ProfileController {
	return &ProfileController{profileService: profileService}
}

// GetByUsername handles profile.getByUsername
func (pc *ProfileController) GetByUsername(w http.ResponseWriter, r *http.Request) {
	var input models.GetByUsernameInput
	if err := decodeQueryInput(r, &input); err != nil {
		sendError(w, r, err)
		return
	}
	if err := validateInput(input); err != nil {
		sendError(w, r, err)
		return
	}

	profile, err := pc.profileService.GetByUsername(r.Context(), input.Username)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendResult(w, profile)
}
