package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/anonto42/iblue/backend/internal/langtag"
	"github.com/anonto42/iblue/backend/internal/models"
	"github.com/anonto42/iblue/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
)

// ProfileHandler handles HTTP requests related to user profiles
type ProfileHandler struct {
	profileRepository repositories.ProfileRepository
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profileRepo repositories.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{profileRepository: profileRepo}
}

// RegisterProfileRoutes registers profile routes
func (h *ProfileHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.GET("/profiles/search", h.SearchProfiles)
	g.GET("/profiles/:id", h.GetProfileByID)
}

// profileResponse exposes the stored languages in their normalized form.
type profileResponse struct {
	*models.Profile
	ProgrammingLanguages []string `json:"programming_languages"`
}

func newProfileResponse(p *models.Profile) profileResponse {
	langs, _ := langtag.Normalize(p.ProgrammingLanguages)
	if langs == nil {
		langs = []string{}
	}
	return profileResponse{Profile: p, ProgrammingLanguages: langs}
}

// GetProfile retrieves the authenticated user's profile
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	uid, err := requireUserID(c)
	if err != nil {
		return err
	}
	profile, err := h.profileRepository.GetProfileByID(c.Request().Context(), uid)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, newProfileResponse(profile))
}

func (h *ProfileHandler) GetProfileByID(c echo.Context) error {
	profile, err := h.profileRepository.GetProfileByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, newProfileResponse(profile))
}

// UpdateProfile applies the non-nil fields of the request
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	uid, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	profile, err := h.profileRepository.GetProfileByID(ctx, uid)
	if err != nil {
		return httpError(err)
	}

	if req.FullName != nil {
		profile.FullName = *req.FullName
	}
	if req.DisplayName != nil {
		profile.DisplayName = *req.DisplayName
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = *req.AvatarURL
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.EmailNotificationsEnabled != nil {
		profile.EmailNotificationsEnabled = *req.EmailNotificationsEnabled
	}
	if req.ProgrammingLanguages != nil {
		langs := langtag.Clean(req.ProgrammingLanguages)
		if langs == nil {
			langs = []string{}
		}
		raw, err := json.Marshal(langs)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		profile.ProgrammingLanguages = datatypes.JSON(raw)
	}

	if err := h.profileRepository.UpdateProfile(ctx, profile); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, newProfileResponse(profile))
}

// SearchProfiles searches profiles by name
func (h *ProfileHandler) SearchProfiles(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query 'q' is required")
	}

	profiles, err := h.profileRepository.SearchProfiles(c.Request().Context(), query, 20)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	compact := make([]models.ProfileCompact, len(profiles))
	for i := range profiles {
		compact[i] = profiles[i].ToCompact()
	}
	return c.JSON(http.StatusOK, compact)
}
